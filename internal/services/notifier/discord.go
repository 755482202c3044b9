package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const discordTimeout = 30 * time.Second

var levelEmoji = map[Level]string{
	LevelInfo:        "📊",
	LevelOpportunity: "🎯",
	LevelTrade:       "✅",
	LevelWarning:     "⚠️",
	LevelError:       "🔴",
}

// Discord posts events to a Discord webhook.
type Discord struct {
	webhookURL string
	client     *http.Client
	logger     *zap.Logger
}

// NewDiscord creates a webhook notifier.
func NewDiscord(webhookURL string, logger *zap.Logger) *Discord {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discord{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: discordTimeout},
		logger:     logger,
	}
}

// Notify posts the event. Delivery failures are logged and swallowed so a
// broken webhook never stalls or aborts a trading cycle.
func (d *Discord) Notify(ctx context.Context, level Level, message string) {
	if err := d.send(ctx, level, message); err != nil {
		d.logger.Warn("discord notification failed",
			zap.String("level", string(level)),
			zap.Error(err))
	}
}

func (d *Discord) send(ctx context.Context, level Level, message string) error {
	payload, err := json.Marshal(map[string]string{
		"content": fmt.Sprintf("%s **[%s]** %s", levelEmoji[level], level, message),
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("discord API error: status %d, body: %s", resp.StatusCode, string(body))
	}
	return nil
}
