// Package notifier delivers decision and outcome events. Formatting here is
// minimal; each terminal outcome of a cycle maps to exactly one event.
package notifier

import (
	"context"

	"go.uber.org/zap"
)

// Level classifies an event.
type Level string

const (
	LevelInfo        Level = "INFO"
	LevelOpportunity Level = "OPPORTUNITY"
	LevelTrade       Level = "TRADE"
	LevelWarning     Level = "WARNING"
	LevelError       Level = "ERROR"
)

// Notifier delivers one event. Implementations must not block the trading
// loop on delivery failures; a failed notification is logged, not fatal.
type Notifier interface {
	Notify(ctx context.Context, level Level, message string)
}

// Log writes events to the structured log only. Used when no webhook is
// configured.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a log-only notifier.
func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{logger: logger}
}

// Notify logs the event at a zap level matching the event level.
func (n *Log) Notify(_ context.Context, level Level, message string) {
	switch level {
	case LevelWarning:
		n.logger.Warn(message, zap.String("event", string(level)))
	case LevelError:
		n.logger.Error(message, zap.String("event", string(level)))
	default:
		n.logger.Info(message, zap.String("event", string(level)))
	}
}
