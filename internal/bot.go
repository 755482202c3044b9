// Package internal wires the decision engine into a serialized evaluation
// loop driven on a fixed interval.
package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/flrnt/averin/internal/services/notifier"
	"github.com/flrnt/averin/internal/services/strategy/dca"
)

// Engine runs one full evaluation cycle over all configured assets.
type Engine interface {
	Evaluate(ctx context.Context) []dca.AssetOutcome
}

// LedgerStats exposes the ledger-derived figures the daily report needs.
type LedgerStats interface {
	Len() int
	TotalDeployed() decimal.Decimal
	TradesOn(ref time.Time) int
}

// Bot drives the engine at a fixed interval. Cycles are strictly serialized:
// the loop runs them one at a time, so the ledger's read-then-write daily
// gate never races with itself. Cancellation lets the in-flight cycle finish
// before the loop exits, keeping order outcomes recorded.
type Bot struct {
	engine   Engine
	stats    LedgerStats
	notifier notifier.Notifier
	interval time.Duration
	logger   *zap.Logger

	now func() time.Time
}

// NewBot assembles the evaluation loop.
func NewBot(engine Engine, stats LedgerStats, notif notifier.Notifier, interval time.Duration, logger *zap.Logger) (*Bot, error) {
	if engine == nil || stats == nil || notif == nil {
		return nil, fmt.Errorf("engine, ledger stats and notifier are all required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("check interval must be positive, got %s", interval)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		engine:   engine,
		stats:    stats,
		notifier: notif,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Run evaluates immediately, then on every tick until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("starting evaluation loop", zap.Duration("interval", b.interval))
	b.notifier.Notify(ctx, notifier.LevelInfo,
		fmt.Sprintf("bot started, evaluating every %s", b.interval))

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	reportDay := utcDay(b.now())
	b.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("shutting down evaluation loop")
			b.notifier.Notify(context.WithoutCancel(ctx), notifier.LevelInfo, "bot stopped")
			return ctx.Err()
		case <-ticker.C:
			if day := utcDay(b.now()); day != reportDay {
				b.dailyReport(ctx, reportDay)
				reportDay = day
			}
			b.cycle(ctx)
		}
	}
}

func (b *Bot) cycle(ctx context.Context) {
	start := b.now()
	outcomes := b.engine.Evaluate(ctx)

	filled := 0
	for _, o := range outcomes {
		if o.Outcome == dca.OutcomeFilled {
			filled++
		}
	}

	b.logger.Info("cycle finished",
		zap.Int("assets", len(outcomes)),
		zap.Int("filled", filled),
		zap.Duration("took", b.now().Sub(start)))
}

// dailyReport summarizes the closed UTC day from the ledger, not from any
// in-memory counter, so restarts cannot skew it.
func (b *Bot) dailyReport(ctx context.Context, closedDay time.Time) {
	b.notifier.Notify(ctx, notifier.LevelInfo,
		fmt.Sprintf("daily report %s: %d purchase(s), %d total, %s deployed overall",
			closedDay.Format("2006-01-02"),
			b.stats.TradesOn(closedDay),
			b.stats.Len(),
			b.stats.TotalDeployed().StringFixed(2)))
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
