// Package dca implements the RSI-gated purchase decision engine. The engine
// holds no state between cycles: every evaluation derives its decisions from
// live market data and the durable trade ledger, so a restart never changes
// behavior.
package dca

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/flrnt/averin/internal/domain"
	"github.com/flrnt/averin/internal/services/executor"
	"github.com/flrnt/averin/internal/services/notifier"
	"github.com/flrnt/averin/pkg/indicators"
	"github.com/flrnt/averin/pkg/retrier"
)

// MarketData serves ordered close-price series, oldest first.
type MarketData interface {
	RecentPrices(ctx context.Context, asset string, lookback int) ([]domain.PriceSample, error)
}

// TradeLedger is the durable record the daily gate is derived from.
type TradeLedger interface {
	Append(record domain.TradeRecord) error
	HasTradeToday(ref time.Time) bool
}

// Outcome is the terminal state of one asset's evaluation within a cycle.
type Outcome string

const (
	// OutcomeFilled means a purchase was executed and recorded.
	OutcomeFilled Outcome = "filled"
	// OutcomeThrottled means a rule fired but a purchase already happened
	// on the current UTC day.
	OutcomeThrottled Outcome = "throttled"
	// OutcomeNoOpportunity means no rule fired, the series was too short,
	// or the weighted spend fell below the minimum trade amount.
	OutcomeNoOpportunity Outcome = "no_opportunity"
	// OutcomeRejected means the executor declined the order.
	OutcomeRejected Outcome = "rejected"
	// OutcomeFailed means retries were exhausted or the ledger write failed.
	OutcomeFailed Outcome = "failed"
)

// AssetOutcome reports what happened to one asset during a cycle.
type AssetOutcome struct {
	Asset   string
	Outcome Outcome
	RSI     domain.RsiSnapshot
	Spend   decimal.Decimal
	Record  *domain.TradeRecord
	Reason  string
}

// Config carries the static decision parameters.
type Config struct {
	Weights        domain.AssetWeights
	Rules          domain.AllocationTable
	RSIPeriod      int
	Lookback       int
	MinTradeAmount decimal.Decimal
}

// Engine evaluates the allocation rules against live RSI once per cycle.
type Engine struct {
	cfg      Config
	market   MarketData
	executor executor.Executor
	ledger   TradeLedger
	notifier notifier.Notifier
	retrier  *retrier.Retrier
	logger   *zap.Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewEngine validates the configuration and builds the engine. An invalid
// allocation set is a startup failure: the engine must not evaluate with it.
func NewEngine(cfg Config, market MarketData, exec executor.Executor, ledger TradeLedger,
	notif notifier.Notifier, ret *retrier.Retrier, logger *zap.Logger) (*Engine, error) {

	if err := cfg.Weights.Validate(); err != nil {
		return nil, pkgerrors.Wrap(err, "invalid asset weights")
	}
	if cfg.RSIPeriod < 2 {
		return nil, fmt.Errorf("rsi period must be >= 2, got %d", cfg.RSIPeriod)
	}
	if cfg.Lookback < cfg.RSIPeriod+1 {
		return nil, fmt.Errorf("lookback %d too short for rsi period %d (need at least %d)",
			cfg.Lookback, cfg.RSIPeriod, cfg.RSIPeriod+1)
	}
	if cfg.MinTradeAmount.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("minimum trade amount must not be negative, got %s", cfg.MinTradeAmount)
	}
	if market == nil || exec == nil || ledger == nil || notif == nil {
		return nil, fmt.Errorf("market data, executor, ledger and notifier are all required")
	}
	if ret == nil {
		ret = retrier.New(retrier.Config{MaxRetries: 3})
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		cfg:      cfg,
		market:   market,
		executor: exec,
		ledger:   ledger,
		notifier: notif,
		retrier:  ret,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Evaluate runs one full cycle over every configured asset, in configuration
// order. A failure for one asset never aborts the evaluation of the others.
// The daily gate is consulted fresh before each asset's execution, so the
// first fill of a UTC day throttles every later asset in the same cycle.
func (e *Engine) Evaluate(ctx context.Context) []AssetOutcome {
	outcomes := make([]AssetOutcome, 0, len(e.cfg.Weights))
	for _, aw := range e.cfg.Weights {
		outcome := e.evaluateAsset(ctx, aw)
		e.logger.Info("asset evaluated",
			zap.String("asset", outcome.Asset),
			zap.String("outcome", string(outcome.Outcome)),
			zap.String("reason", outcome.Reason))
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (e *Engine) evaluateAsset(ctx context.Context, aw domain.AssetWeight) AssetOutcome {
	samples, err := e.market.RecentPrices(ctx, aw.Asset, e.cfg.Lookback)
	if err != nil {
		e.logger.Error("price fetch failed", zap.String("asset", aw.Asset), zap.Error(err))
		e.notifier.Notify(ctx, notifier.LevelError,
			fmt.Sprintf("%s: failed to fetch prices: %v", aw.Asset, err))
		return AssetOutcome{Asset: aw.Asset, Outcome: OutcomeFailed, Reason: "price fetch failed"}
	}

	snapshot := e.computeRSI(aw.Asset, samples)
	if !snapshot.Valid {
		// too little history is a valid skip, not a failure
		e.notifier.Notify(ctx, notifier.LevelInfo,
			fmt.Sprintf("%s: insufficient data for RSI(%d), skipping", aw.Asset, e.cfg.RSIPeriod))
		return AssetOutcome{Asset: aw.Asset, Outcome: OutcomeNoOpportunity, RSI: snapshot, Reason: "insufficient data"}
	}

	ruleAmount, ok := e.cfg.Rules.AmountFor(snapshot.Value)
	if !ok {
		e.notifier.Notify(ctx, notifier.LevelInfo,
			fmt.Sprintf("%s: RSI %s above every threshold, no opportunity", aw.Asset, snapshot.Value.StringFixed(1)))
		return AssetOutcome{Asset: aw.Asset, Outcome: OutcomeNoOpportunity, RSI: snapshot, Reason: "no rule fired"}
	}

	spend := ruleAmount.Mul(aw.Weight)

	// Opportunities are reported even when the daily gate throttles them
	// below; missed signals stay visible.
	e.notifier.Notify(ctx, notifier.LevelOpportunity,
		fmt.Sprintf("%s: RSI %s (%s signal), buy opportunity of %s",
			aw.Asset, snapshot.Value.StringFixed(1), snapshot.Strength(), spend.StringFixed(2)))

	if e.ledger.HasTradeToday(e.now()) {
		e.notifier.Notify(ctx, notifier.LevelInfo,
			fmt.Sprintf("%s: throttled, a purchase was already made today", aw.Asset))
		return AssetOutcome{Asset: aw.Asset, Outcome: OutcomeThrottled, RSI: snapshot, Spend: spend, Reason: "daily limit reached"}
	}

	if spend.LessThan(e.cfg.MinTradeAmount) {
		e.notifier.Notify(ctx, notifier.LevelInfo,
			fmt.Sprintf("%s: weighted spend %s below minimum trade amount %s",
				aw.Asset, spend.StringFixed(2), e.cfg.MinTradeAmount.StringFixed(2)))
		return AssetOutcome{Asset: aw.Asset, Outcome: OutcomeNoOpportunity, RSI: snapshot, Spend: spend, Reason: "below minimum trade amount"}
	}

	return e.execute(ctx, aw.Asset, spend, snapshot, lastClose(samples))
}

// computeRSI derives the snapshot for the asset from its price series.
func (e *Engine) computeRSI(asset string, samples []domain.PriceSample) domain.RsiSnapshot {
	closes := make([]decimal.Decimal, len(samples))
	for i, s := range samples {
		closes[i] = s.Close
	}

	value, err := indicators.RSI(closes, e.cfg.RSIPeriod)
	if err != nil {
		if !errors.Is(err, indicators.ErrInsufficientData) {
			e.logger.Warn("rsi computation failed", zap.String("asset", asset), zap.Error(err))
		}
		return domain.RsiSnapshot{Asset: asset, Time: e.now()}
	}

	return domain.RsiSnapshot{Asset: asset, Time: e.now(), Value: value, Valid: true}
}

// execute runs the executor with the transient-failure retry policy and
// records a fill in the ledger. The append is the last step: a cancellation
// before it loses the cycle's trade but never leaves a partial record.
func (e *Engine) execute(ctx context.Context, asset string, spend decimal.Decimal,
	snapshot domain.RsiSnapshot, lastPrice decimal.Decimal) AssetOutcome {

	// one ID per decision: retries of the same buy reuse it so the venue
	// can deduplicate an attempt that timed out after being accepted
	orderID := uuid.New().String()
	req := domain.OrderRequest{Asset: asset, FiatAmount: spend, LastPrice: lastPrice, ClientOrderID: orderID}

	result, err := retrier.DoWithData(e.retrier, ctx, func(ctx context.Context) (domain.ExecutionResult, error) {
		res := e.executor.Execute(ctx, req)
		if res.Status == domain.ExecutionNetworkFailure {
			return res, res.Cause
		}
		return res, nil
	})
	if err != nil || result.Status == domain.ExecutionNetworkFailure {
		e.logger.Error("execution retries exhausted", zap.String("asset", asset), zap.Error(err))
		e.notifier.Notify(ctx, notifier.LevelError,
			fmt.Sprintf("%s: buy of %s failed after retries: %v", asset, spend.StringFixed(2), err))
		return AssetOutcome{Asset: asset, Outcome: OutcomeFailed, RSI: snapshot, Spend: spend, Reason: "network failure"}
	}

	switch result.Status {
	case domain.ExecutionRejected:
		e.notifier.Notify(ctx, notifier.LevelWarning,
			fmt.Sprintf("%s: buy of %s rejected: %s", asset, spend.StringFixed(2), result.Reason))
		return AssetOutcome{Asset: asset, Outcome: OutcomeRejected, RSI: snapshot, Spend: spend, Reason: result.Reason}

	case domain.ExecutionFilled:
		record := domain.TradeRecord{
			ID:         orderID,
			Timestamp:  e.now().UTC(),
			Asset:      asset,
			FiatAmount: spend,
			Quantity:   result.Quantity,
			Price:      result.Price,
			RSI:        snapshot.Value,
			Mode:       e.executor.Mode(),
		}

		if err := e.ledger.Append(record); err != nil {
			// the trade happened but is unrecorded; never report success
			e.logger.Error("ledger append failed", zap.String("asset", asset), zap.Error(err))
			e.notifier.Notify(ctx, notifier.LevelError,
				fmt.Sprintf("%s: trade executed but ledger write failed: %v", asset, err))
			return AssetOutcome{Asset: asset, Outcome: OutcomeFailed, RSI: snapshot, Spend: spend, Reason: "ledger write failed"}
		}

		e.notifier.Notify(ctx, notifier.LevelTrade,
			fmt.Sprintf("%s: bought %s @ %s for %s (RSI %s, %s)",
				asset, result.Quantity.StringFixed(8), result.Price.StringFixed(2),
				spend.StringFixed(2), snapshot.Value.StringFixed(1), e.executor.Mode()))
		return AssetOutcome{Asset: asset, Outcome: OutcomeFilled, RSI: snapshot, Spend: spend, Record: &record}

	default:
		e.logger.Error("unexpected execution status", zap.String("status", string(result.Status)))
		return AssetOutcome{Asset: asset, Outcome: OutcomeFailed, RSI: snapshot, Spend: spend, Reason: "unexpected execution status"}
	}
}

func lastClose(samples []domain.PriceSample) decimal.Decimal {
	if len(samples) == 0 {
		return decimal.Zero
	}
	return samples[len(samples)-1].Close
}
