package executor

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/flrnt/averin/internal/domain"
)

// Simulated fills every order at the last observed price sample with zero
// slippage. It never contacts any external system, which makes the full
// decision-and-ledger path testable without capital.
type Simulated struct {
	logger *zap.Logger
}

// NewSimulated creates the dry-run executor.
func NewSimulated(logger *zap.Logger) *Simulated {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulated{logger: logger}
}

func (s *Simulated) Mode() domain.Mode {
	return domain.ModeSimulated
}

// Execute fills at req.LastPrice. A request without a positive price sample
// is malformed and rejected without side effects.
func (s *Simulated) Execute(_ context.Context, req domain.OrderRequest) domain.ExecutionResult {
	if req.Asset == "" {
		return domain.Rejected("missing asset")
	}
	if req.FiatAmount.LessThanOrEqual(decimal.Zero) {
		return domain.Rejected("non-positive fiat amount")
	}
	if req.LastPrice.LessThanOrEqual(decimal.Zero) {
		return domain.Rejected("no price sample to fill against")
	}

	quantity := req.FiatAmount.Div(req.LastPrice)

	s.logger.Info("simulated fill",
		zap.String("asset", req.Asset),
		zap.String("fiat_amount", req.FiatAmount.String()),
		zap.String("price", req.LastPrice.String()),
		zap.String("quantity", quantity.String()))

	return domain.Filled(req.LastPrice, quantity)
}
