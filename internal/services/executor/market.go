package executor

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/flrnt/averin/internal/domain"
	"github.com/flrnt/averin/internal/services/venue"
)

// RejectReasonExceedsCap is the rejection reason for orders above the
// configured hard cap.
const RejectReasonExceedsCap = "exceeds cap"

// Market routes orders to a trading venue. In paper mode the venue is a
// sandbox with test funds; in real mode live capital is at stake and every
// order passes a pre-flight hard cap check before the venue is contacted.
type Market struct {
	venue   venue.Venue
	mode    domain.Mode
	hardCap decimal.Decimal
	logger  *zap.Logger
}

// NewPaper creates the sandbox-backed executor.
func NewPaper(v venue.Venue, logger *zap.Logger) *Market {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Market{venue: v, mode: domain.ModePaper, logger: logger}
}

// NewReal creates the live executor. Orders above hardCap are rejected
// without ever reaching the venue, bounding the damage a misconfigured
// allocation table can do.
func NewReal(v venue.Venue, hardCap decimal.Decimal, logger *zap.Logger) *Market {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Market{venue: v, mode: domain.ModeReal, hardCap: hardCap, logger: logger}
}

func (m *Market) Mode() domain.Mode {
	return m.mode
}

// Execute places a market buy on the venue.
func (m *Market) Execute(ctx context.Context, req domain.OrderRequest) domain.ExecutionResult {
	if req.Asset == "" {
		return domain.Rejected("missing asset")
	}
	if req.FiatAmount.LessThanOrEqual(decimal.Zero) {
		return domain.Rejected("non-positive fiat amount")
	}
	if m.mode == domain.ModeReal && req.FiatAmount.GreaterThan(m.hardCap) {
		m.logger.Warn("order exceeds hard cap",
			zap.String("asset", req.Asset),
			zap.String("fiat_amount", req.FiatAmount.String()),
			zap.String("hard_cap", m.hardCap.String()))
		return domain.Rejected(RejectReasonExceedsCap)
	}

	clientOrderID := req.ClientOrderID
	if clientOrderID == "" {
		clientOrderID = uuid.New().String()
	}

	fill, err := m.venue.PlaceMarketBuy(ctx, req.Asset, req.FiatAmount, clientOrderID)
	if err != nil {
		if venue.IsTransient(err) {
			return domain.NetworkFailure(err)
		}
		return domain.Rejected(err.Error())
	}

	m.logger.Info("market buy filled",
		zap.String("mode", string(m.mode)),
		zap.String("asset", req.Asset),
		zap.String("order_id", clientOrderID),
		zap.String("price", fill.Price.String()),
		zap.String("quantity", fill.Quantity.String()))

	return domain.Filled(fill.Price, fill.Quantity)
}
