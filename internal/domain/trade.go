package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Mode selects which trade backend executes purchases.
type Mode string

const (
	ModeSimulated Mode = "simulated"
	ModePaper     Mode = "paper"
	ModeReal      Mode = "real"
)

// ParseMode validates the string form of a trading mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSimulated, ModePaper, ModeReal:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown trading mode %q (expected simulated, paper or real)", s)
	}
}

// TradeRecord is one executed purchase. Records are immutable once written
// and owned exclusively by the ledger.
type TradeRecord struct {
	ID         string          `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	Asset      string          `json:"asset"`
	FiatAmount decimal.Decimal `json:"fiat_amount"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	RSI        decimal.Decimal `json:"rsi"`
	Mode       Mode            `json:"mode"`
}

// Validate checks record invariants before it enters the ledger.
func (r TradeRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("trade record id is required")
	}
	if r.Asset == "" {
		return fmt.Errorf("trade record asset is required")
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("trade record timestamp is required")
	}
	if r.FiatAmount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("trade record fiat amount must be positive, got %s", r.FiatAmount)
	}
	if r.Quantity.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("trade record quantity must be positive, got %s", r.Quantity)
	}
	if r.Price.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("trade record price must be positive, got %s", r.Price)
	}
	return nil
}

func (r TradeRecord) String() string {
	return fmt.Sprintf("%s: %s %s for %s @ %s (rsi %s, %s)",
		r.Timestamp.UTC().Format(time.RFC3339), r.Quantity, r.Asset, r.FiatAmount, r.Price, r.RSI, r.Mode)
}
