// Package domain holds the core value types shared across the bot: price
// samples, RSI snapshots, allocation rules, trade records and execution
// results. Everything monetary is decimal, never float.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pair is a base/quote market identifier.
type Pair struct {
	Base  string
	Quote string
}

// Symbol renders the pair the way exchanges expect it, e.g. BTCUSDT.
func (p Pair) Symbol() string {
	return p.Base + p.Quote
}

func (p Pair) String() string {
	return p.Base + "_" + p.Quote
}

// PriceSample is one close price observation for an asset.
type PriceSample struct {
	Asset string
	Time  time.Time
	Close decimal.Decimal
}

// SignalStrength grades how deep an oversold reading is.
type SignalStrength string

const (
	SignalStrong   SignalStrength = "STRONG"
	SignalModerate SignalStrength = "MODERATE"
	SignalWeak     SignalStrength = "WEAK"
	SignalNone     SignalStrength = "NONE"
)

var (
	strongBelow   = decimal.NewFromInt(25)
	moderateBelow = decimal.NewFromInt(35)
	weakBelow     = decimal.NewFromInt(50)
)

// RsiSnapshot is the RSI of an asset at a point in time. Valid is false when
// the price series was too short to produce a reading; Value is meaningless
// then.
type RsiSnapshot struct {
	Asset string
	Time  time.Time
	Value decimal.Decimal
	Valid bool
}

// Strength grades the snapshot for notifications.
func (s RsiSnapshot) Strength() SignalStrength {
	if !s.Valid {
		return SignalNone
	}
	switch {
	case s.Value.LessThan(strongBelow):
		return SignalStrong
	case s.Value.LessThan(moderateBelow):
		return SignalModerate
	case s.Value.LessThan(weakBelow):
		return SignalWeak
	default:
		return SignalNone
	}
}
