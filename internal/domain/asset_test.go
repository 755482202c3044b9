package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPairSymbol(t *testing.T) {
	pair := Pair{Base: "BTC", Quote: "USDT"}
	assert.Equal(t, "BTCUSDT", pair.Symbol())
	assert.Equal(t, "BTC_USDT", pair.String())
}

func TestRsiSnapshotStrength(t *testing.T) {
	tests := []struct {
		name     string
		snapshot RsiSnapshot
		expected SignalStrength
	}{
		{
			name:     "invalid snapshot has no signal",
			snapshot: RsiSnapshot{Asset: "BTC"},
			expected: SignalNone,
		},
		{
			name:     "deep oversold is strong",
			snapshot: RsiSnapshot{Asset: "BTC", Value: decimal.NewFromInt(20), Valid: true},
			expected: SignalStrong,
		},
		{
			name:     "boundary 25 is moderate",
			snapshot: RsiSnapshot{Asset: "BTC", Value: decimal.NewFromInt(25), Valid: true},
			expected: SignalModerate,
		},
		{
			name:     "boundary 35 is weak",
			snapshot: RsiSnapshot{Asset: "BTC", Value: decimal.NewFromInt(35), Valid: true},
			expected: SignalWeak,
		},
		{
			name:     "boundary 50 is none",
			snapshot: RsiSnapshot{Asset: "BTC", Value: decimal.NewFromInt(50), Valid: true},
			expected: SignalNone,
		},
		{
			name:     "overbought is none",
			snapshot: RsiSnapshot{Asset: "BTC", Value: decimal.NewFromInt(80), Valid: true},
			expected: SignalNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.snapshot.Strength())
		})
	}
}
