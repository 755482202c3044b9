package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flrnt/averin/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validYAML = `
platform: binance
mode: simulated
quote_currency: USDT
assets:
  - symbol: BTC
    weight: "0.7"
  - symbol: ETH
    weight: "0.3"
allocation_rules:
  - threshold: "30"
    amount: "40"
  - threshold: "40"
    amount: "25"
  - threshold: "50"
    amount: "15"
check_interval: 4h
timeframe: 4h
rsi_period: 14
lookback: 100
min_trade_amount: "10"
hard_cap_fiat: "100"
ledger_dir: /tmp/averin-ledger
discord_webhook_url: https://discord.com/api/webhooks/123/abc
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "binance", cfg.Platform)
	assert.Equal(t, domain.ModeSimulated, cfg.Mode)
	assert.Equal(t, "USDT", cfg.QuoteCurrency)
	assert.Equal(t, 4*time.Hour, cfg.CheckInterval)
	assert.Equal(t, 14, cfg.RSIPeriod)
	assert.Equal(t, "4h", cfg.Timeframe)
	assert.Equal(t, 100, cfg.Lookback)
	assert.True(t, cfg.MinTradeAmount.Equal(decimal.NewFromInt(10)))
	assert.True(t, cfg.HardCapFiat.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "/tmp/averin-ledger", cfg.LedgerDir)
	assert.Equal(t, "https://discord.com/api/webhooks/123/abc", cfg.DiscordWebhookURL)

	require.Len(t, cfg.Weights, 2)
	assert.Equal(t, "BTC", cfg.Weights[0].Asset)
	assert.True(t, cfg.Weights[0].Weight.Equal(decimal.NewFromFloat(0.7)))

	amount, ok := cfg.Rules.AmountFor(decimal.NewFromInt(29))
	require.True(t, ok)
	assert.True(t, amount.Equal(decimal.NewFromInt(40)))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
platform: bybit
mode: simulated
assets:
  - symbol: BTC
    weight: "1"
allocation_rules:
  - threshold: "30"
    amount: "40"
`))
	require.NoError(t, err)

	assert.Equal(t, "USDT", cfg.QuoteCurrency)
	assert.Equal(t, 4*time.Hour, cfg.CheckInterval)
	assert.Equal(t, 14, cfg.RSIPeriod)
	assert.Equal(t, "4h", cfg.Timeframe)
	assert.Equal(t, 100, cfg.Lookback)
	assert.True(t, cfg.MinTradeAmount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "./wal/ledger", cfg.LedgerDir)
	assert.Empty(t, cfg.DiscordWebhookURL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown mode",
			yaml:    "platform: binance\nmode: dry\nassets:\n  - symbol: BTC\n    weight: \"1\"\nallocation_rules:\n  - threshold: \"30\"\n    amount: \"40\"\n",
			wantErr: "unknown trading mode",
		},
		{
			name:    "unsupported platform",
			yaml:    "platform: kraken\nmode: simulated\nassets:\n  - symbol: BTC\n    weight: \"1\"\nallocation_rules:\n  - threshold: \"30\"\n    amount: \"40\"\n",
			wantErr: "unsupported platform",
		},
		{
			name:    "missing platform",
			yaml:    "mode: simulated\nassets:\n  - symbol: BTC\n    weight: \"1\"\nallocation_rules:\n  - threshold: \"30\"\n    amount: \"40\"\n",
			wantErr: "'platform' is required",
		},
		{
			name:    "weights do not sum to one",
			yaml:    "platform: binance\nmode: simulated\nassets:\n  - symbol: BTC\n    weight: \"0.7\"\nallocation_rules:\n  - threshold: \"30\"\n    amount: \"40\"\n",
			wantErr: "invalid 'assets'",
		},
		{
			name:    "thresholds out of order",
			yaml:    "platform: binance\nmode: simulated\nassets:\n  - symbol: BTC\n    weight: \"1\"\nallocation_rules:\n  - threshold: \"50\"\n    amount: \"15\"\n  - threshold: \"30\"\n    amount: \"40\"\n",
			wantErr: "invalid 'allocation_rules'",
		},
		{
			name:    "no allocation rules",
			yaml:    "platform: binance\nmode: simulated\nassets:\n  - symbol: BTC\n    weight: \"1\"\n",
			wantErr: "invalid 'allocation_rules'",
		},
		{
			name:    "real mode requires hard cap",
			yaml:    "platform: binance\nmode: real\nassets:\n  - symbol: BTC\n    weight: \"1\"\nallocation_rules:\n  - threshold: \"30\"\n    amount: \"40\"\n",
			wantErr: "'hard_cap_fiat' is required",
		},
		{
			name:    "non-positive hard cap",
			yaml:    "platform: binance\nmode: real\nhard_cap_fiat: \"0\"\nassets:\n  - symbol: BTC\n    weight: \"1\"\nallocation_rules:\n  - threshold: \"30\"\n    amount: \"40\"\n",
			wantErr: "'hard_cap_fiat' must be positive",
		},
		{
			name:    "hard cap below the largest possible order",
			yaml:    "platform: binance\nmode: real\nhard_cap_fiat: \"20\"\nassets:\n  - symbol: BTC\n    weight: \"1\"\nallocation_rules:\n  - threshold: \"30\"\n    amount: \"40\"\n",
			wantErr: "below the largest possible order",
		},
		{
			name:    "lookback too short for rsi period",
			yaml:    "platform: binance\nmode: simulated\nrsi_period: 14\nlookback: 10\nassets:\n  - symbol: BTC\n    weight: \"1\"\nallocation_rules:\n  - threshold: \"30\"\n    amount: \"40\"\n",
			wantErr: "'lookback'",
		},
		{
			name:    "malformed weight",
			yaml:    "platform: binance\nmode: simulated\nassets:\n  - symbol: BTC\n    weight: \"lots\"\nallocation_rules:\n  - threshold: \"30\"\n    amount: \"40\"\n",
			wantErr: "incorrect 'weight'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
