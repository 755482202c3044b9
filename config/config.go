// Package config loads and validates the bot configuration from YAML.
// Validation failures are fatal: the bot must not start evaluating with a
// broken allocation table or weight set.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/flrnt/averin/internal/domain"
)

const (
	defaultCheckInterval  = 4 * time.Hour
	defaultRSIPeriod      = 14
	defaultTimeframe      = "4h"
	defaultLookback       = 100
	defaultQuoteCurrency  = "USDT"
	defaultLedgerDir      = "./wal/ledger"
	defaultMinTradeAmount = "10"
)

// Config is the validated runtime configuration.
type Config struct {
	Platform          string
	Mode              domain.Mode
	QuoteCurrency     string
	Weights           domain.AssetWeights
	Rules             domain.AllocationTable
	CheckInterval     time.Duration
	RSIPeriod         int
	Timeframe         string
	Lookback          int
	MinTradeAmount    decimal.Decimal
	HardCapFiat       decimal.Decimal
	LedgerDir         string
	DiscordWebhookURL string
}

type configTmp struct {
	Platform          string        `yaml:"platform"`
	Mode              string        `yaml:"mode"`
	QuoteCurrency     string        `yaml:"quote_currency,omitempty"`
	CheckInterval     time.Duration `yaml:"check_interval,omitempty"`
	RSIPeriod         int           `yaml:"rsi_period,omitempty"`
	Timeframe         string        `yaml:"timeframe,omitempty"`
	Lookback          int           `yaml:"lookback,omitempty"`
	MinTradeAmount    string        `yaml:"min_trade_amount,omitempty"`
	HardCapFiat       string        `yaml:"hard_cap_fiat"`
	LedgerDir         string        `yaml:"ledger_dir,omitempty"`
	DiscordWebhookURL string        `yaml:"discord_webhook_url,omitempty"`
	Assets            []assetTmp    `yaml:"assets"`
	AllocationRules   []ruleTmp     `yaml:"allocation_rules"`
}

type assetTmp struct {
	Symbol string `yaml:"symbol"`
	Weight string `yaml:"weight"`
}

type ruleTmp struct {
	Threshold string `yaml:"threshold"`
	Amount    string `yaml:"amount"`
}

// Get parses the --config flag and loads the file it points to.
func Get() (*Config, error) {
	path := flag.String("config", "config.yaml", "path to yaml config")
	flag.Parse()
	return Load(*path)
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var tmp configTmp
	if err := yaml.Unmarshal(raw, &tmp); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return tmp.build()
}

func (t configTmp) build() (*Config, error) {
	mode, err := domain.ParseMode(t.Mode)
	if err != nil {
		return nil, err
	}

	switch t.Platform {
	case "binance", "bybit":
	case "":
		return nil, fmt.Errorf("'platform' is required (binance or bybit)")
	default:
		return nil, fmt.Errorf("unsupported platform %q (expected binance or bybit)", t.Platform)
	}

	cfg := &Config{
		Platform:          t.Platform,
		Mode:              mode,
		QuoteCurrency:     t.QuoteCurrency,
		CheckInterval:     t.CheckInterval,
		RSIPeriod:         t.RSIPeriod,
		Timeframe:         t.Timeframe,
		Lookback:          t.Lookback,
		LedgerDir:         t.LedgerDir,
		DiscordWebhookURL: t.DiscordWebhookURL,
	}
	if cfg.QuoteCurrency == "" {
		cfg.QuoteCurrency = defaultQuoteCurrency
	}
	if cfg.CheckInterval == 0 {
		cfg.CheckInterval = defaultCheckInterval
	}
	if cfg.CheckInterval < 0 {
		return nil, fmt.Errorf("'check_interval' must be positive, got %s", cfg.CheckInterval)
	}
	if cfg.RSIPeriod == 0 {
		cfg.RSIPeriod = defaultRSIPeriod
	}
	if cfg.RSIPeriod < 2 {
		return nil, fmt.Errorf("'rsi_period' must be >= 2, got %d", cfg.RSIPeriod)
	}
	if cfg.Timeframe == "" {
		cfg.Timeframe = defaultTimeframe
	}
	if cfg.Lookback == 0 {
		cfg.Lookback = defaultLookback
	}
	if cfg.Lookback < cfg.RSIPeriod+1 {
		return nil, fmt.Errorf("'lookback' %d too short for rsi period %d", cfg.Lookback, cfg.RSIPeriod)
	}
	if cfg.LedgerDir == "" {
		cfg.LedgerDir = defaultLedgerDir
	}

	minTrade := t.MinTradeAmount
	if minTrade == "" {
		minTrade = defaultMinTradeAmount
	}
	cfg.MinTradeAmount, err = decimal.NewFromString(minTrade)
	if err != nil {
		return nil, fmt.Errorf("incorrect 'min_trade_amount' %q: %w", minTrade, err)
	}
	if cfg.MinTradeAmount.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("'min_trade_amount' must not be negative, got %s", cfg.MinTradeAmount)
	}

	cfg.Weights, err = buildWeights(t.Assets)
	if err != nil {
		return nil, err
	}

	cfg.Rules, err = buildRules(t.AllocationRules)
	if err != nil {
		return nil, err
	}

	if err := cfg.buildHardCap(t.HardCapFiat); err != nil {
		return nil, err
	}

	if cfg.Mode == domain.ModeReal {
		if largest := largestOrder(cfg.Rules, cfg.Weights); cfg.HardCapFiat.LessThan(largest) {
			return nil, fmt.Errorf("'hard_cap_fiat' %s below the largest possible order %s",
				cfg.HardCapFiat, largest)
		}
	}

	return cfg, nil
}

// largestOrder is the biggest spend the allocation can ever produce: the
// largest rule amount times the heaviest asset weight.
func largestOrder(rules domain.AllocationTable, weights domain.AssetWeights) decimal.Decimal {
	maxWeight := decimal.Zero
	for _, aw := range weights {
		if aw.Weight.GreaterThan(maxWeight) {
			maxWeight = aw.Weight
		}
	}
	return rules.MaxAmount().Mul(maxWeight)
}

func buildWeights(assets []assetTmp) (domain.AssetWeights, error) {
	weights := make(domain.AssetWeights, 0, len(assets))
	for i, a := range assets {
		weight, err := decimal.NewFromString(a.Weight)
		if err != nil {
			return nil, fmt.Errorf("incorrect 'weight' for asset %d (%s): %w", i, a.Symbol, err)
		}
		weights = append(weights, domain.AssetWeight{Asset: a.Symbol, Weight: weight})
	}
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid 'assets': %w", err)
	}
	return weights, nil
}

func buildRules(rules []ruleTmp) (domain.AllocationTable, error) {
	parsed := make([]domain.AllocationRule, 0, len(rules))
	for i, r := range rules {
		threshold, err := decimal.NewFromString(r.Threshold)
		if err != nil {
			return domain.AllocationTable{}, fmt.Errorf("incorrect 'threshold' in rule %d: %w", i, err)
		}
		amount, err := decimal.NewFromString(r.Amount)
		if err != nil {
			return domain.AllocationTable{}, fmt.Errorf("incorrect 'amount' in rule %d: %w", i, err)
		}
		parsed = append(parsed, domain.AllocationRule{Threshold: threshold, Amount: amount})
	}

	table, err := domain.NewAllocationTable(parsed)
	if err != nil {
		return domain.AllocationTable{}, fmt.Errorf("invalid 'allocation_rules': %w", err)
	}
	return table, nil
}

// buildHardCap parses the per-trade cap. Real mode refuses to run without one.
func (c *Config) buildHardCap(raw string) error {
	if raw == "" {
		if c.Mode == domain.ModeReal {
			return fmt.Errorf("'hard_cap_fiat' is required in real mode")
		}
		c.HardCapFiat = decimal.Zero
		return nil
	}

	hardCap, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("incorrect 'hard_cap_fiat' %q: %w", raw, err)
	}
	if hardCap.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("'hard_cap_fiat' must be positive, got %s", hardCap)
	}
	c.HardCapFiat = hardCap
	return nil
}
