// Command averin runs the RSI-gated DCA purchase bot. It watches a set of
// assets on Binance or Bybit, buys a fixed fiat amount when the RSI drops
// below a configured threshold, and records every purchase in a durable
// ledger that enforces one buy per UTC day across all assets.
//
// Usage:
//
//	averin --config config.yaml
//
// Required environment variables (paper and real modes only):
//
//	For Binance: BINANCE_API_KEY, BINANCE_API_SECRET
//	For Bybit: BYBIT_API_KEY, BYBIT_API_SECRET
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/flrnt/averin/config"
	"github.com/flrnt/averin/internal"
	"github.com/flrnt/averin/internal/clients"
	"github.com/flrnt/averin/internal/domain"
	"github.com/flrnt/averin/internal/services/executor"
	"github.com/flrnt/averin/internal/services/notifier"
	"github.com/flrnt/averin/internal/services/strategy/dca"
	"github.com/flrnt/averin/internal/services/venue"
	"github.com/flrnt/averin/internal/storage/ledger"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	market, exec, err := buildExecution(cfg, logger)
	if err != nil {
		logger.Fatal("execution setup failed", zap.Error(err))
	}

	var notif notifier.Notifier
	if cfg.DiscordWebhookURL != "" {
		notif = notifier.NewDiscord(cfg.DiscordWebhookURL, logger)
	} else {
		notif = notifier.NewLog(logger)
	}

	trades, err := ledger.Open(cfg.LedgerDir)
	if err != nil {
		logger.Fatal("failed to open trade ledger", zap.Error(err))
	}
	defer trades.Close()

	engine, err := dca.NewEngine(dca.Config{
		Weights:        cfg.Weights,
		Rules:          cfg.Rules,
		RSIPeriod:      cfg.RSIPeriod,
		Lookback:       cfg.Lookback,
		MinTradeAmount: cfg.MinTradeAmount,
	}, market, exec, trades, notif, nil, logger)
	if err != nil {
		logger.Fatal("failed to build engine", zap.Error(err))
	}

	bot, err := internal.NewBot(engine, trades, notif, cfg.CheckInterval, logger)
	if err != nil {
		logger.Fatal("failed to build bot", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bot.Run(ctx); err != nil {
		logger.Fatal("bot exited with error", zap.Error(err))
	}
}

// buildExecution wires the market data source and the order executor for
// the configured platform and mode. Simulated mode reads public market
// data without credentials and never places orders.
func buildExecution(cfg *config.Config, logger *zap.Logger) (dca.MarketData, executor.Executor, error) {
	var v venue.Venue
	switch cfg.Platform {
	case "binance":
		apiKey, apiSecret, err := credentials(cfg.Mode, "BINANCE_API_KEY", "BINANCE_API_SECRET")
		if err != nil {
			return nil, nil, err
		}
		client := clients.NewBinanceClient(apiKey, apiSecret, cfg.Mode == domain.ModePaper)
		v = venue.NewBinance(client, cfg.QuoteCurrency, cfg.Timeframe)
	case "bybit":
		apiKey, apiSecret, err := credentials(cfg.Mode, "BYBIT_API_KEY", "BYBIT_API_SECRET")
		if err != nil {
			return nil, nil, err
		}
		client := clients.NewBybitClient(apiKey, apiSecret, cfg.Mode == domain.ModePaper)
		v = venue.NewBybit(client, cfg.QuoteCurrency, cfg.Timeframe)
	}

	switch cfg.Mode {
	case domain.ModeSimulated:
		return v, executor.NewSimulated(logger), nil
	case domain.ModePaper:
		return v, executor.NewPaper(v, logger), nil
	default:
		return v, executor.NewReal(v, cfg.HardCapFiat, logger), nil
	}
}

// credentials reads API keys from the environment. Simulated mode uses
// public endpoints only, so missing keys are fine there.
func credentials(mode domain.Mode, keyVar, secretVar string) (string, string, error) {
	apiKey := os.Getenv(keyVar)
	apiSecret := os.Getenv(secretVar)
	if mode != domain.ModeSimulated && (apiKey == "" || apiSecret == "") {
		return "", "", fmt.Errorf("%s and %s environment variables must be set", keyVar, secretVar)
	}
	return apiKey, apiSecret, nil
}
