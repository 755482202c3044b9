package venue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/flrnt/averin/internal/domain"
)

// Binance serves market data and spot market buys through the Binance API.
// With the testnet flag set on the client it doubles as the paper venue.
type Binance struct {
	client    *binance.Client
	quote     string
	timeframe string
}

// NewBinance creates a Binance venue. timeframe is a kline interval such as
// "1h" or "4h"; quote is the fiat-like quote currency, e.g. USDT.
func NewBinance(client *binance.Client, quote, timeframe string) *Binance {
	return &Binance{client: client, quote: quote, timeframe: timeframe}
}

// RecentPrices fetches the close-price series from Binance klines.
func (b *Binance) RecentPrices(ctx context.Context, asset string, lookback int) ([]domain.PriceSample, error) {
	pair := domain.Pair{Base: asset, Quote: b.quote}

	klines, err := b.client.NewKlinesService().
		Symbol(pair.Symbol()).
		Interval(b.timeframe).
		Limit(lookback).
		Do(ctx)
	if err != nil {
		return nil, classifyBinance(pkgerrors.Wrapf(err, "fetch klines for %s", pair.String()))
	}

	samples := make([]domain.PriceSample, len(klines))
	for i, k := range klines {
		closePrice, err := decimal.NewFromString(k.Close)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "parse close price at index %d for %s", i, pair.String())
		}
		samples[i] = domain.PriceSample{
			Asset: asset,
			Time:  time.UnixMilli(k.CloseTime),
			Close: closePrice,
		}
	}

	return samples, nil
}

// PlaceMarketBuy spends fiatAmount of the quote currency via a market order.
func (b *Binance) PlaceMarketBuy(ctx context.Context, asset string, fiatAmount decimal.Decimal, clientOrderID string) (Fill, error) {
	pair := domain.Pair{Base: asset, Quote: b.quote}

	order, err := b.client.NewCreateOrderService().
		Symbol(pair.Symbol()).
		Side(binance.SideTypeBuy).
		Type(binance.OrderTypeMarket).
		QuoteOrderQty(fiatAmount.String()).
		NewClientOrderID(clientOrderID).
		Do(ctx)
	if err != nil {
		return Fill{}, classifyBinance(pkgerrors.Wrapf(err, "market buy %s for %s", pair.String(), fiatAmount))
	}

	quantity, err := decimal.NewFromString(order.ExecutedQuantity)
	if err != nil {
		return Fill{}, pkgerrors.Wrap(err, "parse executed quantity")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return Fill{}, fmt.Errorf("order %s not filled (status %s)", clientOrderID, order.Status)
	}

	spentQuote, err := decimal.NewFromString(order.CummulativeQuoteQuantity)
	if err != nil {
		return Fill{}, pkgerrors.Wrap(err, "parse cumulative quote quantity")
	}

	return Fill{Price: spentQuote.Div(quantity), Quantity: quantity}, nil
}

// classifyBinance keeps API-level rejections as-is and marks everything else
// (DNS, connect, timeout) transient. An APIError means Binance answered.
func classifyBinance(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		return err
	}
	return MarkTransient(err)
}
