package venue

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	bybit "github.com/hirokisan/bybit/v2"
	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/flrnt/averin/internal/domain"
)

// Bybit serves market data and spot market buys through the Bybit V5 API.
type Bybit struct {
	client    *bybit.Client
	quote     string
	timeframe string
}

// NewBybit creates a Bybit venue.
func NewBybit(client *bybit.Client, quote, timeframe string) *Bybit {
	return &Bybit{client: client, quote: quote, timeframe: timeframe}
}

// RecentPrices fetches the close-price series from Bybit spot klines.
// Bybit returns klines newest first; the result is reordered oldest first.
func (b *Bybit) RecentPrices(ctx context.Context, asset string, lookback int) ([]domain.PriceSample, error) {
	pair := domain.Pair{Base: asset, Quote: b.quote}

	interval, err := bybitInterval(b.timeframe)
	if err != nil {
		return nil, err
	}

	res, err := b.client.V5().Market().GetKline(bybit.V5GetKlineParam{
		Category: bybit.CategoryV5Spot,
		Symbol:   bybit.SymbolV5(pair.Symbol()),
		Interval: interval,
		Limit:    &lookback,
	})
	if err != nil {
		return nil, classifyBybit(pkgerrors.Wrapf(err, "fetch klines for %s", pair.String()))
	}

	list := res.Result.List
	samples := make([]domain.PriceSample, len(list))
	for i, k := range list {
		closePrice, err := decimal.NewFromString(k.Close)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "parse close price at index %d for %s", i, pair.String())
		}
		startMs, err := strconv.ParseInt(k.StartTime, 10, 64)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "parse kline start time at index %d for %s", i, pair.String())
		}
		// newest first in the response
		samples[len(list)-1-i] = domain.PriceSample{
			Asset: asset,
			Time:  time.UnixMilli(startMs),
			Close: closePrice,
		}
	}

	return samples, nil
}

// PlaceMarketBuy spends fiatAmount of the quote currency via a spot market
// order. For Bybit spot market buys the order quantity is denominated in the
// quote currency.
//
// The returned Fill is derived from the ticker price read just before the
// order, not from the executed order, so price and quantity are
// approximations within the spread.
// TODO: query the order by OrderLinkID after creation and report the
// executed average price and quantity instead.
func (b *Bybit) PlaceMarketBuy(ctx context.Context, asset string, fiatAmount decimal.Decimal, clientOrderID string) (Fill, error) {
	pair := domain.Pair{Base: asset, Quote: b.quote}

	price, err := b.lastPrice(pair)
	if err != nil {
		return Fill{}, err
	}

	_, err = b.client.V5().Order().CreateOrder(bybit.V5CreateOrderParam{
		Category:    bybit.CategoryV5Spot,
		Symbol:      bybit.SymbolV5(pair.Symbol()),
		Side:        bybit.SideBuy,
		OrderType:   bybit.OrderTypeMarket,
		Qty:         fiatAmount.String(),
		OrderLinkID: &clientOrderID,
	})
	if err != nil {
		return Fill{}, classifyBybit(pkgerrors.Wrapf(err, "market buy %s for %s", pair.String(), fiatAmount))
	}

	return Fill{Price: price, Quantity: fiatAmount.Div(price)}, nil
}

func (b *Bybit) lastPrice(pair domain.Pair) (decimal.Decimal, error) {
	symbol := bybit.SymbolV5(pair.Symbol())
	res, err := b.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: bybit.CategoryV5Spot,
		Symbol:   &symbol,
	})
	if err != nil {
		return decimal.Zero, classifyBybit(pkgerrors.Wrapf(err, "fetch ticker for %s", pair.String()))
	}
	if len(res.Result.Spot.List) == 0 {
		return decimal.Zero, fmt.Errorf("bybit returned no ticker for %s", pair.String())
	}
	return decimal.NewFromString(res.Result.Spot.List[0].LastPrice)
}

// bybitInterval maps common timeframe notation to the Bybit V5 interval codes.
func bybitInterval(timeframe string) (bybit.Interval, error) {
	switch timeframe {
	case "1m":
		return bybit.Interval1, nil
	case "5m":
		return bybit.Interval5, nil
	case "15m":
		return bybit.Interval15, nil
	case "30m":
		return bybit.Interval30, nil
	case "1h":
		return bybit.Interval60, nil
	case "4h":
		return bybit.Interval240, nil
	case "1d":
		return bybit.IntervalD, nil
	default:
		return "", fmt.Errorf("unsupported timeframe %q for bybit", timeframe)
	}
}

// classifyBybit marks transport errors transient; everything else is a venue
// response and therefore final.
func classifyBybit(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return MarkTransient(err)
	}
	return err
}
