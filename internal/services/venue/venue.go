// Package venue abstracts the trading venues behind one market-data and
// order-placement interface. Transport-level failures are marked transient
// so the execution layer can map them to a uniform network-failure outcome.
package venue

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/flrnt/averin/internal/domain"
)

// Fill is the venue's report of an executed market buy.
type Fill struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// Venue is a trading backend able to serve recent prices and accept market
// buy orders denominated in fiat.
type Venue interface {
	// RecentPrices returns an ordered close-price series for the asset,
	// oldest first, at most lookback samples.
	RecentPrices(ctx context.Context, asset string, lookback int) ([]domain.PriceSample, error)
	// PlaceMarketBuy spends fiatAmount of quote currency on the asset.
	// clientOrderID makes the order idempotent on venues that support it.
	PlaceMarketBuy(ctx context.Context, asset string, fiatAmount decimal.Decimal, clientOrderID string) (Fill, error)
}

// TransientError wraps a venue failure caused by the transport rather than
// the venue's decision, e.g. a timeout or refused connection.
type TransientError struct {
	cause error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient venue failure: %v", e.cause)
}

func (e *TransientError) Unwrap() error {
	return e.cause
}

// MarkTransient wraps err as retryable. Nil stays nil.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{cause: err}
}

// IsTransient reports whether err carries a TransientError anywhere in its
// chain.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
