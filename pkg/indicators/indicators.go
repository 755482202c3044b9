// Package indicators provides the technical indicators used by the purchase
// decision engine (RSI with Wilder smoothing, SMA).
package indicators

import (
	"errors"
	"fmt"
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/shopspring/decimal"
)

// ErrInsufficientData reports a series too short for the requested period.
// It is a valid skip outcome for callers, not a failure.
var ErrInsufficientData = errors.New("not enough data points")

// RSI computes the Relative Strength Index of the series and returns the
// most recent value. Wilder's smoothing is applied to average gain and loss;
// a series with zero average loss yields exactly 100. Requires period+1
// samples, otherwise ErrInsufficientData. Deterministic and side-effect-free.
func RSI(closes []decimal.Decimal, period int) (decimal.Decimal, error) {
	if period < 2 {
		return decimal.Zero, fmt.Errorf("rsi period must be >= 2, got %d", period)
	}
	if len(closes) < period+1 {
		return decimal.Zero, fmt.Errorf("%w for RSI: need %d, got %d", ErrInsufficientData, period+1, len(closes))
	}

	rsi := momentum.NewRsiWithPeriod[float64](period)
	outputChan := rsi.Compute(helper.SliceToChan(decimalsToFloat64(closes)))
	values := helper.ChanToSlice(outputChan)
	if len(values) == 0 {
		return decimal.Zero, fmt.Errorf("%w for RSI: empty result for period %d", ErrInsufficientData, period)
	}

	last := values[len(values)-1]
	// a flat series has zero average gain and loss, which divides out to
	// NaN; zero average loss means RSI 100
	if math.IsNaN(last) || math.IsInf(last, 0) {
		return decimal.NewFromInt(100), nil
	}

	return clampRSI(decimal.NewFromFloat(last)), nil
}

// SMA computes the Simple Moving Average of the series and returns the most
// recent value. Requires period samples, otherwise ErrInsufficientData.
func SMA(closes []decimal.Decimal, period int) (decimal.Decimal, error) {
	if period < 1 {
		return decimal.Zero, fmt.Errorf("sma period must be >= 1, got %d", period)
	}
	if len(closes) < period {
		return decimal.Zero, fmt.Errorf("%w for SMA: need %d, got %d", ErrInsufficientData, period, len(closes))
	}

	sma := trend.NewSmaWithPeriod[float64](period)
	outputChan := sma.Compute(helper.SliceToChan(decimalsToFloat64(closes)))
	values := helper.ChanToSlice(outputChan)
	if len(values) == 0 {
		return decimal.Zero, fmt.Errorf("%w for SMA: empty result for period %d", ErrInsufficientData, period)
	}

	return decimal.NewFromFloat(values[len(values)-1]), nil
}

// clampRSI bounds float conversion noise into [0, 100].
func clampRSI(v decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	if v.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if v.GreaterThan(hundred) {
		return hundred
	}
	return v
}

func decimalsToFloat64(decimals []decimal.Decimal) []float64 {
	result := make([]float64, len(decimals))
	for i, d := range decimals {
		result[i], _ = d.Float64()
	}
	return result
}
