package indicators

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closes(values ...float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}

func TestRSIInsufficientData(t *testing.T) {
	// period 14 needs 15 samples
	_, err := RSI(closes(100, 101, 102), 14)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = RSI(nil, 14)
	assert.ErrorIs(t, err, ErrInsufficientData)

	// exactly period+1 samples is enough
	series := make([]float64, 15)
	for i := range series {
		series[i] = 100 + float64(i)
	}
	_, err = RSI(closes(series...), 14)
	assert.NoError(t, err)
}

func TestRSIInvalidPeriod(t *testing.T) {
	_, err := RSI(closes(100, 101, 102), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInsufficientData)
}

func TestRSIAllGainsIsHundred(t *testing.T) {
	value, err := RSI(closes(100, 101, 102, 103, 104, 105), 2)
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.NewFromInt(100)), "got %s", value)
}

func TestRSIFlatSeriesIsHundred(t *testing.T) {
	// zero average gain and loss must not blow up the conversion
	value, err := RSI(closes(100, 100, 100, 100, 100, 100), 2)
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.NewFromInt(100)), "got %s", value)

	value, err = RSI(closes(100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100), 14)
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.NewFromInt(100)), "got %s", value)
}

func TestRSIAllLossesIsZero(t *testing.T) {
	value, err := RSI(closes(105, 104, 103, 102, 101, 100), 2)
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.Zero), "got %s", value)
}

func TestRSIBounds(t *testing.T) {
	series := closes(100, 98, 103, 97, 105, 99, 104, 101, 96, 102, 100, 98, 107, 95, 103, 101)
	value, err := RSI(series, 14)
	require.NoError(t, err)
	assert.True(t, value.GreaterThanOrEqual(decimal.Zero))
	assert.True(t, value.LessThanOrEqual(decimal.NewFromInt(100)))
}

func TestRSIDeterministic(t *testing.T) {
	series := closes(100, 98, 103, 97, 105, 99, 104, 101, 96, 102, 100, 98, 107, 95, 103)
	first, err := RSI(series, 14)
	require.NoError(t, err)
	second, err := RSI(series, 14)
	require.NoError(t, err)
	assert.True(t, first.Equal(second), "%s != %s", first, second)
}

func TestSMA(t *testing.T) {
	value, err := SMA(closes(1, 2, 3, 4, 5), 5)
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.NewFromInt(3)), "got %s", value)

	// latest window only
	value, err = SMA(closes(100, 1, 2, 3), 3)
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.NewFromInt(2)), "got %s", value)

	_, err = SMA(closes(1, 2), 3)
	assert.ErrorIs(t, err, ErrInsufficientData)
}
