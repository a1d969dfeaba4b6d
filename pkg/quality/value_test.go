package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	// score 70 == reference, price at district average -> ratio 1.0, fair
	v, ok := Evaluate(500, 500, 70)
	require.True(t, ok)
	assert.InDelta(t, 1.0, v.Factor, 1e-9)
	assert.InDelta(t, 500.0, v.ExpectedPricePerSqm, 1e-9)
	assert.InDelta(t, 1.0, v.PriceQualityRatio, 1e-9)
	assert.Equal(t, ValueFair, v.Rating)

	// high quality at the average price is a bargain
	v, ok = Evaluate(500, 500, 100)
	require.True(t, ok)
	assert.Less(t, v.PriceQualityRatio, 1.0)
	assert.Equal(t, ValueVeryCheap, v.Rating)

	// low quality at the average price is overpriced
	v, ok = Evaluate(500, 500, 40)
	require.True(t, ok)
	assert.Greater(t, v.PriceQualityRatio, 1.15)
	assert.Equal(t, ValueVeryExpensive, v.Rating)
}

func TestEvaluateInsufficientData(t *testing.T) {
	for _, tc := range [][3]float64{
		{0, 500, 70},
		{500, 0, 70},
		{500, 500, 0},
		{-1, 500, 70},
	} {
		v, ok := Evaluate(tc[0], tc[1], tc[2])
		assert.False(t, ok)
		assert.Equal(t, ValueUnknown, v.Rating)
	}
}

func TestRateValue(t *testing.T) {
	tests := []struct {
		ratio float64
		want  ValueRating
	}{
		{0.5, ValueVeryCheap},
		{0.849, ValueVeryCheap},
		{0.85, ValueCheap},
		{0.949, ValueCheap},
		{0.95, ValueFair},
		{1.0, ValueFair},
		{1.05, ValueFair},
		{1.051, ValueExpensive},
		{1.15, ValueExpensive},
		{1.151, ValueVeryExpensive},
		{0, ValueUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RateValue(tt.ratio), "ratio %v", tt.ratio)
	}
}

func TestDealScore(t *testing.T) {
	// fair price, perfect quality: 0.6*100 + 0.4*(100-50) = 80
	assert.InDelta(t, 80.0, DealScore(100, 1.0), 1e-9)

	// cheaper is always a better deal at equal quality
	assert.Greater(t, DealScore(80, 0.8), DealScore(80, 1.2))
}
