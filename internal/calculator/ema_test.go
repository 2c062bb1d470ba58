package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateEMA_SeedAndRecursion(t *testing.T) {
	out, err := CalculateEMA([]float64{10, 20, 30}, 3)
	require.NoError(t, err)
	require.Len(t, out, 3)

	// alpha = 0.5
	assert.Equal(t, 10.0, out[0])
	assert.InDelta(t, 15.0, out[1], 1e-12)
	assert.InDelta(t, 22.5, out[2], 1e-12)
}

func TestCalculateEMA_ConstantSeries(t *testing.T) {
	prices := []float64{42, 42, 42, 42, 42}
	out, err := CalculateEMA(prices, 20)
	require.NoError(t, err)
	for i, v := range out {
		assert.InDeltaf(t, 42.0, v, 1e-12, "index %d", i)
	}
}

func TestCalculateEMA_Errors(t *testing.T) {
	_, err := CalculateEMA([]float64{1, 2}, 0)
	assert.Error(t, err)

	_, err = CalculateEMA(nil, 5)
	assert.Error(t, err)
}

func TestSmoothingFactor(t *testing.T) {
	assert.InDelta(t, 2.0/6.0, SmoothingFactor(5), 1e-15)
	assert.InDelta(t, 2.0/21.0, SmoothingFactor(20), 1e-15)
}

func TestAllFinite(t *testing.T) {
	assert.True(t, AllFinite([]float64{1, 2, 3}))
	assert.True(t, AllFinite(nil))
	assert.False(t, AllFinite([]float64{1, math.NaN()}))
	assert.False(t, AllFinite([]float64{math.Inf(1), 2}))
	assert.False(t, AllFinite([]float64{math.Inf(-1)}))
}
