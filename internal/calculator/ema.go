package calculator

import (
	"errors"
	"math"
)

// SmoothingFactor returns the EMA alpha for the given span: 2/(span+1).
func SmoothingFactor(span int) float64 {
	return 2.0 / float64(span+1)
}

// CalculateEMA computes the exponential moving average series of prices.
// The first value is seeded from the first price; every later value is
// prev*(1-alpha) + price*alpha. The result has the same length as prices.
func CalculateEMA(prices []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, errors.New("span must be positive")
	}
	if len(prices) == 0 {
		return nil, errors.New("no prices provided")
	}
	alpha := SmoothingFactor(span)
	out := make([]float64, len(prices))
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = out[i-1]*(1-alpha) + prices[i]*alpha
	}
	return out, nil
}

// AllFinite reports whether every value is neither NaN nor infinite.
func AllFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
