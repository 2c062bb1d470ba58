package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohit191819/prediction/internal/model"
)

func barsFrom(closes ...float64) []model.Bar {
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{Close: c}
	}
	return bars
}

// trend returns n closes starting at start and moving by step each bar.
func trend(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func newDefaultDetector(t *testing.T) *Detector {
	t.Helper()
	d, err := NewDetector(DefaultFastSpan, DefaultSlowSpan)
	require.NoError(t, err)
	return d
}

func TestDetect_FewerThanTwoBars(t *testing.T) {
	d := newDefaultDetector(t)
	assert.Equal(t, model.SignalNone, d.Detect(nil))
	assert.Equal(t, model.SignalNone, d.Detect([]model.Bar{}))
	assert.Equal(t, model.SignalNone, d.Detect(barsFrom(100)))
}

func TestDetect_BullishCrossover(t *testing.T) {
	d := newDefaultDetector(t)
	closes := append(trend(100, -1, 49), 200)

	ev := d.Evaluate(barsFrom(closes...))
	require.Equal(t, model.SignalBuy, ev.Signal, ev.Reason)
	assert.Less(t, ev.PrevFast, ev.PrevSlow)
	assert.Greater(t, ev.LastFast, ev.LastSlow)
}

func TestDetect_BearishCrossover(t *testing.T) {
	d := newDefaultDetector(t)
	closes := append(trend(100, 1, 49), 1)

	ev := d.Evaluate(barsFrom(closes...))
	require.Equal(t, model.SignalSell, ev.Signal, ev.Reason)
	assert.Greater(t, ev.PrevFast, ev.PrevSlow)
	assert.Less(t, ev.LastFast, ev.LastSlow)
}

func TestDetect_MonotoneWindowsDoNotCross(t *testing.T) {
	d := newDefaultDetector(t)
	assert.Equal(t, model.SignalNone, d.Detect(barsFrom(trend(100, 1, 50)...)))
	assert.Equal(t, model.SignalNone, d.Detect(barsFrom(trend(200, -1, 50)...)))
}

func TestDetect_FlatWindowIsNone(t *testing.T) {
	d := newDefaultDetector(t)
	assert.Equal(t, model.SignalNone, d.Detect(barsFrom(trend(100, 0, 50)...)))
}

func TestDetect_TwoBarsStartFromEqualEMAs(t *testing.T) {
	// Both EMAs are seeded from the first price, so n-2 is never strictly ordered.
	d := newDefaultDetector(t)
	assert.Equal(t, model.SignalNone, d.Detect(barsFrom(100, 200)))
	assert.Equal(t, model.SignalNone, d.Detect(barsFrom(200, 100)))
}

func TestDetect_NonFiniteIsNone(t *testing.T) {
	d := newDefaultDetector(t)
	closes := append(trend(100, -1, 49), 200)
	closes[10] = math.NaN()
	assert.Equal(t, model.SignalNone, d.Detect(barsFrom(closes...)))

	closes[10] = math.Inf(1)
	assert.Equal(t, model.SignalNone, d.Detect(barsFrom(closes...)))
}

func TestDetect_IsStateless(t *testing.T) {
	d := newDefaultDetector(t)
	buy := barsFrom(append(trend(100, -1, 49), 200)...)
	flat := barsFrom(trend(100, 0, 50)...)

	assert.Equal(t, model.SignalBuy, d.Detect(buy))
	assert.Equal(t, model.SignalNone, d.Detect(flat))
	assert.Equal(t, model.SignalBuy, d.Detect(buy))
}

func TestNewDetector_Validation(t *testing.T) {
	_, err := NewDetector(0, 20)
	assert.Error(t, err)
	_, err = NewDetector(5, -1)
	assert.Error(t, err)
	_, err = NewDetector(20, 20)
	assert.Error(t, err)
	_, err = NewDetector(30, 20)
	assert.Error(t, err)

	d, err := NewDetector(5, 20)
	require.NoError(t, err)
	assert.Equal(t, "EMA_CROSS(5,20)", d.String())
}
