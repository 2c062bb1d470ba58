package collector

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohit191819/prediction/internal/model"
)

func fastRetry(attempts int) RetryPolicy {
	return RetryPolicy{Attempts: attempts, Delay: time.Millisecond, Multiplier: 1}
}

func TestCollector_FetchBarsSucceedsAfterRetry(t *testing.T) {
	window := []model.Bar{{Close: 1}, {Close: 2}}
	m := &MockFetcher{Windows: [][]model.Bar{window}, FailFirst: 2}
	c := NewCollector(m, "BTCUSDT", "1m", 50, fastRetry(3))

	bars, err := c.FetchBars(context.Background())
	require.NoError(t, err)
	assert.Equal(t, window, bars)
	assert.Equal(t, 3, m.BarCalls())
}

func TestCollector_FetchBarsExhaustsRetries(t *testing.T) {
	m := &MockFetcher{BarsErr: errors.New("exchange down")}
	c := NewCollector(m, "BTCUSDT", "1m", 50, fastRetry(3))

	bars, err := c.FetchBars(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.Contains(t, err.Error(), "exchange down")
	assert.NotNil(t, bars)
	assert.Empty(t, bars)
	assert.Equal(t, 3, m.BarCalls())
}

func TestCollector_FetchBarsStopsOnCancel(t *testing.T) {
	m := &MockFetcher{BarsErr: errors.New("down")}
	c := NewCollector(m, "BTCUSDT", "1m", 50, RetryPolicy{Attempts: 5, Delay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchBars(ctx)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.Equal(t, 1, m.BarCalls())
}

func TestCollector_FetchSpotPriceNoRetry(t *testing.T) {
	m := &MockFetcher{SpotErr: errors.New("ticker down")}
	c := NewCollector(m, "BTCUSDT", "1m", 50, fastRetry(3))

	_, err := c.FetchSpotPrice(context.Background())
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.Equal(t, 1, m.SpotCalls())
}

func TestCollector_FetchSpotPriceRejectsBadValues(t *testing.T) {
	for _, p := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		c := NewCollector(&MockFetcher{Price: p}, "BTCUSDT", "1m", 50, fastRetry(1))
		_, err := c.FetchSpotPrice(context.Background())
		assert.ErrorIsf(t, err, ErrDataUnavailable, "price %v", p)
	}

	c := NewCollector(&MockFetcher{Price: 101.25}, "BTCUSDT", "1m", 50, fastRetry(1))
	price, err := c.FetchSpotPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 101.25, price)
}

func TestRetryPolicy_Backoff(t *testing.T) {
	fixed := RetryPolicy{Attempts: 3, Delay: 5 * time.Second, Multiplier: 1}
	assert.Equal(t, 5*time.Second, fixed.backoff(1))
	assert.Equal(t, 5*time.Second, fixed.backoff(3))

	exp := RetryPolicy{Attempts: 5, Delay: time.Second, MaxDelay: 5 * time.Second, Multiplier: 2}
	assert.Equal(t, time.Second, exp.backoff(1))
	assert.Equal(t, 2*time.Second, exp.backoff(2))
	assert.Equal(t, 4*time.Second, exp.backoff(3))
	assert.Equal(t, 5*time.Second, exp.backoff(4))

	steep := RetryPolicy{Attempts: 10, Delay: 5 * time.Second, MaxDelay: 30 * time.Second, Multiplier: 1000}
	for attempt := 2; attempt <= 10; attempt++ {
		assert.Equal(t, 30*time.Second, steep.backoff(attempt), "attempt %d", attempt)
	}

	uncapped := RetryPolicy{Attempts: 10, Delay: 5 * time.Second, Multiplier: 1000}
	for attempt := 5; attempt <= 10; attempt++ {
		assert.Positive(t, uncapped.backoff(attempt), "attempt %d", attempt)
	}
}

func TestMockFetcher_GeneratesRequestedWindow(t *testing.T) {
	m := &MockFetcher{Price: 100}
	bars, err := m.FetchBars(context.Background(), "X", "1m", 50)
	require.NoError(t, err)
	require.Len(t, bars, 50)
	for i := 1; i < len(bars); i++ {
		assert.True(t, bars[i-1].Time.Before(bars[i].Time))
	}
}
