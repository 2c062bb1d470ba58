package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/rohit191819/prediction/internal/model"
)

// ErrDataUnavailable marks a market-data read that failed after all retries.
var ErrDataUnavailable = errors.New("market data unavailable")

// RetryPolicy bounds how bar fetches are retried.
type RetryPolicy struct {
	Attempts   int
	Delay      time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

// DefaultRetryPolicy retries three times with a fixed five second delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Delay: 5 * time.Second, MaxDelay: 30 * time.Second, Multiplier: 1}
}

// backoff returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) backoff(attempt int) time.Duration {
	if p.Multiplier <= 1 {
		return p.clamp(float64(p.Delay))
	}
	return p.clamp(float64(p.Delay) * math.Pow(p.Multiplier, float64(attempt-1)))
}

// clamp converts a delay computed in float64 nanoseconds, capping it at
// MaxDelay and at the largest representable duration.
func (p RetryPolicy) clamp(ns float64) time.Duration {
	limit := float64(math.MaxInt64)
	if p.MaxDelay > 0 {
		limit = float64(p.MaxDelay)
	}
	if math.IsNaN(ns) || ns >= limit {
		if p.MaxDelay > 0 {
			return p.MaxDelay
		}
		return time.Duration(math.MaxInt64)
	}
	if ns < 0 {
		return 0
	}
	return time.Duration(ns)
}

// Collector wraps a Fetcher with the retry contract used by the control loop.
type Collector struct {
	Fetcher  Fetcher
	Symbol   string
	Interval string
	Limit    int
	Retry    RetryPolicy
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol, interval string, limit int, retry RetryPolicy) *Collector {
	if retry.Attempts <= 0 {
		retry.Attempts = 1
	}
	return &Collector{
		Fetcher:  fetcher,
		Symbol:   symbol,
		Interval: interval,
		Limit:    limit,
		Retry:    retry,
	}
}

// FetchBars reads the latest bar window, retrying per the policy.
// After the last failed attempt it returns an empty series and an error
// wrapping ErrDataUnavailable.
func (c *Collector) FetchBars(ctx context.Context) ([]model.Bar, error) {
	var lastErr error
	for attempt := 1; attempt <= c.Retry.Attempts; attempt++ {
		bars, err := c.Fetcher.FetchBars(ctx, c.Symbol, c.Interval, c.Limit)
		if err == nil {
			return bars, nil
		}
		lastErr = err
		log.Printf("[WARN] fetch bars failed (attempt %d/%d): %v", attempt, c.Retry.Attempts, err)

		if attempt == c.Retry.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return []model.Bar{}, fmt.Errorf("%w: %v", ErrDataUnavailable, ctx.Err())
		case <-time.After(c.Retry.backoff(attempt)):
		}
	}
	log.Printf("[ERROR] could not fetch bars after %d attempts", c.Retry.Attempts)
	return []model.Bar{}, fmt.Errorf("%w: %v", ErrDataUnavailable, lastErr)
}

// FetchSpotPrice reads the current price once. Failures are not retried.
func (c *Collector) FetchSpotPrice(ctx context.Context) (float64, error) {
	price, err := c.Fetcher.FetchSpotPrice(ctx, c.Symbol)
	if err != nil {
		return 0, fmt.Errorf("%w: spot price: %v", ErrDataUnavailable, err)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, fmt.Errorf("%w: bad spot price %v", ErrDataUnavailable, price)
	}
	return price, nil
}
