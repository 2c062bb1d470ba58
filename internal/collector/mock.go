package collector

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/rohit191819/prediction/internal/model"
)

// MockFetcher returns controllable data for dry runs and tests.
// When Windows is set, each FetchBars call returns the next window (the last
// one repeats). Otherwise bars are generated around Price.
type MockFetcher struct {
	Price     float64
	Windows   [][]model.Bar
	BarsErr   error
	SpotErr   error
	FailFirst int

	mu        sync.Mutex
	barCalls  int
	spotCalls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, _ string, _ string, limit int) ([]model.Bar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.barCalls++
	if m.barCalls <= m.FailFirst {
		return nil, errors.New("mock: transient failure")
	}
	if m.BarsErr != nil {
		return nil, m.BarsErr
	}
	if len(m.Windows) > 0 {
		i := m.barCalls - m.FailFirst - 1
		if i >= len(m.Windows) {
			i = len(m.Windows) - 1
		}
		return m.Windows[i], nil
	}
	return generateMockBars(m.Price, limit, m.barCalls), nil
}

func (m *MockFetcher) FetchSpotPrice(_ context.Context, _ string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spotCalls++
	if m.SpotErr != nil {
		return 0, m.SpotErr
	}
	return m.Price, nil
}

// BarCalls returns how many times FetchBars was invoked.
func (m *MockFetcher) BarCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.barCalls
}

// SpotCalls returns how many times FetchSpotPrice was invoked.
func (m *MockFetcher) SpotCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.spotCalls
}

// generateMockBars produces a sine-shaped series so crossovers occur now and then.
func generateMockBars(basePrice float64, count, phase int) []model.Bar {
	if basePrice <= 0 {
		basePrice = 100
	}
	bars := make([]model.Bar, count)
	now := time.Now()
	for i := 0; i < count; i++ {
		p := basePrice * (1 + 0.01*math.Sin(float64(i+phase)/6))
		bars[i] = model.Bar{
			Time:   now.Add(-time.Duration(count-i) * time.Minute),
			Open:   p * 0.999,
			High:   p * 1.002,
			Low:    p * 0.998,
			Close:  p,
			Volume: 1000,
		}
	}
	return bars
}
