package collector

import (
	"context"

	"github.com/rohit191819/prediction/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchBars(ctx context.Context, symbol, interval string, limit int) ([]model.Bar, error)
	FetchSpotPrice(ctx context.Context, symbol string) (float64, error)
	Name() string
}
