package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/futures"

	"github.com/rohit191819/prediction/internal/model"
)

// DefaultBinanceBaseURL is the USDⓈ-M futures testnet.
const DefaultBinanceBaseURL = "https://testnet.binancefuture.com"

// BinanceFetcher implements Fetcher on the Binance USDⓈ-M futures client.
type BinanceFetcher struct {
	client *futures.Client
}

// NewBinanceFetcher creates a fetcher with optional API key and proxy support.
// Only public market endpoints are used, so no secret is needed.
func NewBinanceFetcher(baseURL, apiKey, proxyURL string) *BinanceFetcher {
	if baseURL == "" {
		baseURL = DefaultBinanceBaseURL
	}
	client := futures.NewClient(apiKey, "")
	client.BaseURL = baseURL

	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	client.HTTPClient = &http.Client{Timeout: 30 * time.Second, Transport: transport}
	return &BinanceFetcher{client: client}
}

func (f *BinanceFetcher) Name() string { return "binance" }

// FetchBars reads the latest klines, oldest first.
func (f *BinanceFetcher) FetchBars(ctx context.Context, symbol, interval string, limit int) ([]model.Bar, error) {
	klines, err := f.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance klines: %w", err)
	}
	if len(klines) == 0 {
		return nil, fmt.Errorf("binance klines: empty response for %s", symbol)
	}

	bars := make([]model.Bar, 0, len(klines))
	for i, k := range klines {
		bar := model.Bar{Time: time.UnixMilli(k.OpenTime)}
		fields := []struct {
			dst *float64
			raw string
		}{
			{&bar.Open, k.Open}, {&bar.High, k.High}, {&bar.Low, k.Low},
			{&bar.Close, k.Close}, {&bar.Volume, k.Volume},
		}
		for _, fl := range fields {
			v, err := strconv.ParseFloat(fl.raw, 64)
			if err != nil {
				return nil, fmt.Errorf("binance kline %d: parse %q: %w", i, fl.raw, err)
			}
			*fl.dst = v
		}
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// FetchSpotPrice reads the latest ticker price.
func (f *BinanceFetcher) FetchSpotPrice(ctx context.Context, symbol string) (float64, error) {
	prices, err := f.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("binance ticker: %w", err)
	}
	for _, p := range prices {
		if p.Symbol != symbol {
			continue
		}
		price, err := strconv.ParseFloat(p.Price, 64)
		if err != nil {
			return 0, fmt.Errorf("binance parse price %q: %w", p.Price, err)
		}
		return price, nil
	}
	return 0, fmt.Errorf("binance ticker: no price for %s", symbol)
}
