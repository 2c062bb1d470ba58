package main

import (
	"fmt"
	"log"

	"github.com/rohit191819/prediction/internal/collector"
	"github.com/rohit191819/prediction/internal/config"
	"github.com/rohit191819/prediction/internal/notifier"
	"github.com/rohit191819/prediction/internal/recorder"
	"github.com/rohit191819/prediction/internal/risk"
	"github.com/rohit191819/prediction/internal/scheduler"
	"github.com/rohit191819/prediction/internal/strategy"
)

// app bundles the wired components for one run.
type app struct {
	Loop     *scheduler.Loop
	Ledger   *risk.Ledger
	Recorder recorder.Recorder
}

func (a *app) Close() {
	if err := a.Recorder.Close(); err != nil {
		log.Printf("[ERROR] close recorder: %v", err)
	}
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.Proxy)
	case "mock":
		return &collector.MockFetcher{Price: cfg.DataSource.MockPrice}
	default:
		return collector.NewBinanceFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	}
}

func newRecorder(path string) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(path)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

// build wires a validated config into a ready-to-run loop.
func build(cfg *config.Config) (*app, error) {
	fetcher := newFetcher(cfg)
	log.Printf("[INFO] data source: %s", fetcher.Name())

	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol, cfg.DataSource.Interval, cfg.DataSource.BarLimit,
		collector.RetryPolicy{
			Attempts:   cfg.Retry.Attempts,
			Delay:      cfg.Retry.Delay.Duration,
			MaxDelay:   cfg.Retry.MaxDelay.Duration,
			Multiplier: cfg.Retry.Multiplier,
		})

	det, err := strategy.NewDetector(cfg.Strategy.FastSpan, cfg.Strategy.SlowSpan)
	if err != nil {
		return nil, fmt.Errorf("init detector: %w", err)
	}
	sim, err := newSimulator(cfg)
	if err != nil {
		return nil, fmt.Errorf("init simulator: %w", err)
	}

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	if !tn.Enabled() {
		log.Println("[INFO] telegram not configured, notifications disabled")
	}
	disp := notifier.NewDispatcher(tn, cfg.Notify.Timeout.Duration)

	ledger := risk.NewLedger(cfg.Risk.InitialEquity)
	rec := newRecorder(cfg.Database.SQLitePath)

	loop := scheduler.NewLoop(col, det, sim, ledger, disp, rec, scheduler.Options{
		PollInterval: cfg.Schedule.PollInterval.Duration,
		Limits: risk.Limits{
			MaxConsecutiveLosses: cfg.Risk.MaxConsecutiveLosses,
			MaxDrawdownRatio:     cfg.Risk.MaxDrawdownRatio,
		},
		StatusCron: cfg.Schedule.StatusCron,
	})
	return &app{Loop: loop, Ledger: ledger, Recorder: rec}, nil
}
