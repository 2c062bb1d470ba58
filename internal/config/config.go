package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// StatusCronParser parses schedule.status_cron. It accepts the same
// six-field (seconds first) expressions as cron.New(cron.WithSeconds()).
var StatusCronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Config holds all application configuration. It is read once at startup.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider  string  `yaml:"provider"` // binance, yahoo or mock
		BaseURL   string  `yaml:"base_url"`
		APIKey    string  `yaml:"api_key"`
		Symbol    string  `yaml:"symbol"`
		Interval  string  `yaml:"interval"`
		BarLimit  int     `yaml:"bar_limit"`
		MockPrice float64 `yaml:"mock_price"`
	} `yaml:"data_source"`
	Retry struct {
		Attempts   int      `yaml:"attempts"`
		Delay      Duration `yaml:"delay"`
		MaxDelay   Duration `yaml:"max_delay"`
		Multiplier float64  `yaml:"multiplier"`
	} `yaml:"retry"`
	Strategy struct {
		FastSpan int `yaml:"fast_span"`
		SlowSpan int `yaml:"slow_span"`
	} `yaml:"strategy"`
	Trade struct {
		TakeProfitRatio float64 `yaml:"take_profit_ratio"`
		StopLossRatio   float64 `yaml:"stop_loss_ratio"`
		Leverage        int     `yaml:"leverage"`
		NotionalScale   float64 `yaml:"notional_scale"`
		Settlement      string  `yaml:"settlement"`
	} `yaml:"trade"`
	Risk struct {
		InitialEquity        float64 `yaml:"initial_equity"`
		MaxConsecutiveLosses int     `yaml:"max_consecutive_losses"`
		MaxDrawdownRatio     float64 `yaml:"max_drawdown_ratio"`
	} `yaml:"risk"`
	Schedule struct {
		PollInterval Duration `yaml:"poll_interval"` // "30s" or bare seconds
		StatusCron   string   `yaml:"status_cron"`
	} `yaml:"schedule"`
	Notify struct {
		Timeout Duration `yaml:"timeout"`
	} `yaml:"notify"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads .env, then the YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.loadFromEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	} else if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		c.DataSource.Symbol = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		if d, err := parseDuration(v); err == nil {
			c.Schedule.PollInterval = Duration{d}
		}
	}
	if v := os.Getenv("INITIAL_EQUITY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Risk.InitialEquity = f
		}
	}
}

// parseDuration accepts Go durations ("30s") or bare seconds ("30").
func parseDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "binance"
	}
	if c.DataSource.Symbol == "" {
		c.DataSource.Symbol = "BTCUSDT"
	}
	if c.DataSource.Interval == "" {
		c.DataSource.Interval = "1m"
	}
	if c.DataSource.BarLimit == 0 {
		c.DataSource.BarLimit = 50
	}
	if c.DataSource.MockPrice == 0 {
		c.DataSource.MockPrice = 30000
	}
	if c.Retry.Attempts == 0 {
		c.Retry.Attempts = 3
	}
	if c.Retry.Delay.Duration == 0 {
		c.Retry.Delay.Duration = 5 * time.Second
	}
	if c.Retry.MaxDelay.Duration == 0 {
		c.Retry.MaxDelay.Duration = 30 * time.Second
	}
	if c.Retry.Multiplier == 0 {
		c.Retry.Multiplier = 1
	}
	if c.Strategy.FastSpan == 0 {
		c.Strategy.FastSpan = 5
	}
	if c.Strategy.SlowSpan == 0 {
		c.Strategy.SlowSpan = 20
	}
	if c.Trade.TakeProfitRatio == 0 {
		c.Trade.TakeProfitRatio = 0.01
	}
	if c.Trade.StopLossRatio == 0 {
		c.Trade.StopLossRatio = 0.005
	}
	if c.Trade.Leverage == 0 {
		c.Trade.Leverage = 10
	}
	if c.Trade.NotionalScale == 0 {
		c.Trade.NotionalScale = 100
	}
	if c.Trade.Settlement == "" {
		c.Trade.Settlement = "take_profit"
	}
	if c.Risk.InitialEquity == 0 {
		c.Risk.InitialEquity = 1000
	}
	if c.Risk.MaxConsecutiveLosses == 0 {
		c.Risk.MaxConsecutiveLosses = 3
	}
	if c.Risk.MaxDrawdownRatio == 0 {
		c.Risk.MaxDrawdownRatio = 0.1
	}
	if c.Schedule.PollInterval.Duration == 0 {
		c.Schedule.PollInterval.Duration = 30 * time.Second
	}
	if c.Notify.Timeout.Duration == 0 {
		c.Notify.Timeout.Duration = 5 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks ranges. Every failure wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	switch c.DataSource.Provider {
	case "binance", "yahoo", "mock":
	default:
		return invalid("data_source.provider %q must be binance, yahoo or mock", c.DataSource.Provider)
	}
	if c.DataSource.Symbol == "" {
		return invalid("data_source.symbol is required")
	}
	if c.DataSource.BarLimit < 2 {
		return invalid("data_source.bar_limit must be at least 2")
	}
	if c.Retry.Attempts < 1 {
		return invalid("retry.attempts must be at least 1")
	}
	if c.Retry.Delay.Duration < 0 || c.Retry.MaxDelay.Duration < 0 || c.Retry.Multiplier < 1 {
		return invalid("retry delays must be non-negative and multiplier >= 1")
	}
	if c.Strategy.FastSpan <= 0 || c.Strategy.SlowSpan <= 0 {
		return invalid("strategy spans must be positive")
	}
	if c.Strategy.FastSpan >= c.Strategy.SlowSpan {
		return invalid("strategy.fast_span (%d) must be less than slow_span (%d)", c.Strategy.FastSpan, c.Strategy.SlowSpan)
	}
	if !positiveFinite(c.Trade.TakeProfitRatio) || !positiveFinite(c.Trade.StopLossRatio) {
		return invalid("trade take_profit_ratio and stop_loss_ratio must be positive")
	}
	if c.Trade.TakeProfitRatio >= 1 {
		return invalid("trade.take_profit_ratio must be below 1")
	}
	if c.Trade.StopLossRatio >= 1 {
		return invalid("trade.stop_loss_ratio must be below 1")
	}
	if c.Trade.Leverage <= 0 {
		return invalid("trade.leverage must be positive")
	}
	if !positiveFinite(c.Trade.NotionalScale) {
		return invalid("trade.notional_scale must be positive")
	}
	switch strings.ToLower(c.Trade.Settlement) {
	case "take_profit", "stop_loss", "ratio":
	default:
		return invalid("trade.settlement %q must be take_profit, stop_loss or ratio", c.Trade.Settlement)
	}
	if c.Risk.MaxConsecutiveLosses <= 0 {
		return invalid("risk.max_consecutive_losses must be positive")
	}
	if !(c.Risk.MaxDrawdownRatio > 0 && c.Risk.MaxDrawdownRatio <= 1) {
		return invalid("risk.max_drawdown_ratio must be in (0,1]")
	}
	if !positiveFinite(c.Risk.InitialEquity) {
		return invalid("risk.initial_equity must be positive")
	}
	if c.Schedule.PollInterval.Duration <= 0 {
		return invalid("schedule.poll_interval must be positive")
	}
	if c.Notify.Timeout.Duration <= 0 {
		return invalid("notify.timeout must be positive")
	}
	if c.Schedule.StatusCron != "" {
		if _, err := StatusCronParser.Parse(c.Schedule.StatusCron); err != nil {
			return invalid("schedule.status_cron %q: %v", c.Schedule.StatusCron, err)
		}
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
