package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID", "DATA_PROVIDER",
		"BINANCE_BASE_URL", "BINANCE_API_KEY", "SYMBOL", "HTTPS_PROXY", "SQLITE_PATH",
		"LOG_LEVEL", "POLL_INTERVAL", "INITIAL_EQUITY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "binance", cfg.DataSource.Provider)
	assert.Equal(t, "BTCUSDT", cfg.DataSource.Symbol)
	assert.Equal(t, "1m", cfg.DataSource.Interval)
	assert.Equal(t, 50, cfg.DataSource.BarLimit)
	assert.Equal(t, 5, cfg.Strategy.FastSpan)
	assert.Equal(t, 20, cfg.Strategy.SlowSpan)
	assert.Equal(t, 0.01, cfg.Trade.TakeProfitRatio)
	assert.Equal(t, 0.005, cfg.Trade.StopLossRatio)
	assert.Equal(t, 10, cfg.Trade.Leverage)
	assert.Equal(t, 100.0, cfg.Trade.NotionalScale)
	assert.Equal(t, "take_profit", cfg.Trade.Settlement)
	assert.Equal(t, 1000.0, cfg.Risk.InitialEquity)
	assert.Equal(t, 3, cfg.Risk.MaxConsecutiveLosses)
	assert.Equal(t, 0.1, cfg.Risk.MaxDrawdownRatio)
	assert.Equal(t, 30*time.Second, cfg.Schedule.PollInterval.Duration)
	assert.Equal(t, 3, cfg.Retry.Attempts)
	assert.Equal(t, 5*time.Second, cfg.Retry.Delay.Duration)
	assert.Equal(t, 5*time.Second, cfg.Notify.Timeout.Duration)
	assert.Empty(t, cfg.Telegram.BotToken, "no channel is a valid configuration")
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram:
  bot_token: file-token
  chat_id: "123"
data_source:
  provider: mock
  symbol: ETHUSDT
strategy:
  fast_span: 8
  slow_span: 21
trade:
  leverage: 5
  settlement: stop_loss
schedule:
  poll_interval: 45s
  status_cron: "0 0 * * * *"
retry:
  delay: 250ms
`), 0o644))

	t.Setenv("TELEGRAM_TOKEN", "env-token")
	t.Setenv("POLL_INTERVAL", "10")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "123", cfg.Telegram.ChatID)
	assert.Equal(t, "mock", cfg.DataSource.Provider)
	assert.Equal(t, "ETHUSDT", cfg.DataSource.Symbol)
	assert.Equal(t, 8, cfg.Strategy.FastSpan)
	assert.Equal(t, 21, cfg.Strategy.SlowSpan)
	assert.Equal(t, 5, cfg.Trade.Leverage)
	assert.Equal(t, "stop_loss", cfg.Trade.Settlement)
	assert.Equal(t, 10*time.Second, cfg.Schedule.PollInterval.Duration)
	assert.Equal(t, "0 0 * * * *", cfg.Schedule.StatusCron)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.Delay.Duration)
}

func TestLoad_BareSecondsInYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
schedule:
  poll_interval: 30
retry:
  delay: 5
  max_delay: 1m
notify:
  timeout: "2"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Second, cfg.Schedule.PollInterval.Duration)
	assert.Equal(t, 5*time.Second, cfg.Retry.Delay.Duration)
	assert.Equal(t, time.Minute, cfg.Retry.MaxDelay.Duration)
	assert.Equal(t, 2*time.Second, cfg.Notify.Timeout.Duration)
}

func TestLoad_BadDuration(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schedule:\n  poll_interval: soon\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid duration "soon"`)
}

func TestValidate_StatusCronDescriptor(t *testing.T) {
	cfg := validConfig(t)
	cfg.Schedule.StatusCron = "@hourly"
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strategy: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	return cfg
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"fast not below slow", func(c *Config) { c.Strategy.FastSpan = 20 }},
		{"negative span", func(c *Config) { c.Strategy.FastSpan = -1 }},
		{"negative tp", func(c *Config) { c.Trade.TakeProfitRatio = -0.01 }},
		{"negative sl", func(c *Config) { c.Trade.StopLossRatio = -0.01 }},
		{"tp of one", func(c *Config) { c.Trade.TakeProfitRatio = 1 }},
		{"tp above one", func(c *Config) { c.Trade.TakeProfitRatio = 1.5 }},
		{"bad status cron", func(c *Config) { c.Schedule.StatusCron = "not a cron" }},
		{"five field status cron", func(c *Config) { c.Schedule.StatusCron = "0 * * * *" }},
		{"zero leverage", func(c *Config) { c.Trade.Leverage = -2 }},
		{"drawdown above one", func(c *Config) { c.Risk.MaxDrawdownRatio = 1.5 }},
		{"negative drawdown", func(c *Config) { c.Risk.MaxDrawdownRatio = -0.1 }},
		{"negative max losses", func(c *Config) { c.Risk.MaxConsecutiveLosses = -1 }},
		{"negative equity", func(c *Config) { c.Risk.InitialEquity = -5 }},
		{"negative poll", func(c *Config) { c.Schedule.PollInterval.Duration = -time.Second }},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "ftx" }},
		{"unknown settlement", func(c *Config) { c.Trade.Settlement = "monte_carlo" }},
		{"tiny window", func(c *Config) { c.DataSource.BarLimit = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestValidate_DrawdownOfOneIsAllowed(t *testing.T) {
	cfg := validConfig(t)
	cfg.Risk.MaxDrawdownRatio = 1
	assert.NoError(t, cfg.Validate())
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("30")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	d, err = parseDuration("1m30s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	_, err = parseDuration("soon")
	assert.Error(t, err)
}
