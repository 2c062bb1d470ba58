package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rohit191819/prediction/internal/config"
	"github.com/rohit191819/prediction/internal/logx"
	"github.com/rohit191819/prediction/internal/model"
	"github.com/rohit191819/prediction/internal/simulator"
)

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:   "bot",
		Short: "Simulated EMA crossover bot with a risk kill switch",
		Long: `bot watches a price series, detects fast/slow EMA crossovers, settles
each signal analytically under a leveraged position model and stops trading
once consecutive losses or drawdown reach their limits.

No orders are ever placed.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultConfigPath(), "path to YAML config")

	root.AddCommand(newRunCmd(&cfgPath), newValidateCmd(&cfgPath), newSimulateCmd(&cfgPath))
	return root
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newRunCmd(cfgPath *string) *cobra.Command {
	var maxCycles int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the decision loop until the kill switch halts it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			logx.Setup(cfg.Log.Level)
			log.Println("[INFO] bot starting...")

			app, err := build(cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			if maxCycles > 0 {
				app.Loop.Opts.MaxCycles = maxCycles
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = app.Loop.Run(ctx)
			if ctx.Err() != nil {
				log.Println("[INFO] shutdown signal received, stopped")
				return nil
			}
			if err != nil {
				return err
			}
			st := app.Ledger.State()
			log.Printf("[INFO] bot exited (%s) after %d cycles, equity %.2f peak %.2f",
				app.Loop.State(), app.Loop.Cycles(), st.Equity, st.PeakEquity)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxCycles, "max-cycles", 0, "stop after N cycles (0 = unlimited)")
	return cmd
}

func newValidateCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			channel := "disabled"
			if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
				channel = "telegram"
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"config ok: %s via %s, EMA(%d,%d), tp %.4f sl %.4f x%d, settle %s, halt at %d losses or %.1f%% drawdown, notify %s\n",
				cfg.DataSource.Symbol, cfg.DataSource.Provider, cfg.Strategy.FastSpan, cfg.Strategy.SlowSpan,
				cfg.Trade.TakeProfitRatio, cfg.Trade.StopLossRatio, cfg.Trade.Leverage, cfg.Trade.Settlement,
				cfg.Risk.MaxConsecutiveLosses, cfg.Risk.MaxDrawdownRatio*100, channel)
			return nil
		},
	}
}

func newSimulateCmd(cfgPath *string) *cobra.Command {
	var side string
	var price float64

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Settle a single hypothetical trade with the configured parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			sim, err := newSimulator(cfg)
			if err != nil {
				return err
			}
			tr, err := sim.Simulate(model.Signal(strings.ToUpper(side)), price)
			if err != nil {
				return err
			}
			p := tr.Position
			fmt.Fprintf(cmd.OutOrStdout(),
				"%s @ %.4f  tp %.4f  sl %.4f  x%d  scale %.0f  -> %s %.4f  pnl %.2f\n",
				p.Side, p.Entry, p.TakeProfit, p.StopLoss, p.Leverage, p.NotionalScale, tr.Settlement, tr.Exit, tr.PnL)
			return nil
		},
	}
	cmd.Flags().StringVar(&side, "side", "BUY", "BUY or SELL")
	cmd.Flags().Float64Var(&price, "price", 0, "entry price")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newSimulator(cfg *config.Config) (*simulator.Simulator, error) {
	policy, err := simulator.PolicyByName(cfg.Trade.Settlement, cfg.Trade.TakeProfitRatio, cfg.Trade.StopLossRatio)
	if err != nil {
		return nil, err
	}
	sim := simulator.New(cfg.Trade.TakeProfitRatio, cfg.Trade.StopLossRatio, cfg.Trade.Leverage, cfg.Trade.NotionalScale)
	return sim.WithPolicy(policy), nil
}
