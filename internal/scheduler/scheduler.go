package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rohit191819/prediction/internal/collector"
	"github.com/rohit191819/prediction/internal/id"
	"github.com/rohit191819/prediction/internal/model"
	"github.com/rohit191819/prediction/internal/notifier"
	"github.com/rohit191819/prediction/internal/recorder"
	"github.com/rohit191819/prediction/internal/risk"
	"github.com/rohit191819/prediction/internal/simulator"
	"github.com/rohit191819/prediction/internal/strategy"
)

// State is the control loop's lifecycle state.
type State int

const (
	Running State = iota
	Halted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Halted:
		return "halted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configures a Loop.
type Options struct {
	PollInterval time.Duration
	Limits       risk.Limits
	StatusCron   string
	MaxCycles    int // 0 runs until halted or cancelled
}

// Loop runs fetch → detect → simulate → risk check → notify on a fixed interval.
// Cycles never overlap. Only the ledger carries state from one cycle to the next.
type Loop struct {
	Collector *collector.Collector
	Detector  *strategy.Detector
	Simulator *simulator.Simulator
	Ledger    *risk.Ledger
	Notifier  *notifier.Dispatcher
	Recorder  recorder.Recorder
	Opts      Options

	RunID string

	mu    sync.Mutex
	state State
	cycle int
	cron  *cron.Cron
	now   func() time.Time
}

// NewLoop creates a Loop in the Running state.
func NewLoop(col *collector.Collector, det *strategy.Detector, sim *simulator.Simulator,
	ledger *risk.Ledger, dispatcher *notifier.Dispatcher, rec recorder.Recorder, opts Options) *Loop {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Loop{
		Collector: col,
		Detector:  det,
		Simulator: sim,
		Ledger:    ledger,
		Notifier:  dispatcher,
		Recorder:  rec,
		Opts:      opts,
		RunID:     id.New(),
		state:     Running,
		now:       time.Now,
	}
}

// State returns the current lifecycle state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Cycles returns how many cycles have run.
func (l *Loop) Cycles() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cycle
}

// Run executes cycles until the kill switch halts the loop, MaxCycles is
// reached, or ctx is cancelled. The first cycle runs immediately. It returns
// nil when halted or finished and ctx.Err() when cancelled.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.start(); err != nil {
		return err
	}
	defer l.stop()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[INFO] loop cancelled after %d cycles", l.Cycles())
			return ctx.Err()
		case <-timer.C:
		}

		l.RunCycle(ctx)

		if l.State() == Halted {
			return nil
		}
		if l.Opts.MaxCycles > 0 && l.Cycles() >= l.Opts.MaxCycles {
			log.Printf("[INFO] reached max cycles (%d), stopping", l.Opts.MaxCycles)
			return nil
		}
		timer.Reset(l.Opts.PollInterval)
	}
}

func (l *Loop) start() error {
	if l.State() == Halted {
		return errors.New("loop already halted")
	}

	if l.Opts.StatusCron != "" {
		c := cron.New(cron.WithSeconds())
		if _, err := c.AddFunc(l.Opts.StatusCron, l.statusTask); err != nil {
			return fmt.Errorf("register status task: %w", err)
		}
		l.cron = c
	}

	st := l.Ledger.State()
	if err := l.Recorder.RecordRun(&recorder.RunInfo{
		RunID:         l.RunID,
		Symbol:        l.Collector.Symbol,
		Strategy:      l.Detector.String(),
		Settlement:    l.policyName(),
		InitialEquity: st.Equity,
	}); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}

	if l.cron != nil {
		l.cron.Start()
		log.Printf("[INFO] status report scheduled: %s", l.Opts.StatusCron)
	}

	log.Printf("[INFO] loop %s started: %s %s every %v, equity %.2f",
		l.RunID, l.Collector.Symbol, l.Detector, l.Opts.PollInterval, st.Equity)
	l.Notifier.Notify(notifier.FormatStartup(l.Collector.Symbol, l.Detector.String(), st))
	return nil
}

func (l *Loop) stop() {
	if l.cron != nil {
		<-l.cron.Stop().Done()
	}
	// Give in-flight notifications (the halt message above all) a chance to land.
	wait := notifier.DefaultTimeout
	if l.Notifier != nil {
		wait = l.Notifier.Timeout()
	}
	l.Notifier.Wait(wait)
	log.Printf("[INFO] loop %s stopped in state %s", l.RunID, l.State())
}

func (l *Loop) statusTask() {
	l.Notifier.Notify(notifier.FormatStatus(l.Collector.Symbol, l.Ledger.State()))
}

func (l *Loop) policyName() string {
	if l.Simulator.Policy == nil {
		return simulator.TakeProfit{}.Name()
	}
	return l.Simulator.Policy.Name()
}

// RunCycle performs exactly one cycle and returns its observation.
// A halted loop does nothing and returns a halt observation.
func (l *Loop) RunCycle(ctx context.Context) model.Observation {
	l.mu.Lock()
	if l.state == Halted {
		l.mu.Unlock()
		return l.observe(model.CycleHalt, "already halted")
	}
	l.cycle++
	l.mu.Unlock()

	obs := l.cycleOnce(ctx)
	log.Printf("[INFO] %s", obs)
	if err := l.Recorder.RecordCycle(&obs); err != nil {
		log.Printf("[ERROR] record cycle: %v", err)
	}
	return obs
}

func (l *Loop) cycleOnce(ctx context.Context) model.Observation {
	bars, err := l.Collector.FetchBars(ctx)
	if err != nil {
		return l.observe(model.CycleNoData, err.Error())
	}

	ev := l.Detector.Evaluate(bars)
	if !ev.Signal.IsTrade() {
		obs := l.observe(model.CycleNoSignal, "")
		log.Printf("[DEBUG] %s: %s (fast %.4f slow %.4f)", l.Detector, ev.Reason, ev.LastFast, ev.LastSlow)
		return obs
	}

	price, err := l.Collector.FetchSpotPrice(ctx)
	if err != nil {
		obs := l.observe(model.CycleSkipped, err.Error())
		obs.Signal = ev.Signal
		return obs
	}

	trade, err := l.Simulator.Simulate(ev.Signal, price)
	if err != nil {
		obs := l.observe(model.CycleSkipped, err.Error())
		obs.Signal = ev.Signal
		return obs
	}

	state := l.Ledger.Apply(trade.PnL)
	l.Notifier.Notify(notifier.FormatTrade(trade, state))

	note := string(trade.Settlement)
	if reason := l.Ledger.HaltReason(l.Opts.Limits); reason != "" {
		l.halt(reason, state)
		note += "; kill switch: " + reason
	}

	obs := l.observeState(model.CycleTrade, note, state)
	obs.Signal = ev.Signal
	obs.Entry = price
	obs.Exit = trade.Exit
	obs.PnL = trade.PnL
	return obs
}

func (l *Loop) halt(reason string, state model.AccountState) {
	l.mu.Lock()
	l.state = Halted
	cycle := l.cycle
	l.mu.Unlock()

	log.Printf("[WARN] kill switch hit: %s. Bot stopping.", reason)
	l.Notifier.Notify(notifier.FormatHalt(reason, state))
	if err := l.Recorder.RecordHalt(&recorder.HaltEvent{
		RunID:  l.RunID,
		Cycle:  cycle,
		Reason: reason,
		State:  state,
	}); err != nil {
		log.Printf("[ERROR] record halt: %v", err)
	}
}

func (l *Loop) observe(kind model.CycleKind, note string) model.Observation {
	return l.observeState(kind, note, l.Ledger.State())
}

func (l *Loop) observeState(kind model.CycleKind, note string, st model.AccountState) model.Observation {
	now := l.now()
	return model.Observation{
		ID:       id.At(now),
		RunID:    l.RunID,
		Cycle:    l.Cycles(),
		Time:     now,
		Kind:     kind,
		Symbol:   l.Collector.Symbol,
		Signal:   model.SignalNone,
		Equity:   st.Equity,
		Peak:     st.PeakEquity,
		Drawdown: st.Drawdown(),
		Note:     note,
	}
}
