package risk

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rohit191819/prediction/internal/model"
)

// Limits are the kill-switch thresholds.
type Limits struct {
	MaxConsecutiveLosses int
	MaxDrawdownRatio     float64
}

// Ledger owns the simulated account state. All mutation goes through Apply.
type Ledger struct {
	mu    sync.Mutex
	state model.AccountState
	now   func() time.Time
}

// NewLedger creates a Ledger starting at initialEquity.
func NewLedger(initialEquity float64) *Ledger {
	return &Ledger{
		state: model.AccountState{
			Equity:     initialEquity,
			PeakEquity: initialEquity,
			UpdatedAt:  time.Now(),
		},
		now: time.Now,
	}
}

// State returns a copy of the current account state.
func (l *Ledger) State() model.AccountState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Apply books one trade result and returns the updated state.
func (l *Ledger) Apply(pnl float64) model.AccountState {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.Equity += pnl
	if l.state.Equity > l.state.PeakEquity {
		l.state.PeakEquity = l.state.Equity
	}

	l.state.Trades++
	if pnl < 0 {
		l.state.ConsecutiveLosses++
		l.state.Losses++
	} else {
		l.state.ConsecutiveLosses = 0
		l.state.Wins++
	}
	l.state.UpdatedAt = l.now()

	log.Printf("[DEBUG] ledger apply pnl=%.2f equity=%.2f peak=%.2f losses=%d",
		pnl, l.state.Equity, l.state.PeakEquity, l.state.ConsecutiveLosses)
	return l.state
}

// Drawdown returns the current fractional decline from peak equity.
func (l *Ledger) Drawdown() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Drawdown()
}

// ShouldHalt reports whether either kill-switch threshold is reached.
// Both comparisons are inclusive.
func (l *Ledger) ShouldHalt(limits Limits) bool {
	return l.HaltReason(limits) != ""
}

// HaltReason describes the tripped threshold, or returns "" when trading may continue.
func (l *Ledger) HaltReason(limits Limits) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limits.MaxConsecutiveLosses > 0 && l.state.ConsecutiveLosses >= limits.MaxConsecutiveLosses {
		return fmt.Sprintf("%d consecutive losses (limit %d)", l.state.ConsecutiveLosses, limits.MaxConsecutiveLosses)
	}
	if dd := l.state.Drawdown(); limits.MaxDrawdownRatio > 0 && dd >= limits.MaxDrawdownRatio {
		return fmt.Sprintf("drawdown %.2f%% (limit %.2f%%)", dd*100, limits.MaxDrawdownRatio*100)
	}
	return ""
}
