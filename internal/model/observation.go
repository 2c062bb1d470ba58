package model

import (
	"fmt"
	"strings"
	"time"
)

// CycleKind classifies the outcome of one control-loop cycle.
type CycleKind string

const (
	CycleNoData   CycleKind = "no-data"
	CycleNoSignal CycleKind = "no-signal"
	CycleSkipped  CycleKind = "skipped"
	CycleTrade    CycleKind = "trade"
	// CycleHalt is reported for cycles requested after the kill switch fired.
	CycleHalt CycleKind = "halt"
)

// Observation is the per-cycle record emitted to the log and the recorder.
type Observation struct {
	ID       string
	RunID    string
	Cycle    int
	Time     time.Time
	Kind     CycleKind
	Symbol   string
	Signal   Signal
	Entry    float64
	Exit     float64
	PnL      float64
	Equity   float64
	Peak     float64
	Drawdown float64
	Note     string
}

func (o Observation) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s | #%d | %s | %s", o.Time.Format("2006-01-02 15:04:05"), o.Cycle, o.Symbol, o.Kind))
	switch o.Kind {
	case CycleTrade, CycleHalt:
		b.WriteString(fmt.Sprintf(" | %s @ %.2f | PnL %.2f | Eq %.2f | DD %.2f%%", o.Signal, o.Entry, o.PnL, o.Equity, o.Drawdown*100))
	default:
		b.WriteString(fmt.Sprintf(" | Eq %.2f", o.Equity))
	}
	if o.Note != "" {
		b.WriteString(" | " + o.Note)
	}
	return b.String()
}
