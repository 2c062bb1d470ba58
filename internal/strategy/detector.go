package strategy

import (
	"fmt"

	"github.com/rohit191819/prediction/internal/calculator"
	"github.com/rohit191819/prediction/internal/model"
)

// Default EMA spans.
const (
	DefaultFastSpan = 5
	DefaultSlowSpan = 20
)

// Detector finds fast/slow EMA crossover edges on a bar window.
// It holds no smoothing state: every call recomputes both EMAs from scratch.
type Detector struct {
	Fast int
	Slow int
}

// NewDetector creates a Detector. Spans must be positive with fast < slow.
func NewDetector(fast, slow int) (*Detector, error) {
	if fast <= 0 || slow <= 0 {
		return nil, fmt.Errorf("ema spans must be positive (fast=%d slow=%d)", fast, slow)
	}
	if fast >= slow {
		return nil, fmt.Errorf("fast span %d must be less than slow span %d", fast, slow)
	}
	return &Detector{Fast: fast, Slow: slow}, nil
}

// Evaluation is the detector's verdict together with the EMA values it compared.
type Evaluation struct {
	Signal   model.Signal
	PrevFast float64
	PrevSlow float64
	LastFast float64
	LastSlow float64
	Reason   string
}

// Detect returns BUY, SELL or NONE for the given window.
func (d *Detector) Detect(bars []model.Bar) model.Signal {
	return d.Evaluate(bars).Signal
}

// Evaluate compares the EMA ordering at the second-to-last and last bars.
// A window shorter than two bars, or one holding non-finite closes, yields NONE.
func (d *Detector) Evaluate(bars []model.Bar) Evaluation {
	if len(bars) < 2 {
		return Evaluation{Signal: model.SignalNone, Reason: "not enough bars"}
	}
	closes := model.Closes(bars)
	if !calculator.AllFinite(closes) {
		return Evaluation{Signal: model.SignalNone, Reason: "non-finite close"}
	}

	fast, err := calculator.CalculateEMA(closes, d.Fast)
	if err != nil {
		return Evaluation{Signal: model.SignalNone, Reason: err.Error()}
	}
	slow, err := calculator.CalculateEMA(closes, d.Slow)
	if err != nil {
		return Evaluation{Signal: model.SignalNone, Reason: err.Error()}
	}

	n := len(closes)
	ev := Evaluation{
		Signal:   model.SignalNone,
		PrevFast: fast[n-2],
		PrevSlow: slow[n-2],
		LastFast: fast[n-1],
		LastSlow: slow[n-1],
		Reason:   "no cross",
	}

	switch {
	case ev.PrevFast < ev.PrevSlow && ev.LastFast > ev.LastSlow:
		ev.Signal = model.SignalBuy
		ev.Reason = "fast EMA crossed above slow EMA"
	case ev.PrevFast > ev.PrevSlow && ev.LastFast < ev.LastSlow:
		ev.Signal = model.SignalSell
		ev.Reason = "fast EMA crossed below slow EMA"
	}
	return ev
}

func (d *Detector) String() string {
	return fmt.Sprintf("EMA_CROSS(%d,%d)", d.Fast, d.Slow)
}
