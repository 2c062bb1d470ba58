package simulator

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/rohit191819/prediction/internal/model"
)

// DefaultNotionalScale converts a leveraged price delta into account currency.
const DefaultNotionalScale = 100

// ErrInvalidTrade is returned when a trade cannot be simulated.
var ErrInvalidTrade = errors.New("invalid trade")

// Simulator computes a deterministic PnL for a fixed-leverage position.
// It is not a fill model: the exit level comes from Policy, not from prices.
type Simulator struct {
	TakeProfitRatio float64
	StopLossRatio   float64
	Leverage        int
	NotionalScale   float64
	Policy          SettlementPolicy
}

// New creates a Simulator settling at take-profit.
func New(tpRatio, slRatio float64, leverage int, notionalScale float64) *Simulator {
	if notionalScale == 0 {
		notionalScale = DefaultNotionalScale
	}
	return &Simulator{
		TakeProfitRatio: tpRatio,
		StopLossRatio:   slRatio,
		Leverage:        leverage,
		NotionalScale:   notionalScale,
		Policy:          TakeProfit{},
	}
}

// WithPolicy returns a copy of s using the given settlement policy.
func (s *Simulator) WithPolicy(p SettlementPolicy) *Simulator {
	cp := *s
	cp.Policy = p
	return &cp
}

func (s *Simulator) levels(side model.Signal, entry decimal.Decimal) (tp, sl decimal.Decimal, err error) {
	one := decimal.NewFromInt(1)
	tpR := decimal.NewFromFloat(s.TakeProfitRatio)
	slR := decimal.NewFromFloat(s.StopLossRatio)
	switch side {
	case model.SignalBuy:
		return entry.Mul(one.Add(tpR)), entry.Mul(one.Sub(slR)), nil
	case model.SignalSell:
		return entry.Mul(one.Sub(tpR)), entry.Mul(one.Add(slR)), nil
	default:
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: side %q", ErrInvalidTrade, side)
	}
}

// Simulate settles a position opened at entry and returns the trade outcome.
// pnl = (exit - entry) * leverage * direction * notionalScale.
func (s *Simulator) Simulate(side model.Signal, entry float64) (model.Trade, error) {
	if math.IsNaN(entry) || math.IsInf(entry, 0) || entry <= 0 {
		return model.Trade{}, fmt.Errorf("%w: entry price %v", ErrInvalidTrade, entry)
	}
	entryD := decimal.NewFromFloat(entry)
	tp, sl, err := s.levels(side, entryD)
	if err != nil {
		return model.Trade{}, err
	}

	policy := s.Policy
	if policy == nil {
		policy = TakeProfit{}
	}
	exit, kind := policy.Settle(tp, sl)

	pnl := exit.Sub(entryD).
		Mul(decimal.NewFromInt(int64(s.Leverage))).
		Mul(decimal.NewFromInt(int64(side.Direction()))).
		Mul(decimal.NewFromFloat(s.NotionalScale))

	return model.Trade{
		Position: model.Position{
			Side:          side,
			Entry:         entry,
			TakeProfit:    tp.InexactFloat64(),
			StopLoss:      sl.InexactFloat64(),
			Leverage:      s.Leverage,
			NotionalScale: s.NotionalScale,
		},
		Settlement: kind,
		Exit:       exit.InexactFloat64(),
		PnL:        pnl.InexactFloat64(),
	}, nil
}
