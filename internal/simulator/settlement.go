package simulator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rohit191819/prediction/internal/model"
)

// SettlementPolicy picks the exit level a simulated position settles at.
type SettlementPolicy interface {
	Settle(tp, sl decimal.Decimal) (decimal.Decimal, model.SettlementKind)
	Name() string
}

// TakeProfit always settles at the take-profit level. It is the default.
type TakeProfit struct{}

func (TakeProfit) Name() string { return "take_profit" }

func (TakeProfit) Settle(tp, _ decimal.Decimal) (decimal.Decimal, model.SettlementKind) {
	return tp, model.SettleTakeProfit
}

// StopLoss always settles at the stop-loss level.
type StopLoss struct{}

func (StopLoss) Name() string { return "stop_loss" }

func (StopLoss) Settle(_, sl decimal.Decimal) (decimal.Decimal, model.SettlementKind) {
	return sl, model.SettleStopLoss
}

// Ratio settles at take-profit when the take-profit distance is wider than
// the stop-loss distance, and at stop-loss otherwise.
type Ratio struct {
	TakeProfitRatio float64
	StopLossRatio   float64
}

func (Ratio) Name() string { return "ratio" }

func (r Ratio) Settle(tp, sl decimal.Decimal) (decimal.Decimal, model.SettlementKind) {
	tpAbs := decimal.NewFromFloat(r.TakeProfitRatio).Abs()
	slAbs := decimal.NewFromFloat(r.StopLossRatio).Abs()
	if tpAbs.GreaterThan(slAbs) {
		return tp, model.SettleTakeProfit
	}
	return sl, model.SettleStopLoss
}

// PolicyByName resolves a configured policy name. Empty selects TakeProfit.
func PolicyByName(name string, tpRatio, slRatio float64) (SettlementPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "take_profit", "tp":
		return TakeProfit{}, nil
	case "stop_loss", "sl":
		return StopLoss{}, nil
	case "ratio":
		return Ratio{TakeProfitRatio: tpRatio, StopLossRatio: slRatio}, nil
	default:
		return nil, fmt.Errorf("unknown settlement policy %q", name)
	}
}
