package model

// Signal is the direction produced by the crossover detector.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalNone Signal = "NONE"
)

// Direction returns +1 for BUY, -1 for SELL and 0 otherwise.
func (s Signal) Direction() int {
	switch s {
	case SignalBuy:
		return 1
	case SignalSell:
		return -1
	default:
		return 0
	}
}

// IsTrade reports whether the signal asks for a position.
func (s Signal) IsTrade() bool { return s == SignalBuy || s == SignalSell }

// SettlementKind tells which exit level a simulated trade settled at.
type SettlementKind string

const (
	SettleTakeProfit SettlementKind = "TP"
	SettleStopLoss   SettlementKind = "SL"
)

// Position is a simulated leveraged position. It only lives for one simulation.
type Position struct {
	Side          Signal
	Entry         float64
	TakeProfit    float64
	StopLoss      float64
	Leverage      int
	NotionalScale float64
}

// Trade is the analytic outcome of a simulated position.
type Trade struct {
	Position   Position
	Settlement SettlementKind
	Exit       float64
	PnL        float64
}
