package model

import "time"

// AccountState tracks simulated account health across cycles.
type AccountState struct {
	Equity            float64   `json:"equity"`
	PeakEquity        float64   `json:"peak_equity"`
	ConsecutiveLosses int       `json:"consecutive_losses"`
	Trades            int       `json:"trades"`
	Wins              int       `json:"wins"`
	Losses            int       `json:"losses"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Drawdown returns the fractional decline of equity from its peak.
func (a AccountState) Drawdown() float64 {
	if a.PeakEquity <= 0 {
		return 0
	}
	return (a.PeakEquity - a.Equity) / a.PeakEquity
}
