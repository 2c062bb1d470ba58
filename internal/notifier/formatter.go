package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/rohit191819/prediction/internal/model"
)

// FormatStartup announces that the loop is running.
func FormatStartup(symbol, strategy string, state model.AccountState) string {
	return fmt.Sprintf("🚀 <b>Bot started</b> | %s %s\nSimulated EMA crossover with risk control\nEquity: %.2f",
		symbol, strategy, state.Equity)
}

// FormatTrade formats a simulated trade outcome.
func FormatTrade(tr model.Trade, state model.AccountState) string {
	return fmt.Sprintf("%s simulated | PnL %.2f | Eq %.2f\nEntry %.2f → %s %.2f (x%d)",
		tr.Position.Side, tr.PnL, state.Equity,
		tr.Position.Entry, tr.Settlement, tr.Exit, tr.Position.Leverage)
}

// FormatHalt formats the kill-switch message.
func FormatHalt(reason string, state model.AccountState) string {
	return fmt.Sprintf("🛑 <b>Kill switch hit. Bot stopping.</b>\nReason: %s\nEquity: %.2f | Peak: %.2f | DD: %.2f%%",
		reason, state.Equity, state.PeakEquity, state.Drawdown()*100)
}

// FormatStatus formats the current account state for display.
func FormatStatus(symbol string, state model.AccountState) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📦 <b>Account status</b> | %s\n\n", symbol))
	b.WriteString(fmt.Sprintf("Equity: %.2f\n", state.Equity))
	b.WriteString(fmt.Sprintf("Peak: %.2f\n", state.PeakEquity))
	b.WriteString(fmt.Sprintf("Drawdown: %.2f%%\n", state.Drawdown()*100))
	b.WriteString(fmt.Sprintf("Trades: %d (W %d / L %d)\n", state.Trades, state.Wins, state.Losses))
	b.WriteString(fmt.Sprintf("Consecutive losses: %d\n", state.ConsecutiveLosses))
	b.WriteString(fmt.Sprintf("Updated: %s\n", state.UpdatedAt.Format(time.DateTime)))
	return b.String()
}
