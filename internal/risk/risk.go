// Package risk holds the guard-rails every entry must clear.
package risk

// Limits bounds how much the bot may deploy.
type Limits struct {
	MinBalanceSOL       float64
	MaxConcurrentTrades int
}

// SufficientBalance reports whether the wallet holds at least the configured floor.
func (l Limits) SufficientBalance(balanceSOL float64) bool {
	return balanceSOL >= l.MinBalanceSOL
}

// AllowEntry reports whether another position fits next to open ones.
// A non-positive cap disables the check.
func (l Limits) AllowEntry(open int) bool {
	return l.MaxConcurrentTrades <= 0 || open < l.MaxConcurrentTrades
}
