package domain

// TrialBalanceRow aggregates ledger activity for one currency. A balanced
// ledger has TotalDebits == TotalCredits in every row, and the net of all
// stored account balances explained entirely by posted lines.
type TrialBalanceRow struct {
	Currency     string
	TotalDebits  int64
	TotalCredits int64
	NetBalance   int64
	LineCount    int64
}

// Balanced reports whether this currency's debits and credits cancel out.
func (r TrialBalanceRow) Balanced() bool {
	return r.TotalDebits == r.TotalCredits
}
