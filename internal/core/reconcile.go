package core

import "github.com/shopspring/decimal"

// Status labels derived from a case's pending balance.
const (
	StatusPending = "Pending"
	StatusPaid    = "Paid"
)

type (
	// CaseSummary is one row of the per-case reconciliation report.
	CaseSummary struct {
		ID             int64
		Client         string
		Description    string
		AgreedValue    decimal.Decimal
		TotalPaid      decimal.Decimal
		PendingBalance decimal.Decimal
		Stage          string
		Notes          string
	}

	// Totals are the column sums over a summary's rows.
	Totals struct {
		AgreedValue    decimal.Decimal
		TotalPaid      decimal.Decimal
		PendingBalance decimal.Decimal
	}

	// Summary is the full reconciliation report for one snapshot of the store.
	Summary struct {
		Rows   []CaseSummary
		Totals Totals
	}
)

// Status returns "Pending" when the case still has a balance to collect,
// "Paid" at exactly zero or when overpaid.
func (r CaseSummary) Status() string {
	if r.PendingBalance.IsPositive() {
		return StatusPending
	}
	return StatusPaid
}

// Reconcile computes the per-case summary from a snapshot of cases and the
// paid totals grouped by case id. A case with no payments totals zero. The
// computation is pure: row order follows the input case order and the result
// is fully determined by the arguments.
func Reconcile(cases []Case, paid map[int64]decimal.Decimal) Summary {
	s := Summary{Rows: make([]CaseSummary, 0, len(cases))}
	for _, c := range cases {
		total := paid[c.ID] // missing key yields decimal zero
		row := CaseSummary{
			ID:             c.ID,
			Client:         c.Client,
			Description:    c.Description,
			AgreedValue:    c.AgreedValue,
			TotalPaid:      total,
			PendingBalance: c.AgreedValue.Sub(total),
			Stage:          c.Stage,
			Notes:          c.Notes,
		}
		s.Rows = append(s.Rows, row)
		s.Totals.AgreedValue = s.Totals.AgreedValue.Add(row.AgreedValue)
		s.Totals.TotalPaid = s.Totals.TotalPaid.Add(row.TotalPaid)
		s.Totals.PendingBalance = s.Totals.PendingBalance.Add(row.PendingBalance)
	}
	return s
}
