// Package ledger defines the external personal-finance record the
// reconciliation core matches against. The shape is deliberately minimal:
// adapters simplify their wire formats into it, and only the apply engine
// writes back through the ledger client.
package ledger

import "time"

// Transaction is a single ledger entry to be reconciled against purchases.
type Transaction struct {
	ID          string
	Date        time.Time
	Amount      float64
	Description string
	Notes       string
	Tags        []string
}

// HasTag reports whether the transaction carries the given tag.
// Tag membership is the idempotency marker across reconciliation passes:
// a tagged transaction counts as processed.
func (t Transaction) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}
