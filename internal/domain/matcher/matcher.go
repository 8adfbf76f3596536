// Package matcher pairs ledger transactions with candidate marketplace
// payments.
//
// The match predicate is strict and unscored:
//   - amounts must agree within the tolerance (default 1 cent)
//   - the transaction date must fall inside the settlement window:
//     on or after the purchase date, and at most 6 days later
//
// Every candidate satisfying the predicate is returned, in pool order.
// There is no ranking among them; disambiguation is the caller's policy.
package matcher

import (
	"math"
	"time"

	"github.com/fireflyiii-tools/allegro-sync/internal/domain/ledger"
	"github.com/fireflyiii-tools/allegro-sync/internal/domain/payment"
)

// floatSlack absorbs binary floating-point noise in the amount
// comparison so a difference of exactly one tolerance unit matches.
const floatSlack = 1e-7

// Matcher matches ledger transactions against simplified payments.
type Matcher struct {
	config Config
}

// NewMatcher creates a matcher with the given config.
func NewMatcher(config Config) *Matcher {
	return &Matcher{config: config}
}

// Candidates returns every payment in the pool that satisfies the match
// predicate against the transaction. Pool order is preserved. The result
// may be empty, a singleton, or ambiguous; the caller decides what to do
// with anything other than exactly one.
func (m *Matcher) Candidates(tx ledger.Transaction, pool []payment.Simplified) []payment.Simplified {
	var matches []payment.Simplified
	for _, candidate := range pool {
		if m.Matches(candidate, tx) {
			matches = append(matches, candidate)
		}
	}
	return matches
}

// Matches reports whether a single candidate payment matches the
// transaction on both amount and date.
func (m *Matcher) Matches(candidate payment.Simplified, tx ledger.Transaction) bool {
	if math.Abs(candidate.Amount-tx.Amount) > m.config.AmountTolerance+floatSlack {
		return false
	}

	// Forward-only settlement window: a posting may lag the purchase by
	// up to the window, but never precede it.
	purchased := dateOf(candidate.Date)
	posted := dateOf(tx.Date)

	if posted.Before(purchased) {
		return false
	}
	latest := purchased.AddDate(0, 0, m.config.SettlementWindowDays)
	return !posted.After(latest)
}

func dateOf(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
