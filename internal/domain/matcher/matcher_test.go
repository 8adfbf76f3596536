package matcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fireflyiii-tools/allegro-sync/internal/domain/ledger"
	"github.com/fireflyiii-tools/allegro-sync/internal/domain/payment"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func makeCandidate(amount float64, date time.Time) payment.Simplified {
	return payment.Simplified{Date: date, Amount: amount, Details: "Klocki Hamulcowe (40 PLN)"}
}

func makeTransaction(id string, amount float64, date time.Time) ledger.Transaction {
	return ledger.Transaction{ID: id, Amount: amount, Date: date, Description: "Allegro"}
}

func TestMatcher_SettlementWindow(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	candidate := makeCandidate(100.00, day(10))

	tests := []struct {
		name    string
		txDate  time.Time
		matches bool
	}{
		{"same day", day(10), true},
		{"six days later", day(16), true},
		{"seven days later", day(17), false},
		{"one day before purchase", day(9), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := makeTransaction("tx1", 100.00, tt.txDate)
			assert.Equal(t, tt.matches, m.Matches(candidate, tx))
		})
	}
}

func TestMatcher_AmountTolerance(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	candidate := makeCandidate(100.00, day(10))

	tests := []struct {
		name    string
		amount  float64
		matches bool
	}{
		{"exact", 100.00, true},
		{"one cent over", 100.01, true},
		{"two cents over", 100.02, false},
		{"one cent under", 99.99, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := makeTransaction("tx1", tt.amount, day(12))
			assert.Equal(t, tt.matches, m.Matches(candidate, tx))
		})
	}
}

func TestMatcher_DatePrecedingNeverMatches(t *testing.T) {
	// Exact amount equality does not rescue a transaction dated before
	// the purchase.
	m := NewMatcher(DefaultConfig())
	candidate := makeCandidate(100.00, day(10))
	tx := makeTransaction("tx1", 100.00, day(9))

	assert.False(t, m.Matches(candidate, tx))
}

func TestCandidates_PreservesPoolOrder(t *testing.T) {
	// Arrange - two satisfying candidates and one that misses on amount.
	m := NewMatcher(DefaultConfig())
	pool := []payment.Simplified{
		makeCandidate(100.00, day(10)),
		makeCandidate(250.00, day(10)),
		makeCandidate(100.00, day(12)),
	}
	tx := makeTransaction("tx1", 100.00, day(13))

	// Act
	got := m.Candidates(tx, pool)

	// Assert - both matches, in pool order, no ranking between them.
	require.Len(t, got, 2)
	assert.True(t, got[0].Date.Equal(day(10)))
	assert.True(t, got[1].Date.Equal(day(12)))
}

func TestCandidates_Empty(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	tx := makeTransaction("tx1", 999.99, day(13))

	got := m.Candidates(tx, []payment.Simplified{makeCandidate(100.00, day(10))})

	assert.Empty(t, got)
}

func TestCandidates_IntradayTimestampsCompareByDate(t *testing.T) {
	// A posting earlier in the clock but on the purchase day matches:
	// the window compares calendar dates, not instants.
	m := NewMatcher(DefaultConfig())
	candidate := makeCandidate(100.00, time.Date(2024, 1, 10, 18, 30, 0, 0, time.UTC))
	tx := makeTransaction("tx1", 100.00, time.Date(2024, 1, 10, 6, 0, 0, 0, time.UTC))

	assert.True(t, m.Matches(candidate, tx))
}
