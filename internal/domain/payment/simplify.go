package payment

import (
	"strings"
	"time"
)

// Simplified is the canonical, comparable, displayable projection of a
// payment: the calendar date of the first order, the paid amount, and a
// free-text detail block with one compressed line per offer.
type Simplified struct {
	Date    time.Time
	Amount  float64
	Details string
}

// Simplify converts payments into their canonical records, one-to-one.
// The mapping is pure: the same payment always yields the same record.
func Simplify(payments []Payment) []Simplified {
	result := make([]Simplified, 0, len(payments))
	for _, p := range payments {
		result = append(result, simplifyOne(p))
	}
	return result
}

func simplifyOne(p Payment) Simplified {
	var date time.Time
	if len(p.Orders) > 0 {
		date = dateOf(p.Orders[0].OrderedAt)
	}

	lines := make([]string, len(p.Orders))
	for i, o := range p.Orders {
		lines[i] = o.DetailLines()
	}

	return Simplified{
		Date:    date,
		Amount:  p.Amount(),
		Details: strings.Join(lines, "\n"),
	}
}

// dateOf truncates a timestamp to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
