package firefly

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fireflyiii-tools/allegro-sync/internal/domain/ledger"
)

// Pre-filter primitives for raw transaction groups. The reconciliation
// pass composes them as a pipeline before simplifying into the domain
// transaction shape:
//
//	FilterByDescription(FilterWithoutCategory(FilterSinglePart(raw)), "allegro", false)

// FilterSinglePart keeps only unsplit groups - exactly one journal entry.
func FilterSinglePart(groups []TransactionGroup) []TransactionGroup {
	var result []TransactionGroup
	for _, g := range groups {
		if len(g.Attributes.Splits) == 1 {
			result = append(result, g)
		}
	}
	return result
}

// FilterWithoutCategory keeps only groups whose entry has no category
// assigned yet.
func FilterWithoutCategory(groups []TransactionGroup) []TransactionGroup {
	var result []TransactionGroup
	for _, g := range groups {
		if len(g.Attributes.Splits) > 0 && g.Attributes.Splits[0].CategoryID == "" {
			result = append(result, g)
		}
	}
	return result
}

// FilterByDescription keeps groups whose description matches the filter
// text: exact (case-insensitive equality) or substring containment.
func FilterByDescription(groups []TransactionGroup, text string, exact bool) []TransactionGroup {
	needle := strings.ToLower(text)

	var result []TransactionGroup
	for _, g := range groups {
		if len(g.Attributes.Splits) == 0 {
			continue
		}
		description := strings.ToLower(g.Attributes.Splits[0].Description)

		if exact && description == needle {
			result = append(result, g)
		} else if !exact && strings.Contains(description, needle) {
			result = append(result, g)
		}
	}
	return result
}

// SimplifyTransactions converts filtered single-split groups into the
// domain transaction shape. A group that cannot be parsed fails the
// conversion: by the time this runs the pipeline should only contain
// well-formed single-split withdrawals.
func SimplifyTransactions(groups []TransactionGroup) ([]ledger.Transaction, error) {
	result := make([]ledger.Transaction, 0, len(groups))

	for _, g := range groups {
		if len(g.Attributes.Splits) != 1 {
			return nil, fmt.Errorf("transaction %s: expected a single split, got %d", g.ID, len(g.Attributes.Splits))
		}
		split := g.Attributes.Splits[0]

		date, err := time.Parse(time.RFC3339, split.Date)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: parse date: %w", g.ID, err)
		}
		amount, err := strconv.ParseFloat(split.Amount, 64)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: parse amount: %w", g.ID, err)
		}

		result = append(result, ledger.Transaction{
			ID:          g.ID,
			Date:        date,
			Amount:      amount,
			Description: split.Description,
			Notes:       split.Notes,
			Tags:        split.Tags,
		})
	}

	return result, nil
}
