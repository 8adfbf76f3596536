// Package order holds the marketplace purchase records used by the
// reconciliation core: Offers, the Orders that contain them, and the
// ingestion of both from the raw Allegro order-groups payload.
package order

import (
	"fmt"
	"strings"
	"time"
)

// Cost is a monetary amount together with its currency code.
type Cost struct {
	Amount   float64
	Currency string
}

// Offer is a single line item within an Order. Immutable once parsed.
type Offer struct {
	ID            string
	Title         string
	UnitPrice     float64
	PriceCurrency string
	FriendlyURL   string
	Quantity      int
	ImageURL      string
}

// DetailLine returns the compressed, display/audit-safe representation
// of the offer: "Title (price currency)".
func (o Offer) DetailLine() string {
	return fmt.Sprintf("%s (%v %s)", CompressTitle(o.Title), o.UnitPrice, o.PriceCurrency)
}

// Order is a single purchase record from the marketplace. It is created
// once per ingested record and never mutated afterwards; a reconciliation
// pass consumes it as a value.
type Order struct {
	ID            string
	Seller        string
	Offers        []Offer
	OrderedAt     time.Time
	TotalCost     Cost
	PaymentID     string
	PaymentAmount float64
}

// DetailLines returns one compressed line per offer, newline-joined.
func (o Order) DetailLines() string {
	lines := make([]string, len(o.Offers))
	for i, offer := range o.Offers {
		lines[i] = offer.DetailLine()
	}
	return strings.Join(lines, "\n")
}
