package order

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// SchemaError reports a malformed or incomplete marketplace payload.
// It is fatal for the record being ingested: the required grouping key,
// offer list, seller, or payment sub-structure was absent.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: %s: %s", e.Field, e.Reason)
}

// Raw payload shapes. Pointers distinguish absent sub-structures from
// empty ones; json.Number tolerates amounts sent as strings or numbers.
type rawOrdersResponse struct {
	OrderGroups []rawOrderGroup `json:"orderGroups"`
}

type rawOrderGroup struct {
	GroupID  string     `json:"groupId"`
	MyOrders []rawOrder `json:"myorders"`
}

type rawOrder struct {
	Seller    *rawSeller  `json:"seller"`
	Offers    []rawOffer  `json:"offers"`
	OrderDate string      `json:"orderDate"`
	TotalCost *rawCost    `json:"totalCost"`
	Payment   *rawPayment `json:"payment"`

	// Delivery and other logistics sub-fields are not part of the
	// reconciliation core; their absence never fails ingestion.
	Delivery json.RawMessage `json:"delivery"`
}

type rawSeller struct {
	Login string `json:"login"`
}

type rawCost struct {
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency"`
}

type rawOffer struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	UnitPrice   *rawCost    `json:"unitPrice"`
	FriendlyURL string      `json:"friendlyUrl"`
	Quantity    json.Number `json:"quantity"`
	ImageURL    string      `json:"imageUrl"`
}

type rawPayment struct {
	ID     string   `json:"id"`
	Amount *rawCost `json:"amount"`
}

// orderDateFormats lists the timestamp layouts the marketplace has been
// seen to use. RFC 3339 covers the trailing-"Z" form, which normalizes
// to UTC; the offset-less forms are kept as-is.
var orderDateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseOrders ingests a raw marketplace order-groups response into
// structured Orders, one per group (first nested order record).
func ParseOrders(r io.Reader) ([]Order, error) {
	var resp rawOrdersResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, &SchemaError{Field: "orderGroups", Reason: err.Error()}
	}
	return convertGroups(resp)
}

// ParseOrdersBytes ingests a raw marketplace response from a byte slice.
func ParseOrdersBytes(data []byte) ([]Order, error) {
	var resp rawOrdersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &SchemaError{Field: "orderGroups", Reason: err.Error()}
	}
	return convertGroups(resp)
}

func convertGroups(resp rawOrdersResponse) ([]Order, error) {
	orders := make([]Order, 0, len(resp.OrderGroups))
	for i, group := range resp.OrderGroups {
		o, err := convertGroup(group)
		if err != nil {
			return nil, fmt.Errorf("order group %d: %w", i, err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func convertGroup(group rawOrderGroup) (Order, error) {
	if group.GroupID == "" {
		return Order{}, &SchemaError{Field: "groupId", Reason: "missing"}
	}
	if len(group.MyOrders) == 0 {
		return Order{}, &SchemaError{Field: "myorders", Reason: "missing or empty"}
	}

	raw := group.MyOrders[0]

	if raw.Seller == nil || raw.Seller.Login == "" {
		return Order{}, &SchemaError{Field: "seller", Reason: "missing"}
	}
	if raw.Offers == nil {
		return Order{}, &SchemaError{Field: "offers", Reason: "missing"}
	}
	if raw.Payment == nil || raw.Payment.ID == "" || raw.Payment.Amount == nil {
		return Order{}, &SchemaError{Field: "payment", Reason: "missing or incomplete"}
	}
	if raw.TotalCost == nil {
		return Order{}, &SchemaError{Field: "totalCost", Reason: "missing"}
	}

	orderedAt, err := parseOrderDate(raw.OrderDate)
	if err != nil {
		return Order{}, &SchemaError{Field: "orderDate", Reason: err.Error()}
	}

	totalAmount, err := raw.TotalCost.Amount.Float64()
	if err != nil {
		return Order{}, &SchemaError{Field: "totalCost.amount", Reason: err.Error()}
	}
	paymentAmount, err := raw.Payment.Amount.Amount.Float64()
	if err != nil {
		return Order{}, &SchemaError{Field: "payment.amount", Reason: err.Error()}
	}

	offers := make([]Offer, 0, len(raw.Offers))
	for i, rawOffer := range raw.Offers {
		offer, err := convertOffer(rawOffer)
		if err != nil {
			return Order{}, fmt.Errorf("offer %d: %w", i, err)
		}
		offers = append(offers, offer)
	}

	return Order{
		ID:            group.GroupID,
		Seller:        raw.Seller.Login,
		Offers:        offers,
		OrderedAt:     orderedAt,
		TotalCost:     Cost{Amount: totalAmount, Currency: raw.TotalCost.Currency},
		PaymentID:     raw.Payment.ID,
		PaymentAmount: paymentAmount,
	}, nil
}

func convertOffer(raw rawOffer) (Offer, error) {
	if raw.UnitPrice == nil {
		return Offer{}, &SchemaError{Field: "unitPrice", Reason: "missing"}
	}
	unitPrice, err := raw.UnitPrice.Amount.Float64()
	if err != nil {
		return Offer{}, &SchemaError{Field: "unitPrice.amount", Reason: err.Error()}
	}

	quantity := 1
	if raw.Quantity != "" {
		q, err := raw.Quantity.Int64()
		if err != nil {
			return Offer{}, &SchemaError{Field: "quantity", Reason: err.Error()}
		}
		quantity = int(q)
	}

	return Offer{
		ID:            raw.ID,
		Title:         raw.Title,
		UnitPrice:     unitPrice,
		PriceCurrency: raw.UnitPrice.Currency,
		FriendlyURL:   raw.FriendlyURL,
		Quantity:      quantity,
		ImageURL:      raw.ImageURL,
	}, nil
}

func parseOrderDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("missing")
	}
	for _, format := range orderDateFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
