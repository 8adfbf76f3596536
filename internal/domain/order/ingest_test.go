package order

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
	"orderGroups": [
		{
			"groupId": "group-1",
			"myorders": [
				{
					"seller": {"login": "sklep-adam"},
					"offers": [
						{
							"id": "offer-1",
							"title": "Klocki hamulcowe przednie",
							"unitPrice": {"amount": "59.99", "currency": "PLN"},
							"friendlyUrl": "https://allegro.pl/oferta/offer-1",
							"quantity": 2,
							"imageUrl": "https://img.example/1.jpg"
						}
					],
					"orderDate": "2024-01-01T10:30:00Z",
					"totalCost": {"amount": "119.98", "currency": "PLN"},
					"payment": {"id": "pay-1", "amount": {"amount": "119.98", "currency": "PLN"}},
					"delivery": {"name": "Allegro One Box"}
				}
			]
		}
	]
}`

func TestParseOrders_FullRecord(t *testing.T) {
	// Act
	orders, err := ParseOrders(strings.NewReader(sampleResponse))

	// Assert
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, "group-1", o.ID)
	assert.Equal(t, "sklep-adam", o.Seller)
	assert.Equal(t, "pay-1", o.PaymentID)
	assert.InDelta(t, 119.98, o.PaymentAmount, 0.0001)
	assert.InDelta(t, 119.98, o.TotalCost.Amount, 0.0001)
	assert.Equal(t, "PLN", o.TotalCost.Currency)

	require.Len(t, o.Offers, 1)
	assert.Equal(t, "Klocki hamulcowe przednie", o.Offers[0].Title)
	assert.InDelta(t, 59.99, o.Offers[0].UnitPrice, 0.0001)
	assert.Equal(t, 2, o.Offers[0].Quantity)
}

func TestParseOrders_TrailingZNormalizesToUTC(t *testing.T) {
	orders, err := ParseOrders(strings.NewReader(sampleResponse))
	require.NoError(t, err)

	want := time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)
	assert.True(t, orders[0].OrderedAt.Equal(want))
	assert.Equal(t, time.UTC, orders[0].OrderedAt.Location())
}

func TestParseOrders_MissingDeliveryIsFine(t *testing.T) {
	// Delivery and other logistics sub-fields are optional.
	raw := strings.Replace(sampleResponse, `"delivery": {"name": "Allegro One Box"}`, `"delivery": null`, 1)

	orders, err := ParseOrders(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestParseOrders_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(string) string
		field  string
	}{
		{
			name:   "missing seller",
			mutate: func(s string) string { return strings.Replace(s, `"seller": {"login": "sklep-adam"},`, "", 1) },
			field:  "seller",
		},
		{
			name:   "missing payment",
			mutate: func(s string) string { return strings.Replace(s, `"payment": {"id": "pay-1", "amount": {"amount": "119.98", "currency": "PLN"}},`, "", 1) },
			field:  "payment",
		},
		{
			name:   "missing group id",
			mutate: func(s string) string { return strings.Replace(s, `"groupId": "group-1",`, "", 1) },
			field:  "groupId",
		},
		{
			name: "missing offers",
			mutate: func(s string) string {
				start := strings.Index(s, `"offers"`)
				end := strings.Index(s, `"orderDate"`)
				return s[:start] + s[end:]
			},
			field: "offers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOrders(strings.NewReader(tt.mutate(sampleResponse)))

			require.Error(t, err)
			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, tt.field, schemaErr.Field)
		})
	}
}

func TestParseOrders_NumericAmountAccepted(t *testing.T) {
	// Amounts arrive sometimes as strings, sometimes as numbers.
	raw := strings.Replace(sampleResponse, `"amount": "119.98", "currency": "PLN"}}`, `"amount": 119.98, "currency": "PLN"}}`, 1)

	orders, err := ParseOrders(strings.NewReader(raw))
	require.NoError(t, err)
	assert.InDelta(t, 119.98, orders[0].PaymentAmount, 0.0001)
}

func TestParseOrders_MalformedJSON(t *testing.T) {
	_, err := ParseOrdersBytes([]byte(`{"orderGroups": [`))

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
}
