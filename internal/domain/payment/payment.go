// Package payment groups marketplace orders into the payments that
// settled them and canonicalizes those payments into the minimal records
// the matcher compares against ledger transactions.
package payment

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/fireflyiii-tools/allegro-sync/internal/domain/order"
)

// DefaultTolerance is the amount discrepancy treated as equal, in
// currency units. The same epsilon is used for balance checks here and
// for amount matching in the matcher.
const DefaultTolerance = 0.01

// Payment is the transient aggregate of all orders settled together
// under one payment identifier. It is recomputed each reconciliation
// pass and owns its orders only for that pass.
type Payment struct {
	ID        string
	Orders    []order.Order
	Tolerance float64
}

// Aggregate groups orders by payment identifier. First-seen order is
// preserved both across payments and within each payment's order list.
func Aggregate(orders []order.Order, tolerance float64) []Payment {
	index := make(map[string]int)
	var payments []Payment

	for _, o := range orders {
		if i, ok := index[o.PaymentID]; ok {
			payments[i].Orders = append(payments[i].Orders, o)
			continue
		}
		index[o.PaymentID] = len(payments)
		payments = append(payments, Payment{
			ID:        o.PaymentID,
			Orders:    []order.Order{o},
			Tolerance: tolerance,
		})
	}

	return payments
}

// SumTotalCost returns the sum of the constituent orders' total costs.
func (p Payment) SumTotalCost() float64 {
	var sum float64
	for _, o := range p.Orders {
		sum += o.TotalCost.Amount
	}
	return sum
}

// Amount returns the payment amount recorded on the first order. Every
// order in a payment carries the same payment amount; that is the
// grouping invariant, not something re-validated here.
func (p Payment) Amount() float64 {
	if len(p.Orders) == 0 {
		return 0
	}
	return p.Orders[0].PaymentAmount
}

// floatSlack absorbs binary floating-point noise so a discrepancy of
// exactly one tolerance unit lands inside the closed interval.
const floatSlack = 1e-7

// IsBalanced reports whether the payment amount agrees with the summed
// order costs within tolerance. The interval is closed: a discrepancy
// exactly at the tolerance still counts as balanced. Unbalanced payments
// are informational only and never block reconciliation.
func (p Payment) IsBalanced() bool {
	return math.Abs(p.Amount()-p.SumTotalCost()) <= p.tolerance()+floatSlack
}

func (p Payment) tolerance() float64 {
	if p.Tolerance > 0 {
		return p.Tolerance
	}
	return DefaultTolerance
}

// ShortID returns a short deterministic hash of the payment identifier,
// used in logs and operator-facing output.
func (p Payment) ShortID() string {
	sum := sha1.Sum([]byte(p.ID))
	return hex.EncodeToString(sum[:])[:8]
}

func (p Payment) String() string {
	return fmt.Sprintf("Payment %s: %d orders, %.2f total, balanced: %t",
		p.ShortID(), len(p.Orders), p.Amount(), p.IsBalanced())
}
