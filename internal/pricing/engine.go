package pricing

import "math"

// Money represents a monetary value in whole currency units.
type Money = int64

// DiscountType tags the kind of discount applied at checkout.
type DiscountType string

const (
	// DiscountNone applies no deduction.
	DiscountNone DiscountType = "none"
	// DiscountAmount deducts a fixed currency amount.
	DiscountAmount DiscountType = "amount"
	// DiscountPercent deducts a percentage of the subtotal.
	DiscountPercent DiscountType = "percent"
)

// Discount is the raw type and value persisted on an order for receipt
// redisplay; the computed deduction is always derived, never stored.
type Discount struct {
	Type  DiscountType `json:"type"`
	Value float64      `json:"value"`
}

// Item describes a line item used for pricing calculation.
type Item struct {
	Qty       int64
	UnitPrice Money
}

// Summary aggregates computed pricing components.
type Summary struct {
	Subtotal       Money
	DiscountAmount float64
	Total          Money
}

// Compute calculates cart totals given the provided inputs. The discount is
// clamped to the subtotal and the final total is rounded half away from zero
// and floored at zero. Negative quantities, prices, and discount values
// contribute nothing.
func Compute(items []Item, discount *Discount) Summary {
	var subtotal Money
	for _, it := range items {
		if it.Qty <= 0 || it.UnitPrice < 0 {
			continue
		}
		subtotal += it.Qty * it.UnitPrice
	}
	amount := discount.AmountFor(subtotal)
	total := roundHalfUp(float64(subtotal) - amount)
	if total < 0 {
		total = 0
	}
	return Summary{
		Subtotal:       subtotal,
		DiscountAmount: amount,
		Total:          total,
	}
}

// AmountFor returns the deduction this discount yields against the given
// subtotal. Invalid values yield zero; the result never exceeds the subtotal.
func (d *Discount) AmountFor(subtotal Money) float64 {
	if d == nil || subtotal <= 0 {
		return 0
	}
	value := d.Value
	if math.IsNaN(value) || value < 0 {
		return 0
	}
	var amount float64
	switch d.Type {
	case DiscountAmount:
		amount = value
	case DiscountPercent:
		amount = float64(subtotal) * value / 100
	default:
		return 0
	}
	if amount > float64(subtotal) {
		amount = float64(subtotal)
	}
	return amount
}

func roundHalfUp(x float64) Money {
	if x <= 0 {
		return 0
	}
	return Money(math.Floor(x + 0.5))
}
