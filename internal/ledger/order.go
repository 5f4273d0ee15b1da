package ledger

import (
	"strings"
	"time"

	"github.com/noah-isme/backend-pos/internal/pricing"
)

// Payment methods accepted at checkout. Anything else collapses to cash.
const (
	PaymentLine = "line"
	PaymentCash = "cash"
	PaymentCard = "card"
)

// PaymentMethods lists every accepted method in display order.
var PaymentMethods = []string{PaymentLine, PaymentCash, PaymentCard}

// NormalizePaymentMethod maps arbitrary input onto an accepted method,
// defaulting to cash.
func NormalizePaymentMethod(method string) string {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case PaymentLine:
		return PaymentLine
	case PaymentCard:
		return PaymentCard
	default:
		return PaymentCash
	}
}

// Item is a frozen snapshot of a product line at the moment of sale. Later
// catalog edits never reach back into recorded orders.
type Item struct {
	ProductID int64         `json:"productId,omitempty"`
	Name      string        `json:"name"`
	Price     pricing.Money `json:"price"`
	Qty       int64         `json:"qty"`
	Category  string        `json:"category,omitempty"`
	SKU       string        `json:"sku,omitempty"`
}

// Order is a completed sale record.
type Order struct {
	ID            string            `json:"id"`
	Items         []Item            `json:"items"`
	Subtotal      pricing.Money     `json:"subtotal"`
	Discount      *pricing.Discount `json:"discount"`
	Total         pricing.Money     `json:"total"`
	Note          string            `json:"note,omitempty"`
	PaymentMethod string            `json:"paymentMethod"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// PricingItems projects order lines into the pricing engine's shape.
func PricingItems(items []Item) []pricing.Item {
	out := make([]pricing.Item, 0, len(items))
	for _, it := range items {
		out = append(out, pricing.Item{Qty: it.Qty, UnitPrice: it.Price})
	}
	return out
}
