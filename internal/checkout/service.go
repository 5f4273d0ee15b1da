package checkout

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/ledger"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/pricing"
)

// Line is one cart entry referencing a catalog product.
type Line struct {
	ProductID int64 `json:"productId"`
	Qty       int64 `json:"qty"`
}

// Input is a checkout submission.
type Input struct {
	Lines         []Line
	Discount      *pricing.Discount
	Note          string
	PaymentMethod string
}

// Service validates carts, prices them, records the order, and decrements
// stock afterwards.
type Service struct {
	Catalog *catalog.Service
	Ledger  *ledger.Service
	Logger  zerolog.Logger
}

// Checkout runs the full flow. Validation failures reject the sale before any
// state changes; once the order is recorded, a stock decrement failure is
// logged but never rolls the order back.
func (s *Service) Checkout(ctx context.Context, in Input) (ledger.Order, error) {
	items, sold, err := s.buildItems(ctx, in.Lines)
	if err != nil {
		return ledger.Order{}, err
	}

	summary := pricing.Compute(ledger.PricingItems(items), in.Discount)
	if summary.Total == 0 {
		return ledger.Order{}, s.reject("zero_total", "order total must be greater than zero", nil)
	}

	order, err := s.Ledger.Create(ctx, ledger.CreateInput{
		Items:         items,
		Subtotal:      summary.Subtotal,
		Discount:      in.Discount,
		Total:         summary.Total,
		Note:          in.Note,
		PaymentMethod: in.PaymentMethod,
	})
	if err != nil {
		return ledger.Order{}, err
	}

	if err := s.Catalog.DecrementStock(ctx, sold); err != nil {
		// The sale already happened; stock will be off until corrected.
		s.Logger.Error().Err(err).Str("order_id", order.ID).Msg("stock_decrement_failed")
	}
	return order, nil
}

func (s *Service) buildItems(ctx context.Context, lines []Line) ([]ledger.Item, map[int64]int64, error) {
	if len(lines) == 0 {
		return nil, nil, s.reject("empty_cart", "cart is empty", nil)
	}

	products, err := s.Catalog.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[int64]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]ledger.Item, 0, len(lines))
	sold := make(map[int64]int64, len(lines))
	for _, line := range lines {
		if line.Qty <= 0 {
			return nil, nil, s.reject("invalid_qty", fmt.Sprintf("quantity for product %d must be positive", line.ProductID), nil)
		}
		p, ok := byID[line.ProductID]
		if !ok {
			return nil, nil, s.reject("unknown_product", fmt.Sprintf("product %d not found", line.ProductID), nil)
		}
		if !p.IsActive {
			return nil, nil, s.reject("inactive_product", fmt.Sprintf("product %q is not purchasable", p.Name), nil)
		}
		qty := sold[p.ID] + line.Qty
		if p.UseStock && qty > p.Stock {
			return nil, nil, s.reject("insufficient_stock", fmt.Sprintf("not enough stock for %q", p.Name), map[string]int64{
				"productId": p.ID,
				"available": p.Stock,
			})
		}
		sold[p.ID] = qty
		items = append(items, ledger.Item{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Qty:       line.Qty,
			Category:  p.Category,
			SKU:       p.SKU,
		})
	}
	return items, sold, nil
}

func (s *Service) reject(reason, message string, details any) error {
	if obs.CheckoutRejectedTotal != nil {
		obs.CheckoutRejectedTotal.WithLabelValues(reason).Inc()
	}
	return common.ValidationError(message, details)
}
