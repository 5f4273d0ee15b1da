package ledger

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/store"
)

// Service owns the order ledger. All mutations go through the service so the
// read-modify-write against the blob store stays serialized.
type Service struct {
	Store  *store.Store
	Events *events.Bus
	Logger zerolog.Logger
	Now    func() time.Time

	mu sync.Mutex
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// List returns all orders, most recent first.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	var orders []Order
	if _, err := s.Store.GetJSON(ctx, store.KeyOrders, &orders); err != nil {
		return nil, fmt.Errorf("ledger: load orders: %w", err)
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

// Get returns a single order by id.
func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return Order{}, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, errOrderNotFound(id)
}

// CreateInput carries the caller-supplied parts of a new order. Totals are
// recomputed by checkout before they reach the ledger.
type CreateInput struct {
	Items         []Item
	Subtotal      pricing.Money
	Discount      *pricing.Discount
	Total         pricing.Money
	Note          string
	PaymentMethod string
}

// Create records a new order at the head of the ledger.
func (s *Service) Create(ctx context.Context, in CreateInput) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.List(ctx)
	if err != nil {
		return Order{}, err
	}

	now := s.now()
	order := Order{
		ID:            newOrderID(now),
		Items:         append([]Item(nil), in.Items...),
		Subtotal:      in.Subtotal,
		Discount:      in.Discount,
		Total:         in.Total,
		Note:          in.Note,
		PaymentMethod: NormalizePaymentMethod(in.PaymentMethod),
		CreatedAt:     now,
	}

	orders = append([]Order{order}, orders...)
	if err := s.Store.SetJSON(ctx, store.KeyOrders, orders); err != nil {
		return Order{}, fmt.Errorf("ledger: save orders: %w", err)
	}

	if obs.OrdersCreatedTotal != nil {
		obs.OrdersCreatedTotal.WithLabelValues(order.PaymentMethod).Inc()
	}
	s.Logger.Info().
		Str("order_id", order.ID).
		Str("payment_method", order.PaymentMethod).
		Int64("total", order.Total).
		Msg("order_created")

	_ = s.Events.Emit(ctx, events.TopicOrderCreated, order.ID, order)
	return order, nil
}

// Patch carries a partial order update. Nil pointers leave the field alone;
// anything outside this set is never touched.
type Patch struct {
	Note          *string
	Total         *pricing.Money
	Subtotal      *pricing.Money
	Discount      *pricing.Discount
	ClearDiscount bool
	PaymentMethod *string
	Items         []Item
}

// Update applies a partial update to an existing order.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.List(ctx)
	if err != nil {
		return Order{}, err
	}

	idx := -1
	for i, o := range orders {
		if o.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Order{}, errOrderNotFound(id)
	}

	order := orders[idx]
	if patch.Note != nil {
		order.Note = *patch.Note
	}
	if patch.Total != nil {
		order.Total = *patch.Total
	}
	if patch.Subtotal != nil {
		order.Subtotal = *patch.Subtotal
	}
	if patch.ClearDiscount {
		order.Discount = nil
	} else if patch.Discount != nil {
		order.Discount = patch.Discount
	}
	if patch.PaymentMethod != nil {
		order.PaymentMethod = *patch.PaymentMethod
	}
	if patch.Items != nil {
		order.Items = append([]Item(nil), patch.Items...)
	}
	orders[idx] = order

	if err := s.Store.SetJSON(ctx, store.KeyOrders, orders); err != nil {
		return Order{}, fmt.Errorf("ledger: save orders: %w", err)
	}

	s.Logger.Info().Str("order_id", order.ID).Msg("order_updated")
	_ = s.Events.Emit(ctx, events.TopicOrderUpdated, order.ID, order)
	return order, nil
}

// Delete removes an order. Deleting an unknown id is a no-op.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.List(ctx)
	if err != nil {
		return false, err
	}

	kept := orders[:0]
	removed := false
	for _, o := range orders {
		if o.ID == id {
			removed = true
			continue
		}
		kept = append(kept, o)
	}
	if !removed {
		return false, nil
	}

	if err := s.Store.SetJSON(ctx, store.KeyOrders, kept); err != nil {
		return false, fmt.Errorf("ledger: save orders: %w", err)
	}

	s.Logger.Info().Str("order_id", id).Msg("order_deleted")
	_ = s.Events.Emit(ctx, events.TopicOrderDeleted, id, nil)
	return true, nil
}

// Replace swaps the whole ledger, used by backup restore and cloud pull.
func (s *Service) Replace(ctx context.Context, orders []Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if orders == nil {
		orders = []Order{}
	}
	if err := s.Store.SetJSON(ctx, store.KeyOrders, orders); err != nil {
		return fmt.Errorf("ledger: replace orders: %w", err)
	}
	return nil
}

// newOrderID produces ids that sort by creation time when compared as
// strings within the same epoch width, with a random tail for uniqueness.
func newOrderID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 36) + "-" + uuid.NewString()[:8]
}
