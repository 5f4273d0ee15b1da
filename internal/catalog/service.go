package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/store"
)

// Service owns the product catalog and its category list.
type Service struct {
	Store  *store.Store
	Events *events.Bus
	Logger zerolog.Logger

	mu sync.Mutex
}

// List returns every product, stored order preserved.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	var products []Product
	if _, err := s.Store.GetJSON(ctx, store.KeyProducts, &products); err != nil {
		return nil, fmt.Errorf("catalog: load products: %w", err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// ActiveProducts returns only purchasable entries.
func (s *Service) ActiveProducts(ctx context.Context) ([]Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]Product, 0, len(products))
	for _, p := range products {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}

// Get returns a single product by id.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, common.NotFoundError(fmt.Sprintf("product %d not found", id))
}

func normalizeProduct(p *Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return common.ValidationError("product name is required", nil)
	}
	if p.Price < 0 {
		return common.ValidationError("product price must not be negative", nil)
	}
	if p.Stock < 0 {
		p.Stock = 0
	}
	return nil
}

// Create appends a product, assigning the next free id (max existing + 1).
func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := normalizeProduct(&p); err != nil {
		return Product{}, err
	}
	products, err := s.List(ctx)
	if err != nil {
		return Product{}, err
	}

	var maxID int64
	for _, existing := range products {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	p.ID = maxID + 1

	products = append(products, p)
	if err := s.save(ctx, products); err != nil {
		return Product{}, err
	}
	s.Logger.Info().Int64("product_id", p.ID).Str("name", p.Name).Msg("product_created")
	return p, nil
}

// Update replaces an existing product's editable fields, keeping its id.
func (s *Service) Update(ctx context.Context, id int64, p Product) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := normalizeProduct(&p); err != nil {
		return Product{}, err
	}
	products, err := s.List(ctx)
	if err != nil {
		return Product{}, err
	}
	for i := range products {
		if products[i].ID != id {
			continue
		}
		p.ID = id
		products[i] = p
		if err := s.save(ctx, products); err != nil {
			return Product{}, err
		}
		s.Logger.Info().Int64("product_id", id).Msg("product_updated")
		return p, nil
	}
	return Product{}, common.NotFoundError(fmt.Sprintf("product %d not found", id))
}

// ToggleActive flips purchasability for a product.
func (s *Service) ToggleActive(ctx context.Context, id int64) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.List(ctx)
	if err != nil {
		return Product{}, err
	}
	for i := range products {
		if products[i].ID != id {
			continue
		}
		products[i].IsActive = !products[i].IsActive
		if err := s.save(ctx, products); err != nil {
			return Product{}, err
		}
		return products[i], nil
	}
	return Product{}, common.NotFoundError(fmt.Sprintf("product %d not found", id))
}

// Delete removes a product. Unknown ids are a no-op.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	kept := products[:0]
	removed := false
	for _, p := range products {
		if p.ID == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return false, nil
	}
	if err := s.save(ctx, kept); err != nil {
		return false, err
	}
	s.Logger.Info().Int64("product_id", id).Msg("product_deleted")
	return true, nil
}

// DecrementStock subtracts sold quantities from tracked products, flooring at
// zero. Unknown ids and untracked products are skipped. It never fails a sale;
// the order is already recorded when this runs.
func (s *Service) DecrementStock(ctx context.Context, sold map[int64]int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.List(ctx)
	if err != nil {
		return err
	}
	changed := false
	for i := range products {
		qty, ok := sold[products[i].ID]
		if !ok || qty <= 0 || !products[i].UseStock {
			continue
		}
		products[i].Stock -= qty
		if products[i].Stock <= 0 {
			products[i].Stock = 0
			if obs.StockDepletedTotal != nil {
				obs.StockDepletedTotal.Inc()
			}
		}
		changed = true
	}
	if !changed {
		return nil
	}
	return s.save(ctx, products)
}

// Replace swaps the whole catalog, used by backup restore and cloud pull.
func (s *Service) Replace(ctx context.Context, products []Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if products == nil {
		products = []Product{}
	}
	if err := s.Store.SetJSON(ctx, store.KeyProducts, products); err != nil {
		return fmt.Errorf("catalog: replace products: %w", err)
	}
	return nil
}

func (s *Service) save(ctx context.Context, products []Product) error {
	if err := s.Store.SetJSON(ctx, store.KeyProducts, products); err != nil {
		return fmt.Errorf("catalog: save products: %w", err)
	}
	_ = s.Events.Emit(ctx, events.TopicCatalogChanged, "", nil)
	return nil
}
