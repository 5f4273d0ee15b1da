package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/store"
)

// Categories returns the category list, seeding defaults on first use.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	found, err := s.Store.GetJSON(ctx, store.KeyCategories, &categories)
	if err != nil {
		return nil, fmt.Errorf("catalog: load categories: %w", err)
	}
	if !found {
		return append([]string(nil), DefaultCategories...), nil
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// AddCategory appends a new category name. Duplicates are rejected.
func (s *Service) AddCategory(ctx context.Context, name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ValidationError("category name is required", nil)
	}
	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		if c == name {
			return nil, common.ValidationError(fmt.Sprintf("category %q already exists", name), nil)
		}
	}
	categories = append(categories, name)
	if err := s.saveCategories(ctx, categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// RenameCategory renames a category and cascades the new name onto every
// product carrying the old one.
func (s *Service) RenameCategory(ctx context.Context, from, to string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	to = strings.TrimSpace(to)
	if to == "" {
		return nil, common.ValidationError("category name is required", nil)
	}
	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, c := range categories {
		if c == from {
			idx = i
		}
		if c == to && from != to {
			return nil, common.ValidationError(fmt.Sprintf("category %q already exists", to), nil)
		}
	}
	if idx < 0 {
		return nil, common.NotFoundError(fmt.Sprintf("category %q not found", from))
	}
	categories[idx] = to
	if err := s.saveCategories(ctx, categories); err != nil {
		return nil, err
	}

	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	changed := false
	for i := range products {
		if products[i].Category == from {
			products[i].Category = to
			changed = true
		}
	}
	if changed {
		if err := s.save(ctx, products); err != nil {
			return nil, err
		}
	}
	s.Logger.Info().Str("from", from).Str("to", to).Msg("category_renamed")
	return categories, nil
}

// RemoveCategory drops a category from the list. Products keep their category
// string; they simply become category-less for reporting once it no longer
// matches anything.
func (s *Service) RemoveCategory(ctx context.Context, name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	kept := categories[:0]
	removed := false
	for _, c := range categories {
		if c == name {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	if !removed {
		return nil, common.NotFoundError(fmt.Sprintf("category %q not found", name))
	}
	if err := s.saveCategories(ctx, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// ReplaceCategories swaps the whole list, used by backup restore and cloud pull.
func (s *Service) ReplaceCategories(ctx context.Context, categories []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if categories == nil {
		categories = []string{}
	}
	if err := s.Store.SetJSON(ctx, store.KeyCategories, categories); err != nil {
		return fmt.Errorf("catalog: replace categories: %w", err)
	}
	return nil
}

func (s *Service) saveCategories(ctx context.Context, categories []string) error {
	if err := s.Store.SetJSON(ctx, store.KeyCategories, categories); err != nil {
		return fmt.Errorf("catalog: save categories: %w", err)
	}
	_ = s.Events.Emit(ctx, events.TopicCategoriesChanged, "", nil)
	return nil
}
