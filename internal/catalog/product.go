package catalog

import (
	"github.com/noah-isme/backend-pos/internal/pricing"
)

// Product is a sellable catalog entry. Stock is only meaningful while
// UseStock is set; untracked products never run out.
type Product struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Price       pricing.Money `json:"price"`
	Category    string        `json:"category,omitempty"`
	Description string        `json:"description,omitempty"`
	Image       *string       `json:"image"`
	SKU         string        `json:"sku,omitempty"`
	IsActive    bool          `json:"isActive"`
	UseStock    bool          `json:"useStock"`
	Stock       int64         `json:"stock"`
}

// Available reports whether qty units can currently be sold.
func (p Product) Available(qty int64) bool {
	if !p.IsActive {
		return false
	}
	if !p.UseStock {
		return true
	}
	return p.Stock >= qty
}

// DefaultCategories seeds a fresh install.
var DefaultCategories = []string{"Handmade", "Accessories", "Stationery", "Textiles", "Ceramics", "Other"}
