package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/pricing"
)

// Handlers exposes catalog CRUD over HTTP.
type Handlers struct {
	Service  *Service
	Validate *validator.Validate
}

// Mount registers catalog routes on the router.
func (h *Handlers) Mount(r chi.Router) {
	r.Get("/products", h.list)
	r.Post("/products", h.create)
	r.Get("/products/{productID}", h.get)
	r.Put("/products/{productID}", h.update)
	r.Post("/products/{productID}/toggle", h.toggle)
	r.Delete("/products/{productID}", h.remove)

	r.Get("/categories", h.categories)
	r.Post("/categories", h.addCategory)
	r.Put("/categories/{name}", h.renameCategory)
	r.Delete("/categories/{name}", h.removeCategory)
}

type productRequest struct {
	Name        string        `json:"name" validate:"required"`
	Price       pricing.Money `json:"price" validate:"gte=0"`
	Category    string        `json:"category"`
	Description string        `json:"description"`
	Image       *string       `json:"image"`
	SKU         string        `json:"sku"`
	IsActive    *bool         `json:"isActive"`
	UseStock    bool          `json:"useStock"`
	Stock       int64         `json:"stock" validate:"gte=0"`
}

func (h *Handlers) decodeProduct(r *http.Request) (Product, error) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return Product{}, common.ValidationError("invalid request body", nil)
	}
	if err := h.Validate.Struct(req); err != nil {
		return Product{}, common.ValidationError("invalid product", err.Error())
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return Product{
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Description: req.Description,
		Image:       req.Image,
		SKU:         req.SKU,
		IsActive:    active,
		UseStock:    req.UseStock,
		Stock:       req.Stock,
	}, nil
}

func productID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		return 0, common.ValidationError("invalid product id", nil)
	}
	return id, nil
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	var (
		products []Product
		err      error
	)
	if r.URL.Query().Get("active") == "true" {
		products, err = h.Service.ActiveProducts(r.Context())
	} else {
		products, err = h.Service.List(r.Context())
	}
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": products})
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	product, err := h.Service.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	product, err := h.decodeProduct(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	created, err := h.Service.Create(r.Context(), product)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	product, err := h.decodeProduct(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	updated, err := h.Service.Update(r.Context(), id, product)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

func (h *Handlers) toggle(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	product, err := h.Service.ToggleActive(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}

func (h *Handlers) remove(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	removed, err := h.Service.Delete(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]bool{"deleted": removed}})
}

func (h *Handlers) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.Categories(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": categories})
}

type categoryRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *Handlers) addCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.ValidationError("invalid request body", nil))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.WriteError(w, common.ValidationError("category name is required", nil))
		return
	}
	categories, err := h.Service.AddCategory(r.Context(), req.Name)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": categories})
}

func (h *Handlers) renameCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.ValidationError("invalid request body", nil))
		return
	}
	categories, err := h.Service.RenameCategory(r.Context(), chi.URLParam(r, "name"), req.Name)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": categories})
}

func (h *Handlers) removeCategory(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.RemoveCategory(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": categories})
}
