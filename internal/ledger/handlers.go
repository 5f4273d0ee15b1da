package ledger

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/pricing"
)

// Handlers exposes the order ledger over HTTP.
type Handlers struct {
	Service *Service
}

// Mount registers ledger routes on the router. Order creation lives in the
// checkout package; the ledger only serves reads and post-sale edits.
func (h *Handlers) Mount(r chi.Router) {
	r.Get("/orders", h.list)
	r.Get("/orders/{orderID}", h.get)
	r.Patch("/orders/{orderID}", h.update)
	r.Delete("/orders/{orderID}", h.remove)
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Service.List(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if r.URL.Query().Get("limit") == "" {
		common.JSON(w, http.StatusOK, map[string]any{"data": orders})
		return
	}

	page, perPage := common.ParsePagination(r, 20)
	start := (page - 1) * perPage
	if start > len(orders) {
		start = len(orders)
	}
	end := start + perPage
	if end > len(orders) {
		end = len(orders)
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": orders[start:end],
		"meta": common.Pagination{Page: page, PerPage: perPage, TotalItems: len(orders)},
	})
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	order, err := h.Service.Get(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": order})
}

type updateOrderRequest struct {
	Note          *string         `json:"note"`
	Total         *pricing.Money  `json:"total"`
	Subtotal      *pricing.Money  `json:"subtotal"`
	Discount      json.RawMessage `json:"discount"`
	PaymentMethod *string         `json:"paymentMethod"`
	Items         []Item          `json:"items"`
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.ValidationError("invalid request body", nil))
		return
	}

	patch := Patch{
		Note:          req.Note,
		Total:         req.Total,
		Subtotal:      req.Subtotal,
		PaymentMethod: req.PaymentMethod,
		Items:         req.Items,
	}
	if len(req.Discount) > 0 {
		if bytes.Equal(bytes.TrimSpace(req.Discount), []byte("null")) {
			patch.ClearDiscount = true
		} else {
			var d pricing.Discount
			if err := json.Unmarshal(req.Discount, &d); err != nil {
				common.WriteError(w, common.ValidationError("invalid discount", nil))
				return
			}
			patch.Discount = &d
		}
	}

	order, err := h.Service.Update(r.Context(), chi.URLParam(r, "orderID"), patch)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": order})
}

func (h *Handlers) remove(w http.ResponseWriter, r *http.Request) {
	removed, err := h.Service.Delete(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]bool{"deleted": removed}})
}
