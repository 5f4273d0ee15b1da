package checkout

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/pricing"
)

// Handlers exposes checkout over HTTP.
type Handlers struct {
	Service  *Service
	Validate *validator.Validate
}

// Mount registers the order creation route.
func (h *Handlers) Mount(r chi.Router) {
	r.Post("/orders", h.create)
}

type checkoutRequest struct {
	Items         []Line            `json:"items" validate:"required,min=1,dive"`
	Discount      *pricing.Discount `json:"discount"`
	Note          string            `json:"note"`
	PaymentMethod string            `json:"paymentMethod"`
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.ValidationError("invalid request body", nil))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.WriteError(w, common.ValidationError("invalid checkout request", err.Error()))
		return
	}
	order, err := h.Service.Checkout(r.Context(), Input{
		Lines:         req.Items,
		Discount:      req.Discount,
		Note:          req.Note,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": order})
}
