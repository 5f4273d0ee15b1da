package settings

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handlers exposes the store profile over HTTP.
type Handlers struct {
	Service *Service
}

// Mount registers profile routes on the router.
func (h *Handlers) Mount(r chi.Router) {
	r.Get("/store", h.get)
	r.Put("/store", h.save)
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Service.Get(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": profile})
}

func (h *Handlers) save(w http.ResponseWriter, r *http.Request) {
	var profile Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		common.WriteError(w, common.ValidationError("invalid request body", nil))
		return
	}
	saved, err := h.Service.Save(r.Context(), profile)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": saved})
}
