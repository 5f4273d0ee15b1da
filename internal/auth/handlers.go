package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handlers exposes the PIN gate over HTTP.
type Handlers struct {
	Service *Service
}

// Mount registers the PIN routes, wrapping the unlock route in the provided
// rate limiter when one is given.
func (h *Handlers) Mount(r chi.Router, unlockLimiter func(http.Handler) http.Handler) {
	r.Get("/pin/status", h.status)
	r.Post("/pin", h.setPIN)
	if unlockLimiter != nil {
		r.With(unlockLimiter).Post("/pin/unlock", h.unlock)
		return
	}
	r.Post("/pin/unlock", h.unlock)
}

func (h *Handlers) status(w http.ResponseWriter, r *http.Request) {
	hasPIN, err := h.Service.HasPIN(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	enabled, err := h.Service.Enabled(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]bool{
		"hasPin":  hasPIN,
		"enabled": enabled,
	}})
}

type setPINRequest struct {
	CurrentPIN string `json:"currentPin"`
	NewPIN     string `json:"newPin"`
}

func (h *Handlers) setPIN(w http.ResponseWriter, r *http.Request) {
	var req setPINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.ValidationError("invalid request body", nil))
		return
	}
	if err := h.Service.SetPIN(r.Context(), req.CurrentPIN, req.NewPIN); err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]bool{"updated": true}})
}

type unlockRequest struct {
	PIN string `json:"pin"`
}

func (h *Handlers) unlock(w http.ResponseWriter, r *http.Request) {
	var req unlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.ValidationError("invalid request body", nil))
		return
	}
	token, expiresAt, err := h.Service.Unlock(r.Context(), req.PIN)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"token":     token,
		"expiresAt": expiresAt.UTC().Format(time.RFC3339),
	}})
}
