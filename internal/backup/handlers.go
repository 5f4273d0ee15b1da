package backup

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handlers exposes backup export and restore.
type Handlers struct {
	Service *Service
}

// Mount registers backup routes on the router.
func (h *Handlers) Mount(r chi.Router) {
	r.Get("/backup/export", h.export)
	r.Post("/backup/import", h.restore)
}

func (h *Handlers) export(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Service.Export(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="pos-backup.json"`)
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(doc)
}

func (h *Handlers) restore(w http.ResponseWriter, r *http.Request) {
	var doc Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		common.WriteError(w, errInvalidFile("backup is not valid JSON"))
		return
	}
	if err := h.Service.Import(r.Context(), doc); err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]bool{"restored": true}})
}
