package remote

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handlers exposes sync status and manual push/pull triggers.
type Handlers struct {
	Syncer *Syncer
}

// Mount registers sync routes on the router.
func (h *Handlers) Mount(r chi.Router) {
	r.Get("/sync/status", h.status)
	r.Post("/sync/push", h.push)
	r.Post("/sync/pull", h.pull)
}

func (h *Handlers) status(w http.ResponseWriter, _ *http.Request) {
	common.JSON(w, http.StatusOK, map[string]any{"data": h.Syncer.Status()})
}

func (h *Handlers) push(w http.ResponseWriter, r *http.Request) {
	if h.Syncer.Client == nil {
		common.WriteError(w, common.ValidationError("sync is not configured", nil))
		return
	}
	h.Syncer.Flush(r.Context())
	common.JSON(w, http.StatusOK, map[string]any{"data": h.Syncer.Status()})
}

func (h *Handlers) pull(w http.ResponseWriter, r *http.Request) {
	if h.Syncer.Client == nil {
		common.WriteError(w, common.ValidationError("sync is not configured", nil))
		return
	}
	applied, err := h.Syncer.PullAndApply(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]bool{"applied": applied}})
}
