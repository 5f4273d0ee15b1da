package health

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/store"
)

// Checker serves liveness and readiness probes.
type Checker struct {
	Store *store.Store
}

// Mount registers the probe routes.
func (c *Checker) Mount(r chi.Router) {
	r.Get("/healthz", c.live)
	r.Get("/readyz", c.ready)
}

func (c *Checker) live(w http.ResponseWriter, _ *http.Request) {
	common.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *Checker) ready(w http.ResponseWriter, r *http.Request) {
	if err := c.Store.Ping(r.Context()); err != nil {
		common.JSONError(w, http.StatusServiceUnavailable, "NOT_READY", "storage unavailable", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
