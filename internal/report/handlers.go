package report

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handlers exposes the reporting endpoints.
type Handlers struct {
	Service *Service
}

// Mount registers report routes on the router.
func (h *Handlers) Mount(r chi.Router) {
	r.Get("/reports", h.report)
	r.Get("/reports/options", h.options)
}

// PeriodFromQuery parses the period selector shared by the report and export
// endpoints: ?period=day|week|month|range with offset or from/to dates.
func PeriodFromQuery(r *http.Request, loc *time.Location) (Period, error) {
	q := r.URL.Query()
	p := Period{
		Kind:   q.Get("period"),
		Offset: common.AtoiDefault(q.Get("offset"), 0),
	}
	if p.Kind == PeriodRange {
		from, err := ParseDate(q.Get("from"), loc)
		if err != nil {
			return Period{}, err
		}
		to, err := ParseDate(q.Get("to"), loc)
		if err != nil {
			return Period{}, err
		}
		p.From, p.To = from, to
	}
	return p, nil
}

func (h *Handlers) report(w http.ResponseWriter, r *http.Request) {
	p, err := PeriodFromQuery(r, h.Service.now().Location())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	rep, err := h.Service.BuildReport(r.Context(), p)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rep})
}

func (h *Handlers) options(w http.ResponseWriter, _ *http.Request) {
	common.JSON(w, http.StatusOK, map[string]any{"data": h.Service.BuildOptions()})
}
