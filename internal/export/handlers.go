package export

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/report"
)

// Handlers serves CSV downloads of report data.
type Handlers struct {
	Reports *report.Service
}

// Mount registers the export route.
func (h *Handlers) Mount(r chi.Router) {
	r.Get("/reports/export", h.exportCSV)
}

func (h *Handlers) exportCSV(w http.ResponseWriter, r *http.Request) {
	p, err := report.PeriodFromQuery(r, time.Local)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	orders, from, to, err := h.Reports.OrdersIn(r.Context(), p)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	csv := BuildCSV(ReportRows(orders))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+Filename(from, to)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csv))
}
