package web

import (
	"net/http"

	"billing-engine/internal/app"
	"billing-engine/internal/core"
	"billing-engine/internal/export"
)

// apiReport handles GET /api/reports?type=&from=&to=&customer=&format=.
// format=csv streams the report rows as a CSV attachment.
func (h *Handler) apiReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.svc.GetReport(r.Context(), app.ReportRequest{
		Type:       q.Get("type"),
		From:       q.Get("from"),
		To:         q.Get("to"),
		CustomerID: q.Get("customer"),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeReport(w, r, result.Report)
}

// apiBalances handles GET /api/reports/balances.
func (h *Handler) apiBalances(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetBalances(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeReport(w, r, result.Report)
}

func (h *Handler) writeReport(w http.ResponseWriter, r *http.Request, rep *core.Report) {
	if r.URL.Query().Get("format") != "csv" {
		writeJSON(w, rep)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(rep)+`"`)
	if err := export.WriteReportCSV(w, rep); err != nil {
		h.log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("csv export failed")
	}
}
