package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// apiStoreStatus handles GET /api/store/status.
// Responds 200 when healthy and 409 when a collection is corrupt or an
// invoice's stored totals do not reconcile.
func (h *Handler) apiStoreStatus(w http.ResponseWriter, r *http.Request) {
	type collection struct {
		Name    string `json:"name"`
		Status  string `json:"status"`
		Records int    `json:"records"`
	}
	type response struct {
		Healthy              bool         `json:"healthy"`
		Collections          []collection `json:"collections"`
		UnreconciledInvoices []string     `json:"unreconciledInvoices"`
	}
	result, err := h.svc.VerifyStore(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	resp := response{
		Healthy:              result.Healthy(),
		Collections:          make([]collection, 0, len(result.Collections)),
		UnreconciledInvoices: make([]string, 0, len(result.UnreconciledInvoices)),
	}
	for _, c := range result.Collections {
		resp.Collections = append(resp.Collections, collection{Name: string(c.Name), Status: c.Status.String(), Records: c.Records})
	}
	for _, inv := range result.UnreconciledInvoices {
		resp.UnreconciledInvoices = append(resp.UnreconciledInvoices, inv.ID)
	}
	status := http.StatusOK
	if !resp.Healthy {
		status = http.StatusConflict
	}
	writeJSONStatus(w, status, resp)
}

// apiSchema handles GET /api/schema/{collection}.
func (h *Handler) apiSchema(w http.ResponseWriter, r *http.Request) {
	body, err := h.svc.CollectionSchema(chi.URLParam(r, "collection"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	_, _ = w.Write(body)
}
