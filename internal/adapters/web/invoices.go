package web

import (
	"net/http"

	"billing-engine/internal/app"
	"billing-engine/internal/core"

	"github.com/go-chi/chi/v5"
)

// listRequest reads the shared list filters from the query string.
func listRequest(r *http.Request) app.ListRequest {
	q := r.URL.Query()
	return app.ListRequest{
		Search:     q.Get("q"),
		From:       q.Get("from"),
		To:         q.Get("to"),
		CustomerID: q.Get("customer"),
	}
}

// apiListInvoices handles GET /api/invoices?q=&from=&to=&customer=.
func (h *Handler) apiListInvoices(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Invoices []core.Invoice `json:"invoices"`
	}
	result, err := h.svc.ListInvoices(r.Context(), listRequest(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, response{Invoices: nonNil(result.Invoices)})
}

// apiGetInvoice handles GET /api/invoices/{id}.
func (h *Handler) apiGetInvoice(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Invoice)
}

// apiPreviewInvoice handles POST /api/invoices/preview.
// Nothing is stored; the response carries the computed line and invoice totals.
func (h *Handler) apiPreviewInvoice(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Draft             *core.InvoiceDraft   `json:"draft"`
		IgnoredReferences []core.ReferenceMiss `json:"ignoredReferences"`
	}
	var in core.InvoiceInput
	if !decodeJSON(w, r, &in) {
		return
	}
	result, err := h.svc.PreviewInvoice(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, response{Draft: result.Draft, IgnoredReferences: nonNil(result.IgnoredReferences)})
}

// apiSaveInvoice handles POST /api/invoices.
func (h *Handler) apiSaveInvoice(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Invoice           *core.Invoice        `json:"invoice"`
		IgnoredReferences []core.ReferenceMiss `json:"ignoredReferences"`
	}
	var in core.InvoiceInput
	if !decodeJSON(w, r, &in) {
		return
	}
	result, err := h.svc.SaveInvoice(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, response{
		Invoice:           result.Invoice,
		IgnoredReferences: nonNil(result.IgnoredReferences),
	})
}

// apiDeleteInvoice handles DELETE /api/invoices/{id}.
// Payments allocated to the invoice are kept with a dangling link.
func (h *Handler) apiDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	type response struct {
		AllocatedPayments int `json:"allocatedPayments"`
	}
	result, err := h.svc.DeleteInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, response{AllocatedPayments: result.AllocatedPayments})
}
