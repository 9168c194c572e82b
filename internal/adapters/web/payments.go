package web

import (
	"net/http"

	"billing-engine/internal/core"

	"github.com/go-chi/chi/v5"
)

type paymentResponse struct {
	Payment     core.Payment `json:"payment"`
	Created     bool         `json:"created"`
	InvoiceLink string       `json:"invoiceLink"`
}

// apiListPayments handles GET /api/payments?q=&from=&to=&customer=.
func (h *Handler) apiListPayments(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Payments []core.Payment `json:"payments"`
	}
	result, err := h.svc.ListPayments(r.Context(), listRequest(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, response{Payments: nonNil(result.Payments)})
}

// apiRecordPayment handles POST /api/payments.
func (h *Handler) apiRecordPayment(w http.ResponseWriter, r *http.Request) {
	h.recordPayment(w, r, "")
}

// apiUpdatePayment handles PUT /api/payments/{id}. An id that does not exist
// yet is recorded as a new payment under that id.
func (h *Handler) apiUpdatePayment(w http.ResponseWriter, r *http.Request) {
	h.recordPayment(w, r, chi.URLParam(r, "id"))
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request, id string) {
	var in core.PaymentInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.ID = id
	result, err := h.svc.RecordPayment(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSONStatus(w, status, paymentResponse{
		Payment:     result.Payment,
		Created:     result.Created,
		InvoiceLink: result.InvoiceLink.String(),
	})
}

// apiDeletePayment handles DELETE /api/payments/{id}.
func (h *Handler) apiDeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePayment(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
