package web

import (
	"net/http"

	"billing-engine/internal/core"

	"github.com/go-chi/chi/v5"
)

// apiListCustomers handles GET /api/customers?q=.
func (h *Handler) apiListCustomers(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Customers []core.Customer `json:"customers"`
	}
	result, err := h.svc.ListCustomers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, response{Customers: nonNil(result.Customers)})
}

// apiGetCustomer handles GET /api/customers/{id}.
func (h *Handler) apiGetCustomer(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Customer)
}

// apiCreateCustomer handles POST /api/customers.
func (h *Handler) apiCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var in core.CustomerInput
	if !decodeJSON(w, r, &in) {
		return
	}
	result, err := h.svc.CreateCustomer(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Customer)
}

// apiUpdateCustomer handles PUT /api/customers/{id}.
func (h *Handler) apiUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var in core.CustomerInput
	if !decodeJSON(w, r, &in) {
		return
	}
	result, err := h.svc.UpdateCustomer(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Customer)
}

// apiDeleteCustomer handles DELETE /api/customers/{id}.
// Invoices and payments referencing the customer are kept and counted.
func (h *Handler) apiDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Deleted           core.Customer `json:"deleted"`
		DependentInvoices int           `json:"dependentInvoices"`
		DependentPayments int           `json:"dependentPayments"`
	}
	result, err := h.svc.DeleteCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, response{
		Deleted:           result.Customer,
		DependentInvoices: result.DependentInvoices,
		DependentPayments: result.DependentPayments,
	})
}

// apiCustomerInvoices handles GET /api/customers/{id}/invoices.
func (h *Handler) apiCustomerInvoices(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Invoices []core.Invoice `json:"invoices"`
	}
	result, err := h.svc.CustomerInvoices(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, response{Invoices: nonNil(result.Invoices)})
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
