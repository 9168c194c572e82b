package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"billing-engine/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler serves the JSON API over an ApplicationService.
type Handler struct {
	svc app.ApplicationService
	log zerolog.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string, log zerolog.Logger) http.Handler {
	h := &Handler{svc: svc, log: log}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Get("/api/health", h.health)

	r.Route("/api/customers", func(r chi.Router) {
		r.Get("/", h.apiListCustomers)
		r.Post("/", h.apiCreateCustomer)
		r.Get("/{id}", h.apiGetCustomer)
		r.Put("/{id}", h.apiUpdateCustomer)
		r.Delete("/{id}", h.apiDeleteCustomer)
		r.Get("/{id}/invoices", h.apiCustomerInvoices)
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.apiListProducts)
		r.Post("/", h.apiCreateProduct)
		r.Get("/{id}", h.apiGetProduct)
		r.Put("/{id}", h.apiUpdateProduct)
		r.Delete("/{id}", h.apiDeleteProduct)
	})

	r.Route("/api/invoices", func(r chi.Router) {
		r.Get("/", h.apiListInvoices)
		r.Post("/", h.apiSaveInvoice)
		r.Post("/preview", h.apiPreviewInvoice)
		r.Get("/{id}", h.apiGetInvoice)
		r.Delete("/{id}", h.apiDeleteInvoice)
	})

	r.Route("/api/payments", func(r chi.Router) {
		r.Get("/", h.apiListPayments)
		r.Post("/", h.apiRecordPayment)
		r.Put("/{id}", h.apiUpdatePayment)
		r.Delete("/{id}", h.apiDeletePayment)
	})

	r.Get("/api/reports", h.apiReport)
	r.Get("/api/reports/balances", h.apiBalances)
	r.Get("/api/store/status", h.apiStoreStatus)
	r.Get("/api/schema/{collection}", h.apiSchema)

	return r
}

// health reports whether the store backend is reachable.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	if err := h.svc.Health(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("health check failed")
		writeError(w, r, "store unavailable", "STORE_UNAVAILABLE", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, response{Status: "ok"})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
