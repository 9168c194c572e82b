package web

import (
	"net/http"

	"billing-engine/internal/core"

	"github.com/go-chi/chi/v5"
)

// apiListProducts handles GET /api/products?q=.
func (h *Handler) apiListProducts(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Products []core.Product `json:"products"`
	}
	result, err := h.svc.ListProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, response{Products: nonNil(result.Products)})
}

// apiGetProduct handles GET /api/products/{id}.
func (h *Handler) apiGetProduct(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Product)
}

// apiCreateProduct handles POST /api/products.
func (h *Handler) apiCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in core.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}
	result, err := h.svc.CreateProduct(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Product)
}

// apiUpdateProduct handles PUT /api/products/{id}.
func (h *Handler) apiUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in core.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}
	result, err := h.svc.UpdateProduct(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Product)
}

// apiDeleteProduct handles DELETE /api/products/{id}.
func (h *Handler) apiDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
