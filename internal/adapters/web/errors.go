package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"billing-engine/internal/core"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error     string       `json:"error"`
	Code      string       `json:"code"`
	Fields    []fieldError `json:"fields,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorResponse(w, r, errorResponse{Error: message, Code: code}, status)
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, resp errorResponse, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp.RequestID = requestIDFromContext(r.Context())
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps core errors to HTTP status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrValidation):
		resp := errorResponse{Error: err.Error(), Code: "VALIDATION_FAILED"}
		var many core.ValidationErrors
		var one *core.ValidationError
		switch {
		case errors.As(err, &many):
			for _, v := range many {
				resp.Fields = append(resp.Fields, fieldError{Field: v.Field, Message: v.Message})
			}
		case errors.As(err, &one):
			resp.Fields = []fieldError{{Field: one.Field, Message: one.Message}}
		}
		writeErrorResponse(w, r, resp, http.StatusBadRequest)
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrCorruptCollection):
		writeError(w, r, err.Error(), "CORRUPT_COLLECTION", http.StatusConflict)
	default:
		h.log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("request failed")
		writeError(w, r, "internal server error", "INTERNAL", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
