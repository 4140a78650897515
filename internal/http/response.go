package http

import (
	"encoding/json"
	"net/http"

	"bookcatalog/internal/book"
)

type errorBody struct {
	Error   string            `json:"error"`
	Details []book.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

func writeValidationError(w http.ResponseWriter, verr *book.ValidationError) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid input", Details: verr.Fields})
}
