// Package respond centralizes JSON response writing for the API handlers.
package respond

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the error envelope every failing endpoint returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSONObject marshals and writes v with the given status.
func WriteJSONObject(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteRawJSON writes bytes that are already JSON (Postgres json_agg /
// row_to_json passthrough).
func WriteRawJSON(w http.ResponseWriter, status int, raw []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

// WriteError writes the error envelope.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSONObject(w, status, ErrorResponse{Error: code, Message: message})
}
