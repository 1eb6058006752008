// Package shared holds response helpers used by several handler packages.
package shared

import (
	"encoding/json"
	"net/http"

	"github.com/mandalnilabja/goatrelay/internal/types"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteJSONError writes an error in the same envelope the relay endpoints use.
func WriteJSONError(w http.ResponseWriter, message string, status int) {
	errType := types.ErrorTypeInvalidRequest
	if status >= http.StatusInternalServerError {
		errType = types.ErrorTypeServer
	}
	types.WriteError(w, status, types.NewAPIError(message, errType))
}
