package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/duckgate/duckgate/pkg/api"
)

// WriteErrorResponse writes the flat {"error": message} payload with the
// given status code.
func WriteErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: message})
}

// WriteError writes an error response, deriving status and message from
// the error's taxonomy kind. Errors outside the taxonomy are reported
// as generic 400 failures without leaking internals.
func WriteError(w http.ResponseWriter, err error) {
	var gerr *api.Error
	if errors.As(err, &gerr) {
		WriteErrorResponse(w, gerr.Message, gerr.HTTPStatus())
		return
	}
	WriteErrorResponse(w, "request failed", http.StatusBadRequest)
}
