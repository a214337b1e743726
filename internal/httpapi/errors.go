package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"orchd/pkg/types"
)

// HTTPError allows errors to carry an HTTP status code.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// writeError maps a service error to a response, honoring HTTPError
// status codes and defaulting to 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var he HTTPError
	if errors.As(err, &he) {
		status = he.StatusCode()
	}
	writeJSONError(w, status, err.Error())
}
