// Package response writes the JSON envelope shared by every API handler.
package response

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"corpval/pkg/core/errs"
)

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    errs.Kind   `json:"kind,omitempty"` // Error class when the engine rejected the input
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] failed to write JSON response: %v", err)
	}
}

// OK wraps data in a successful envelope.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

// Error writes a failed envelope with a plain message.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, APIResponse{Success: false, Error: msg})
}

// Failure maps an engine error to a status. Taxonomy errors describe the
// caller's input (422); a request that ran past its deadline is 504.
func Failure(w http.ResponseWriter, err error) {
	kind := errs.KindOf(err)
	status := http.StatusUnprocessableEntity
	switch {
	case kind != "":
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = http.StatusGatewayTimeout
	default:
		status = http.StatusInternalServerError
		log.Printf("[API] unexpected error: %v", err)
	}
	JSON(w, status, APIResponse{Success: false, Error: err.Error(), Kind: kind})
}
