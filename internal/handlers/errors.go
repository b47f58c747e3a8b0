package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/danielgtaylor/huma/v2"
)

// APIError is the body of every error response: {"error": "<message>"}.
// Details is only set for request validation failures.
type APIError struct {
	status  int
	Message string   `doc:"Human readable error message" example:"Link not found" json:"error"`
	Details []string `doc:"Validation failures"          json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

var useErrorModel sync.Once

// UseErrorModel makes huma build every error as an APIError. huma keeps its
// error constructor in a package variable, so this applies process-wide.
func UseErrorModel() {
	useErrorModel.Do(func() {
		huma.NewError = newAPIError
	})
}

func newAPIError(status int, msg string, errs ...error) huma.StatusError {
	apiErr := &APIError{status: status, Message: msg}

	for _, err := range errs {
		if err != nil {
			apiErr.Details = append(apiErr.Details, err.Error())
		}
	}

	return apiErr
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}

// MethodNotAllowed answers known routes requested with the wrong verb.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(&APIError{Message: msg})
}
