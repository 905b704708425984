package workbench

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is returned when the workbench service responds with a
// non-2xx status that the calling method does not treat as an empty result.
// It carries the status code and the raw response body for diagnosis.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("workbench: %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// NotFound reports whether the error represents a 404 response.
func (e *StatusError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err is a *StatusError for a 404 response.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.NotFound()
}

// SchemaError is returned when a response body cannot be decoded into the
// shape the method documents.
type SchemaError struct {
	// Shape names the expected Go type, e.g. "workbench.ConversationList".
	Shape string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("workbench: response did not match %s: %v", e.Shape, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
