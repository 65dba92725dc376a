package remote

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned after a 401. The session slots have been
	// cleared by the time the caller sees it.
	ErrUnauthorized = errors.New("remote session is no longer authorized")
	ErrUnknownMode  = errors.New("unknown backend mode")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API %s failed: %d - %s", e.Endpoint, e.Status, e.Body)
}

func isUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
