package content

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested profile does not exist.
	ErrNotFound = errors.New("profile not found")
	// ErrAuthRequired indicates the session credentials are no longer
	// accepted and the run cannot continue.
	ErrAuthRequired = errors.New("authentication required")
)

// StatusError reports a non-success HTTP response from the service.
type StatusError struct {
	Code   int
	Method string
	Path   string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("service %s %s returned %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("service %s %s returned %d: %s", e.Method, e.Path, e.Code, e.Body)
}
