package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrService matches every *ServiceError.
var ErrService = errors.New("remote service error")

// ServiceError is returned by every Client operation that did not get a usable
// response. Cause is set for transport failures; StatusCode for HTTP errors.
type ServiceError struct {
	Op         string
	StatusCode int
	Message    string
	Cause      error
}

func (e *ServiceError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("%s: request failed: %v", e.Op, e.Cause)
	case e.Message != "":
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.StatusCode)
	default:
		return fmt.Sprintf("%s: request failed with status %d", e.Op, e.StatusCode)
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

func (e *ServiceError) Is(target error) bool {
	return target == ErrService
}

// Transient reports whether retrying the same call may succeed.
func (e *ServiceError) Transient() bool {
	if e.Cause != nil {
		return true
	}
	switch e.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return e.StatusCode >= http.StatusInternalServerError
}

// IsTransient reports whether err is a transient *ServiceError.
func IsTransient(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Transient()
	}
	return false
}
