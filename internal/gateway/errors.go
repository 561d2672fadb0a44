package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError means the service could not be reached at all: no
// HTTP response was received (connection refused, DNS failure,
// cancelled context, ...).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("service unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError means the service answered with a non-success status.
// Detail carries the service's own error text when it sent one.
type ServiceError struct {
	Status int
	Detail string
}

func (e *ServiceError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("service error (status %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("service error (status %d)", e.Status)
}

// DecodeError means the service reported success but the response body
// did not match the expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a ServiceError with status 404,
// i.e. the service says the addressed session does not exist.
func IsNotFound(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}
