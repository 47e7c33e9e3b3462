// Package errs defines the typed error taxonomy shared by the bridge subsystems.
package errs

import (
	"fmt"
	"strconv"
)

// ValidationError reports a missing or malformed required field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// NotFoundError reports an entity id that does not resolve.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// RepositoryError wraps a mutation rejected by the content repository.
// Its message is the underlying error text, unchanged.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return e.Err.Error()
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// TransportError wraps a failed outbound HTTP call.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unexpected status code " + strconv.Itoa(e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ConfigurationError reports missing configuration such as an unset
// destination or base URL.
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}
