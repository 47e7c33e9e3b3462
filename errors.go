package hookbridge

import (
	"errors"

	"github.com/xraph/hookbridge/internal/errs"
	"github.com/xraph/hookbridge/internal/result"
)

// Sentinel errors returned by hookbridge operations.
var (
	// ErrNoStore is returned when a Bridge is created without a store.
	ErrNoStore = errors.New("hookbridge: store is required")

	// ErrNoContent is returned when a Bridge is created without a content repository.
	ErrNoContent = errors.New("hookbridge: content repository is required")

	// ErrStoreClosed is returned when a store operation is attempted after the store is closed.
	ErrStoreClosed = errors.New("hookbridge: store is closed")

	// ErrMigrationFailed is returned when a database migration fails.
	ErrMigrationFailed = errors.New("hookbridge: migration failed")
)

// Typed errors shared by the bridge subsystems.
type (
	ValidationError    = errs.ValidationError
	NotFoundError      = errs.NotFoundError
	RepositoryError    = errs.RepositoryError
	TransportError     = errs.TransportError
	ConfigurationError = errs.ConfigurationError
)

// Result is the uniform outcome of dispatches and inbound actions.
type Result = result.Result
