// Package store defines the composite Store interface for bridge persistence.
//
// Each subsystem defines its own store interface and the aggregate Store
// composes them.
package store

import (
	"context"

	"github.com/xraph/hookbridge/deliverylog"
	"github.com/xraph/hookbridge/settings"
)

// Store is the aggregate persistence interface.
type Store interface {
	settings.Store
	deliverylog.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
