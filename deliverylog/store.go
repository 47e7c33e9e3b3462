package deliverylog

import "context"

// Store persists the delivery log.
type Store interface {
	// PrependLog inserts e at the head and drops everything past capacity,
	// as one atomic step.
	PrependLog(ctx context.Context, e *Entry, capacity int) error

	// ListLogs returns every retained entry, newest first.
	ListLogs(ctx context.Context) ([]*Entry, error)

	// ClearLogs removes every entry atomically.
	ClearLogs(ctx context.Context) error
}
