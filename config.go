package hookbridge

import "time"

// Config holds the configuration for a Bridge instance.
type Config struct {
	// TriggerTimeout is the HTTP timeout for outbound webhook deliveries.
	TriggerTimeout time.Duration

	// APITimeout is the HTTP timeout for engine management API calls.
	APITimeout time.Duration

	// StrictStatusCheck treats non-2xx destination responses as failed
	// deliveries. Off by default: any completed response counts.
	StrictStatusCheck bool
}

// DefaultConfig returns a Config with the standard timeouts.
func DefaultConfig() Config {
	return Config{
		TriggerTimeout: 15 * time.Second,
		APITimeout:     30 * time.Second,
	}
}
