package hookbridge

import (
	"log/slog"
	"time"

	"github.com/xraph/hookbridge/action"
	"github.com/xraph/hookbridge/content"
	"github.com/xraph/hookbridge/deliverylog"
	"github.com/xraph/hookbridge/dispatch"
	"github.com/xraph/hookbridge/observability"
	"github.com/xraph/hookbridge/payload"
	"github.com/xraph/hookbridge/store"
	"github.com/xraph/hookbridge/transport"
	"github.com/xraph/hookbridge/trigger"
	"github.com/xraph/hookbridge/workflow"
)

// Bridge connects host content events to the workflow engine and routes the
// engine's inbound actions back to the host.
type Bridge struct {
	config    Config
	store     store.Store
	content   content.Repository
	transport transport.Transport
	site      dispatch.SiteProvider
	metrics   *observability.Metrics
	tracer    *observability.Tracer
	logger    *slog.Logger

	triggers   *trigger.Registry
	conditions *trigger.Conditions
	payloads   *payload.Builder
	log        *deliverylog.Service
	dispatcher *dispatch.Dispatcher
	actions    *action.Router
	workflows  *workflow.Client
}

// Option configures a Bridge instance.
type Option func(*Bridge) error

// New creates a new Bridge with the given options.
func New(opts ...Option) (*Bridge, error) {
	b := &Bridge{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	if b.store == nil {
		return nil, ErrNoStore
	}
	if b.content == nil {
		return nil, ErrNoContent
	}
	if b.transport == nil {
		b.transport = transport.NewHTTP()
	}
	if b.site == nil {
		b.site = dispatch.StaticSite{}
	}
	b.wireServices()
	return b, nil
}

// WithStore sets the persistence backend for settings and the delivery log.
func WithStore(s store.Store) Option {
	return func(b *Bridge) error {
		b.store = s
		return nil
	}
}

// WithContent sets the host content repository.
func WithContent(repo content.Repository) Option {
	return func(b *Bridge) error {
		b.content = repo
		return nil
	}
}

// WithTransport replaces the default net/http transport.
func WithTransport(t transport.Transport) Option {
	return func(b *Bridge) error {
		b.transport = t
		return nil
	}
}

// WithSite sets the provider of the site block added to envelopes.
func WithSite(site dispatch.SiteProvider) Option {
	return func(b *Bridge) error {
		b.site = site
		return nil
	}
}

// WithLogger sets the structured logger for the Bridge instance.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) error {
		b.logger = logger
		return nil
	}
}

// WithMetrics enables metric collection.
func WithMetrics(m *observability.Metrics) Option {
	return func(b *Bridge) error {
		b.metrics = m
		return nil
	}
}

// WithTracer enables OpenTelemetry spans.
func WithTracer(t *observability.Tracer) Option {
	return func(b *Bridge) error {
		b.tracer = t
		return nil
	}
}

// WithTriggerTimeout sets the HTTP timeout for webhook deliveries.
func WithTriggerTimeout(d time.Duration) Option {
	return func(b *Bridge) error {
		b.config.TriggerTimeout = d
		return nil
	}
}

// WithAPITimeout sets the HTTP timeout for engine management API calls.
func WithAPITimeout(d time.Duration) Option {
	return func(b *Bridge) error {
		b.config.APITimeout = d
		return nil
	}
}

// WithStrictStatusCheck makes non-2xx destination responses count as failures.
func WithStrictStatusCheck(strict bool) Option {
	return func(b *Bridge) error {
		b.config.StrictStatusCheck = strict
		return nil
	}
}
