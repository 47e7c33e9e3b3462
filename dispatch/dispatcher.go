package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/xraph/hookbridge/deliverylog"
	"github.com/xraph/hookbridge/internal/errs"
	"github.com/xraph/hookbridge/internal/result"
	"github.com/xraph/hookbridge/observability"
	"github.com/xraph/hookbridge/payload"
	"github.com/xraph/hookbridge/settings"
	"github.com/xraph/hookbridge/signature"
	"github.com/xraph/hookbridge/transport"
	"github.com/xraph/hookbridge/trigger"
)

// MessageNoDestination is returned when a trigger has no usable destination.
const MessageNoDestination = "no destination configured"

// MessageDelivered is returned for a completed delivery.
const MessageDelivered = "Webhook delivered"

const maxLoggedResponse = 1024

// DestinationResolver looks up where a trigger's payload goes.
type DestinationResolver interface {
	ResolveDestination(ctx context.Context, triggerID string) (*trigger.Destination, error)
}

// Recorder stores delivery attempts.
type Recorder interface {
	Record(ctx context.Context, e *deliverylog.Entry) error
}

// Deps are the collaborators a Dispatcher needs.
type Deps struct {
	Destinations DestinationResolver
	Transport    transport.Transport
	Log          Recorder
	Settings     settings.Store
	Site         SiteProvider
}

// Config holds dispatcher configuration.
type Config struct {
	TriggerTimeout time.Duration

	// StrictStatusCheck makes non-2xx responses count as failed deliveries.
	StrictStatusCheck bool

	Metrics *observability.Metrics
	Tracer  *observability.Tracer
}

// Option configures a single Dispatch call.
type Option func(*dispatchOptions)

type dispatchOptions struct {
	test bool
}

// Test marks the delivery as a manual test send.
func Test() Option {
	return func(o *dispatchOptions) { o.test = true }
}

// Dispatcher is the single path every outbound notification takes.
type Dispatcher struct {
	deps   Deps
	config Config
	logger *slog.Logger
	now    func() time.Time
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(deps Deps, cfg Config, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TriggerTimeout <= 0 {
		cfg.TriggerTimeout = 15 * time.Second
	}
	return &Dispatcher{deps: deps, config: cfg, logger: logger, now: time.Now}
}

// Dispatch delivers data for triggerID to its destination. Failures are
// reported in the result and never returned as errors.
func (d *Dispatcher) Dispatch(ctx context.Context, triggerID string, data payload.Document, opts ...Option) result.Result {
	var o dispatchOptions
	for _, opt := range opts {
		opt(&o)
	}

	dest, err := d.deps.Destinations.ResolveDestination(ctx, triggerID)
	if err != nil {
		d.logger.ErrorContext(ctx, "resolve destination failed", "trigger", triggerID, "error", err)
		return result.Fail(http.StatusInternalServerError, err.Error())
	}
	if dest == nil {
		cerr := &errs.ConfigurationError{Setting: settings.KeyWebhookURLs, Message: MessageNoDestination}
		d.logger.WarnContext(ctx, "dispatch skipped", "trigger", triggerID, "error", cerr)
		return result.Fail(http.StatusBadRequest, MessageNoDestination)
	}

	now := d.now()
	env := newEnvelope(triggerID, data)
	env.Site = d.site(ctx)
	env.Timestamp = now.Unix()
	env.WebhookName = dest.Name
	env.Test = o.test

	body, err := json.Marshal(env)
	if err != nil {
		d.logger.ErrorContext(ctx, "encode envelope failed", "trigger", triggerID, "error", err)
		return result.Fail(http.StatusInternalServerError, err.Error())
	}

	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range d.signatureHeaders(ctx, body, now) {
		headers[k] = v
	}

	d.config.Metrics.RecordFire(triggerID, o.test)
	spanCtx, span := d.config.Tracer.StartDispatchSpan(ctx, triggerID, dest.URL, o.test)
	resp, sendErr := d.deps.Transport.Post(spanCtx, dest.URL, body, headers, d.config.TriggerTimeout)

	entry := &deliverylog.Entry{
		Type:    deliverylog.TypeTrigger,
		Trigger: triggerID,
		URL:     dest.URL,
		Name:    dest.Name,
		Payload: body,
		Test:    o.test,
	}

	res := d.outcome(dest.URL, resp, sendErr, entry)

	var (
		statusCode int
		latencyMs  int64
	)
	if resp != nil {
		statusCode = resp.StatusCode
		latencyMs = int64(resp.LatencyMs)
	}
	d.config.Tracer.EndDispatchSpan(span, statusCode, latencyMs, entry.Error)
	d.config.Metrics.RecordDispatch(string(entry.Status()), float64(latencyMs)/1000)

	if err := d.deps.Log.Record(ctx, entry); err != nil {
		d.logger.WarnContext(ctx, "record delivery failed", "trigger", triggerID, "error", err)
	}

	if res.Success {
		d.logger.InfoContext(ctx, "webhook delivered",
			"trigger", triggerID,
			"url", dest.URL,
			"status_code", statusCode,
			"latency_ms", latencyMs,
			"test", o.test,
		)
	} else {
		d.logger.WarnContext(ctx, "webhook delivery failed",
			"trigger", triggerID,
			"url", dest.URL,
			"error", entry.Error,
			"test", o.test,
		)
	}
	return res
}

// outcome turns the transport result into a Result and fills the log entry.
func (d *Dispatcher) outcome(url string, resp *transport.Response, sendErr error, entry *deliverylog.Entry) result.Result {
	if sendErr != nil {
		terr := &errs.TransportError{URL: url, Err: sendErr}
		entry.Error = terr.Error()
		return result.Fail(http.StatusBadGateway, terr.Error())
	}

	entry.StatusCode = resp.StatusCode
	entry.Response = truncate(string(resp.Body), maxLoggedResponse)
	response := map[string]any{
		"status_code": resp.StatusCode,
		"body":        entry.Response,
	}

	if d.config.StrictStatusCheck && !resp.OK() {
		terr := &errs.TransportError{URL: url, StatusCode: resp.StatusCode}
		entry.Error = terr.Error()
		res := result.Fail(http.StatusBadGateway, terr.Error())
		res.Response = response
		return res
	}

	entry.Success = true
	res := result.OK(http.StatusOK, MessageDelivered)
	res.Response = response
	return res
}

func (d *Dispatcher) site(ctx context.Context) Site {
	if d.deps.Site == nil {
		return Site{}
	}
	s, err := d.deps.Site.SiteInfo(ctx)
	if err != nil {
		d.logger.WarnContext(ctx, "site info unavailable", "error", err)
		return Site{}
	}
	return s
}

func (d *Dispatcher) signatureHeaders(ctx context.Context, body []byte, now time.Time) map[string]string {
	if d.deps.Settings == nil {
		return nil
	}
	secret, err := settings.String(ctx, d.deps.Settings, settings.KeySigningSecret)
	if err != nil {
		d.logger.WarnContext(ctx, "read signing secret failed", "error", err)
		return nil
	}
	if secret == "" {
		return nil
	}
	return signature.Headers(body, secret, now)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
