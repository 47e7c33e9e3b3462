// Package api provides the HTTP surface of the bridge: the inbound webhook
// the workflow engine calls, and the admin routes.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xraph/hookbridge"
	"github.com/xraph/hookbridge/ratelimit"
)

// HeaderRequestID carries the request id in and out.
const HeaderRequestID = "X-Request-ID"

// Authorizer decides whether a request may use the admin routes.
type Authorizer func(r *http.Request) bool

// AllowAll authorizes every request.
func AllowAll() Authorizer {
	return func(*http.Request) bool { return true }
}

// BearerToken authorizes requests carrying "Authorization: Bearer <token>".
// An empty token authorizes nothing.
func BearerToken(token string) Authorizer {
	return func(r *http.Request) bool {
		if token == "" {
			return false
		}
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		return ok && subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1
	}
}

// Option configures a Handler.
type Option func(*Handler)

// WithAuthorizer guards the admin routes. Without one they deny every request.
func WithAuthorizer(a Authorizer) Option {
	return func(h *Handler) { h.authorize = a }
}

// WithRateLimit limits inbound webhook calls per client IP.
func WithRateLimit(perSecond int) Option {
	return func(h *Handler) { h.limiter = ratelimit.New(perSecond) }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// Handler is the root HTTP handler.
type Handler struct {
	bridge    *hookbridge.Bridge
	authorize Authorizer
	limiter   *ratelimit.Limiter
	logger    *slog.Logger
	mux       *http.ServeMux
}

// NewHandler creates the HTTP handler for b.
func NewHandler(b *hookbridge.Bridge, opts ...Option) *Handler {
	h := &Handler{
		bridge: b,
		logger: slog.Default(),
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.registerRoutes()
	return h
}

func (h *Handler) registerRoutes() {
	// Inbound engine calls
	h.mux.Handle("POST /webhook", ratelimit.Middleware(h.limiter, ratelimit.ClientIP, h.tooManyRequests)(
		http.HandlerFunc(h.handleWebhook)))

	// Settings
	h.mux.HandleFunc("GET /settings", h.admin(h.getSettings))
	h.mux.HandleFunc("POST /settings", h.admin(h.updateSettings))

	// Engine management
	h.mux.HandleFunc("POST /test-connection", h.admin(h.testConnection))
	h.mux.HandleFunc("GET /workflows", h.admin(h.listWorkflows))
	h.mux.HandleFunc("POST /execute-workflow", h.admin(h.executeWorkflow))
	h.mux.HandleFunc("GET /workflow-status/{execution_id}", h.admin(h.workflowStatus))

	// Triggers
	h.mux.HandleFunc("GET /triggers", h.admin(h.listTriggers))
	h.mux.HandleFunc("POST /triggers/{id}/test", h.admin(h.testTrigger))
	h.mux.HandleFunc("POST /events/{trigger}", h.admin(h.fireEvent))

	// Delivery log
	h.mux.HandleFunc("GET /logs", h.admin(h.listLogs))
	h.mux.HandleFunc("DELETE /logs", h.admin(h.clearLogs))
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.withMiddleware(h.mux).ServeHTTP(w, r)
}

func (h *Handler) withMiddleware(next http.Handler) http.Handler {
	return h.requestID(h.panicRecovery(h.logging(next)))
}

type requestIDKey struct{}

// RequestID returns the request id stored by the middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func (h *Handler) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		h.logger.InfoContext(r.Context(), "api request",
			"request_id", RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (h *Handler) panicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.ErrorContext(r.Context(), "panic recovered",
					"request_id", RequestID(r.Context()),
					"error", rec,
					"stack", string(debug.Stack()),
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// admin wraps an admin route with the authorizer.
func (h *Handler) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.authorize == nil || !h.authorize(r) {
			writeError(w, http.StatusUnauthorized, "Sorry, you are not allowed to do that.")
			return
		}
		next(w, r)
	}
}

func (h *Handler) tooManyRequests(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, hookbridge.Result{Message: "Too many requests"})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// JSON helpers.

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best effort
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, hookbridge.Result{Message: msg})
}

func writeResult(w http.ResponseWriter, res hookbridge.Result) {
	writeJSON(w, res.HTTPStatus(), res)
}

// decodeJSON decodes an optional JSON object body. An empty body leaves v unchanged.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// queryParam returns a query parameter value, or empty string if not present.
func queryParam(r *http.Request, key string) string {
	return r.URL.Query().Get(key)
}
