// Package workflow talks to the workflow engine's management API.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/xraph/hookbridge/dispatch"
	"github.com/xraph/hookbridge/internal/errs"
	"github.com/xraph/hookbridge/internal/result"
	"github.com/xraph/hookbridge/observability"
	"github.com/xraph/hookbridge/settings"
	"github.com/xraph/hookbridge/transport"
)

// HeaderAPIKey carries the engine API key on management calls. Inbound
// webhook calls use the same header.
const HeaderAPIKey = "X-N8N-API-KEY"

const apiPrefix = "api/v1/"

// APIError is a management API call answered with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with code %d", e.StatusCode)
}

// Config holds client configuration.
type Config struct {
	Timeout time.Duration
	Tracer  *observability.Tracer
}

// Client is the engine management API client. The base URL and key are
// read from settings on every call.
type Client struct {
	settings  settings.Store
	transport transport.Transport
	site      dispatch.SiteProvider
	config    Config
	logger    *slog.Logger
}

// NewClient creates a workflow client.
func NewClient(s settings.Store, tr transport.Transport, site dispatch.SiteProvider, cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{settings: s, transport: tr, site: site, config: cfg, logger: logger}
}

// TestConnection checks the engine health endpoint. overrideURL replaces the
// configured engine URL when non-empty.
func (c *Client) TestConnection(ctx context.Context, overrideURL string) result.Result {
	base := strings.TrimSpace(overrideURL)
	if base == "" {
		var err error
		base, err = settings.String(ctx, c.settings, settings.KeyEngineURL)
		if err != nil {
			return result.Fail(http.StatusInternalServerError, err.Error())
		}
	}
	if base == "" {
		return result.Fail(http.StatusBadRequest, "n8n URL is not set")
	}

	resp, err := c.transport.Get(ctx, strings.TrimRight(base, "/")+"/healthz", nil, c.config.Timeout)
	if err != nil {
		c.logger.WarnContext(ctx, "engine health check failed", "url", base, "error", err)
		return result.Fail(http.StatusInternalServerError, "Failed to connect to n8n: "+err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "engine health check failed", "url", base, "status_code", resp.StatusCode)
		return result.Fail(http.StatusInternalServerError, "Failed to connect to n8n: Invalid response code")
	}
	return result.OK(http.StatusOK, "Successfully connected to n8n")
}

// ListWorkflows returns the engine's workflows under "workflows".
func (c *Client) ListWorkflows(ctx context.Context) result.Result {
	body, err := c.request(ctx, http.MethodGet, "workflows", nil)
	if err != nil {
		return result.Fail(http.StatusInternalServerError, err.Error())
	}
	return result.Result{Success: true, Status: http.StatusOK}.With("workflows", body)
}

// ExecuteWorkflow runs a workflow with data plus the site block.
func (c *Client) ExecuteWorkflow(ctx context.Context, workflowID string, data map[string]any) result.Result {
	workflowID = strings.TrimSpace(workflowID)
	if workflowID == "" {
		return result.Fail(http.StatusBadRequest, "Missing workflow_id parameter")
	}

	req := make(map[string]any, len(data)+1)
	for k, v := range data {
		req[k] = v
	}
	req["site"] = c.siteInfo(ctx)

	body, err := c.request(ctx, http.MethodPost, "workflows/"+workflowID+"/execute", req)
	if err != nil {
		return result.Fail(http.StatusInternalServerError, err.Error())
	}

	var executionID any
	if m, ok := body.(map[string]any); ok {
		executionID = m["executionId"]
	}
	return result.Result{Success: true, Status: http.StatusOK}.
		With("execution_id", executionID).
		With("data", body)
}

// ExecutionStatus returns an execution's state under "status".
func (c *Client) ExecutionStatus(ctx context.Context, executionID string) result.Result {
	body, err := c.request(ctx, http.MethodGet, "executions/"+executionID, nil)
	if err != nil {
		return result.Fail(http.StatusInternalServerError, err.Error())
	}
	return result.Result{Success: true, Status: http.StatusOK}.With("status", body)
}

// request calls {engine_url}/api/v1/{endpoint} and decodes the JSON reply.
func (c *Client) request(ctx context.Context, method, endpoint string, payload any) (any, error) {
	base, err := settings.String(ctx, c.settings, settings.KeyEngineURL)
	if err != nil {
		return nil, err
	}
	if base == "" {
		return nil, &errs.ConfigurationError{Setting: settings.KeyEngineURL, Message: "n8n URL is not configured"}
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	url := base + apiPrefix + endpoint

	key, err := settings.String(ctx, c.settings, settings.KeyEngineAPIKey)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{"Content-Type": "application/json"}
	if key != "" {
		headers[HeaderAPIKey] = key
	}

	ctx, span := c.config.Tracer.StartWorkflowSpan(ctx, method, endpoint)

	var resp *transport.Response
	switch method {
	case http.MethodPost:
		var body []byte
		body, err = json.Marshal(payload)
		if err != nil {
			c.config.Tracer.EndWorkflowSpan(span, 0, err)
			return nil, fmt.Errorf("workflow: encode request: %w", err)
		}
		resp, err = c.transport.Post(ctx, url, body, headers, c.config.Timeout)
	default:
		resp, err = c.transport.Get(ctx, url, headers, c.config.Timeout)
	}
	if err != nil {
		c.config.Tracer.EndWorkflowSpan(span, 0, err)
		c.logger.ErrorContext(ctx, "engine API request failed", "endpoint", endpoint, "error", err)
		return nil, &errs.TransportError{URL: url, Err: err}
	}
	if !resp.OK() {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
		c.config.Tracer.EndWorkflowSpan(span, resp.StatusCode, apiErr)
		c.logger.ErrorContext(ctx, "engine API request failed",
			"endpoint", endpoint,
			"status_code", resp.StatusCode,
			"body", apiErr.Body,
		)
		return nil, apiErr
	}
	c.config.Tracer.EndWorkflowSpan(span, resp.StatusCode, nil)

	if len(resp.Body) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("workflow: decode response: %w", err)
	}
	return out, nil
}

func (c *Client) siteInfo(ctx context.Context) dispatch.Site {
	if c.site == nil {
		return dispatch.Site{}
	}
	s, err := c.site.SiteInfo(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "site info unavailable", "error", err)
		return dispatch.Site{}
	}
	return s
}
