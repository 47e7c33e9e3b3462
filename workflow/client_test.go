package workflow_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xraph/hookbridge/dispatch"
	"github.com/xraph/hookbridge/settings"
	"github.com/xraph/hookbridge/store/memory"
	"github.com/xraph/hookbridge/transport"
	"github.com/xraph/hookbridge/workflow"
)

type engine struct {
	srv      *httptest.Server
	lastKey  string
	lastBody map[string]any
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	e := &engine{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /api/v1/workflows", func(w http.ResponseWriter, r *http.Request) {
		e.lastKey = r.Header.Get(workflow.HeaderAPIKey)
		w.Write([]byte(`{"data":[{"id":"wf1","name":"Welcome"}]}`))
	})
	mux.HandleFunc("POST /api/v1/workflows/{id}/execute", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &e.lastBody)
		w.Write([]byte(`{"executionId":"ex-` + r.PathValue("id") + `"}`))
	})
	mux.HandleFunc("GET /api/v1/executions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "missing" {
			http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"finished":true}`))
	})
	e.srv = httptest.NewServer(mux)
	t.Cleanup(e.srv.Close)
	return e
}

func newClient(t *testing.T, baseURL string) (*workflow.Client, *memory.Store) {
	t.Helper()
	st := memory.New()
	ctx := context.Background()
	if baseURL != "" {
		if err := settings.Set(ctx, st, settings.KeyEngineURL, baseURL); err != nil {
			t.Fatal(err)
		}
	}
	if err := settings.Set(ctx, st, settings.KeyEngineAPIKey, "engine-key"); err != nil {
		t.Fatal(err)
	}
	site := dispatch.StaticSite{Name: "Example", URL: "https://example.test"}
	return workflow.NewClient(st, transport.NewHTTP(), site, workflow.Config{}, nil), st
}

func TestTestConnection(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	c, _ := newClient(t, "")
	res := c.TestConnection(ctx, "")
	if res.Success || res.Message != "n8n URL is not set" || res.Status != http.StatusBadRequest {
		t.Errorf("no url: %+v", res)
	}

	res = c.TestConnection(ctx, e.srv.URL)
	if !res.Success || res.Message != "Successfully connected to n8n" {
		t.Errorf("override url: %+v", res)
	}

	res = c.TestConnection(ctx, e.srv.URL+"/api/v1/executions/missing")
	if res.Success || res.Message != "Failed to connect to n8n: Invalid response code" {
		t.Errorf("bad status: %+v", res)
	}
}

func TestListWorkflows(t *testing.T) {
	e := newEngine(t)
	c, _ := newClient(t, e.srv.URL)

	res := c.ListWorkflows(context.Background())
	if !res.Success {
		t.Fatalf("list workflows: %+v", res)
	}
	if e.lastKey != "engine-key" {
		t.Errorf("api key header = %q", e.lastKey)
	}
	body, ok := res.Fields["workflows"].(map[string]any)
	if !ok || body["data"] == nil {
		t.Errorf("workflows = %v", res.Fields["workflows"])
	}
}

func TestExecuteWorkflow(t *testing.T) {
	e := newEngine(t)
	c, _ := newClient(t, e.srv.URL+"/")
	ctx := context.Background()

	res := c.ExecuteWorkflow(ctx, "", nil)
	if res.Message != "Missing workflow_id parameter" || res.Status != http.StatusBadRequest {
		t.Errorf("missing id: %+v", res)
	}

	res = c.ExecuteWorkflow(ctx, "wf1", map[string]any{"order": float64(7)})
	if !res.Success {
		t.Fatalf("execute: %+v", res)
	}
	if res.Fields["execution_id"] != "ex-wf1" {
		t.Errorf("execution_id = %v", res.Fields["execution_id"])
	}
	site, ok := e.lastBody["site"].(map[string]any)
	if !ok || site["name"] != "Example" {
		t.Errorf("site not injected: %v", e.lastBody)
	}
	if e.lastBody["order"] != float64(7) {
		t.Errorf("data not forwarded: %v", e.lastBody)
	}
}

func TestExecutionStatus(t *testing.T) {
	e := newEngine(t)
	c, _ := newClient(t, e.srv.URL)
	ctx := context.Background()

	res := c.ExecutionStatus(ctx, "ex-1")
	if !res.Success {
		t.Fatalf("status: %+v", res)
	}

	res = c.ExecutionStatus(ctx, "missing")
	if res.Success || res.Message != "API request failed with code 404" {
		t.Errorf("missing execution: %+v", res)
	}
}

func TestRequestWithoutEngineURL(t *testing.T) {
	c, _ := newClient(t, "")
	res := c.ListWorkflows(context.Background())
	if res.Success || res.Message != "n8n URL is not configured" {
		t.Errorf("no engine url: %+v", res)
	}
}
