package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xraph/hookbridge"
	"github.com/xraph/hookbridge/api"
	"github.com/xraph/hookbridge/dispatch"
	"github.com/xraph/hookbridge/settings"
	"github.com/xraph/hookbridge/store/memory"
	"github.com/xraph/hookbridge/trigger"
)

type fixture struct {
	srv   *httptest.Server
	hooks *httptest.Server
	store *memory.Store
	repo  *memory.Content
	got   chan map[string]any
}

// testServer creates a Handler backed by memory stores plus a destination
// server that captures deliveries.
func testServer(t *testing.T, opts ...api.Option) *fixture {
	t.Helper()

	f := &fixture{
		store: memory.New(),
		repo:  memory.NewContent("https://example.test"),
		got:   make(chan map[string]any, 10),
	}
	f.hooks = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var env map[string]any
		_ = json.NewDecoder(r.Body).Decode(&env)
		f.got <- env
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(f.hooks.Close)

	b, err := hookbridge.New(
		hookbridge.WithStore(f.store),
		hookbridge.WithContent(f.repo),
		hookbridge.WithSite(dispatch.StaticSite{Name: "Example"}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(opts) == 0 {
		opts = []api.Option{api.WithAuthorizer(api.AllowAll())}
	}
	f.srv = httptest.NewServer(api.NewHandler(b, opts...))
	t.Cleanup(f.srv.Close)
	return f
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

// --- Webhook ---

func TestWebhook_DeniedWithoutStoredKey(t *testing.T) {
	f := testServer(t)

	resp := doJSON(t, "POST", f.srv.URL+"/webhook", map[string]any{"action": "create_post"},
		map[string]string{"X-N8N-API-KEY": ""})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestWebhook_CreatePost(t *testing.T) {
	f := testServer(t)
	if err := settings.Set(context.Background(), f.store, settings.KeyAPIKey, "secret-key"); err != nil {
		t.Fatal(err)
	}

	resp := doJSON(t, "POST", f.srv.URL+"/webhook", map[string]any{"action": "create_post"},
		map[string]string{"X-N8N-API-KEY": "wrong"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong key: expected 401, got %d", resp.StatusCode)
	}

	resp = doJSON(t, "POST", f.srv.URL+"/webhook", map[string]any{"action": "create_post", "content": "x"},
		map[string]string{"X-N8N-API-KEY": "secret-key"})
	var bad map[string]any
	decodeBody(t, resp, &bad)
	if resp.StatusCode != http.StatusBadRequest || bad["message"] != "Missing required parameters" {
		t.Fatalf("missing title: %d %v", resp.StatusCode, bad)
	}

	resp = doJSON(t, "POST", f.srv.URL+"/webhook", map[string]any{
		"action":  "create_post",
		"title":   "From engine",
		"content": "Body",
	}, map[string]string{"X-N8N-API-KEY": "secret-key"})
	var body map[string]any
	decodeBody(t, resp, &body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", resp.StatusCode, body)
	}
	if body["success"] != true || body["message"] != "Post created successfully" {
		t.Errorf("body = %v", body)
	}
	if _, ok := body["post_id"].(float64); !ok {
		t.Errorf("post_id = %v", body["post_id"])
	}
	if resp.Header.Get(api.HeaderRequestID) == "" {
		t.Error("missing request id header")
	}
}

func TestWebhook_NonStringActionIsInvalid(t *testing.T) {
	f := testServer(t)
	if err := settings.Set(context.Background(), f.store, settings.KeyAPIKey, "k"); err != nil {
		t.Fatal(err)
	}
	hdr := map[string]string{"X-N8N-API-KEY": "k"}

	cases := []struct {
		body map[string]any
		want string
	}{
		{map[string]any{"action": 5}, "Invalid action"},
		{map[string]any{"action": true}, "Invalid action"},
		{map[string]any{"action": nil}, "Missing action parameter"},
		{map[string]any{"title": "x"}, "Missing action parameter"},
	}
	for _, tc := range cases {
		resp := doJSON(t, "POST", f.srv.URL+"/webhook", tc.body, hdr)
		var body map[string]any
		decodeBody(t, resp, &body)
		if resp.StatusCode != http.StatusBadRequest || body["message"] != tc.want {
			t.Errorf("%v: got %d %v, want 400 %q", tc.body, resp.StatusCode, body, tc.want)
		}
	}
}

func TestWebhook_RateLimited(t *testing.T) {
	f := testServer(t, api.WithAuthorizer(api.AllowAll()), api.WithRateLimit(1))
	if err := settings.Set(context.Background(), f.store, settings.KeyAPIKey, "k"); err != nil {
		t.Fatal(err)
	}
	hdr := map[string]string{"X-N8N-API-KEY": "k"}

	resp := doJSON(t, "POST", f.srv.URL+"/webhook", map[string]any{"action": "nope"}, hdr)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("first call: expected 400, got %d", resp.StatusCode)
	}
	resp = doJSON(t, "POST", f.srv.URL+"/webhook", map[string]any{"action": "nope"}, hdr)
	resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second call: expected 429, got %d", resp.StatusCode)
	}
}

// --- Admin ---

func TestAdmin_RequiresAuthorizer(t *testing.T) {
	f := testServer(t, api.WithAuthorizer(api.BearerToken("admin-token")))

	resp := doJSON(t, "GET", f.srv.URL+"/settings", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	resp = doJSON(t, "GET", f.srv.URL+"/settings", nil, map[string]string{"Authorization": "Bearer admin-token"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestSettings_UpdateAndRead(t *testing.T) {
	f := testServer(t)

	resp := doJSON(t, "POST", f.srv.URL+"/settings", map[string]any{
		"engine_url":       "https://engine.example",
		"enabled_triggers": []string{"post_save"},
		"webhook_urls":     map[string]any{"post_save": "https://hook.example/abc"},
		"debug_mode":       true,
	}, nil)
	var upd map[string]any
	decodeBody(t, resp, &upd)
	if resp.StatusCode != http.StatusOK || upd["message"] != "Settings updated successfully" {
		t.Fatalf("update: %d %v", resp.StatusCode, upd)
	}

	resp = doJSON(t, "GET", f.srv.URL+"/settings", nil, nil)
	var snap struct {
		EngineURL       string                    `json:"engine_url"`
		EnabledTriggers []string                  `json:"enabled_triggers"`
		WebhookURLs     map[string]map[string]any `json:"webhook_urls"`
		DebugMode       bool                      `json:"debug_mode"`
	}
	decodeBody(t, resp, &snap)
	if snap.EngineURL != "https://engine.example" || !snap.DebugMode {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.WebhookURLs["post_save"]["url"] != "https://hook.example/abc" {
		t.Errorf("legacy destination not normalized: %v", snap.WebhookURLs)
	}
}

func TestSettings_RejectsInvalid(t *testing.T) {
	f := testServer(t)

	resp := doJSON(t, "POST", f.srv.URL+"/settings", map[string]any{"engine_url": "not a url"}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad engine_url: expected 400, got %d", resp.StatusCode)
	}

	resp = doJSON(t, "POST", f.srv.URL+"/settings", map[string]any{
		"webhook_urls": map[string]any{"post_save": "ftp://nope"},
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad webhook url: expected 400, got %d", resp.StatusCode)
	}
}

func TestTriggers_ListAndTest(t *testing.T) {
	f := testServer(t)
	ctx := context.Background()
	if err := settings.Set(ctx, f.store, settings.KeyWebhookURLs, map[string]any{
		trigger.UserRegister: map[string]any{"url": f.hooks.URL, "name": "Signups"},
	}); err != nil {
		t.Fatal(err)
	}

	resp := doJSON(t, "GET", f.srv.URL+"/triggers", nil, nil)
	var list []map[string]any
	decodeBody(t, resp, &list)
	if len(list) != 3 {
		t.Fatalf("expected 3 built-in triggers, got %d", len(list))
	}

	resp = doJSON(t, "POST", f.srv.URL+"/triggers/user_register/test", map[string]any{"username": "synthetic"}, nil)
	var res map[string]any
	decodeBody(t, resp, &res)
	if resp.StatusCode != http.StatusOK || res["success"] != true {
		t.Fatalf("test trigger: %d %v", resp.StatusCode, res)
	}

	env := <-f.got
	if env["test"] != true || env["webhook_name"] != "Signups" {
		t.Errorf("envelope = %v", env)
	}

	resp = doJSON(t, "POST", f.srv.URL+"/triggers/nope/test", map[string]any{}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown trigger: expected 404, got %d", resp.StatusCode)
	}
}

func TestEvents_FireAndLogs(t *testing.T) {
	f := testServer(t)
	ctx := context.Background()
	if err := settings.Set(ctx, f.store, settings.KeyEnabledTriggers, []string{trigger.PostSave}); err != nil {
		t.Fatal(err)
	}
	if err := settings.Set(ctx, f.store, settings.KeyWebhookURLs, map[string]any{trigger.PostSave: f.hooks.URL}); err != nil {
		t.Fatal(err)
	}
	if err := settings.Set(ctx, f.store, settings.KeyDebugMode, true); err != nil {
		t.Fatal(err)
	}

	resp := doJSON(t, "POST", f.srv.URL+"/events/post_save", map[string]any{"id": 5, "title": "T"}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("fire: expected 200, got %d", resp.StatusCode)
	}
	env := <-f.got
	if env["trigger"] != "post_save" {
		t.Errorf("envelope = %v", env)
	}

	resp = doJSON(t, "GET", f.srv.URL+"/logs?type=trigger&status=success", nil, nil)
	var entries []map[string]any
	decodeBody(t, resp, &entries)
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}

	resp = doJSON(t, "DELETE", f.srv.URL+"/logs", nil, nil)
	resp.Body.Close()
	resp = doJSON(t, "GET", f.srv.URL+"/logs", nil, nil)
	decodeBody(t, resp, &entries)
	if len(entries) != 0 {
		t.Fatalf("expected empty log after clear, got %d", len(entries))
	}
}

func TestWorkflows_NoEngineURL(t *testing.T) {
	f := testServer(t)

	resp := doJSON(t, "GET", f.srv.URL+"/workflows", nil, nil)
	var res map[string]any
	decodeBody(t, resp, &res)
	if resp.StatusCode != http.StatusInternalServerError || res["success"] != false {
		t.Fatalf("expected failure, got %d %v", resp.StatusCode, res)
	}

	resp = doJSON(t, "POST", f.srv.URL+"/execute-workflow", map[string]any{}, nil)
	decodeBody(t, resp, &res)
	if resp.StatusCode != http.StatusBadRequest || res["message"] != "Missing workflow_id parameter" {
		t.Fatalf("missing workflow id: %d %v", resp.StatusCode, res)
	}
}
