package hookbridge_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/xraph/hookbridge"
	"github.com/xraph/hookbridge/action"
	"github.com/xraph/hookbridge/content"
	"github.com/xraph/hookbridge/deliverylog"
	"github.com/xraph/hookbridge/dispatch"
	"github.com/xraph/hookbridge/payload"
	"github.com/xraph/hookbridge/settings"
	"github.com/xraph/hookbridge/store/memory"
	"github.com/xraph/hookbridge/transport"
	"github.com/xraph/hookbridge/trigger"
)

type sent struct {
	url  string
	body map[string]any
}

type recorder struct {
	mu   sync.Mutex
	sent []sent
}

func (r *recorder) Post(_ context.Context, url string, body []byte, _ map[string]string, _ time.Duration) (*transport.Response, error) {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.sent = append(r.sent, sent{url: url, body: doc})
	r.mu.Unlock()
	return &transport.Response{StatusCode: http.StatusOK}, nil
}

func (r *recorder) Get(context.Context, string, map[string]string, time.Duration) (*transport.Response, error) {
	return nil, errors.New("unexpected GET")
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func (r *recorder) last(t *testing.T) sent {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		t.Fatal("nothing sent")
	}
	return r.sent[len(r.sent)-1]
}

type env struct {
	bridge *hookbridge.Bridge
	store  *memory.Store
	repo   *memory.Content
	tr     *recorder
}

func ctx() context.Context { return context.Background() }

func setup(t *testing.T) *env {
	t.Helper()
	st := memory.New()
	repo := memory.NewContent("https://example.test")
	tr := &recorder{}
	b, err := hookbridge.New(
		hookbridge.WithStore(st),
		hookbridge.WithContent(repo),
		hookbridge.WithTransport(tr),
		hookbridge.WithSite(dispatch.StaticSite{Name: "Example", URL: "https://example.test"}),
	)
	if err != nil {
		t.Fatal(err)
	}
	return &env{bridge: b, store: st, repo: repo, tr: tr}
}

func (e *env) configure(t *testing.T, enabled []string, dests map[string]any) {
	t.Helper()
	if err := settings.Set(ctx(), e.store, settings.KeyEnabledTriggers, enabled); err != nil {
		t.Fatal(err)
	}
	if err := settings.Set(ctx(), e.store, settings.KeyWebhookURLs, dests); err != nil {
		t.Fatal(err)
	}
}

func TestNewRequiresStoreAndContent(t *testing.T) {
	if _, err := hookbridge.New(); !errors.Is(err, hookbridge.ErrNoStore) {
		t.Errorf("expected ErrNoStore, got %v", err)
	}
	if _, err := hookbridge.New(hookbridge.WithStore(memory.New())); !errors.Is(err, hookbridge.ErrNoContent) {
		t.Errorf("expected ErrNoContent, got %v", err)
	}
}

func TestPostSavedDelivers(t *testing.T) {
	e := setup(t)
	e.configure(t, []string{trigger.PostSave}, map[string]any{trigger.PostSave: "https://hook.example/abc"})
	id := e.repo.AddPost(content.Post{Title: "Hello", Status: "publish", Type: "post"})

	res := e.bridge.PostSaved(ctx(), id, true)
	if !res.Success {
		t.Fatalf("PostSaved: %+v", res)
	}
	s := e.tr.last(t)
	if s.url != "https://hook.example/abc" || s.body["trigger"] != trigger.PostSave {
		t.Fatalf("unexpected delivery %+v", s)
	}
	data := s.body["data"].(map[string]any)
	if data["title"] != "Hello" || data["is_update"] != true {
		t.Errorf("data = %v", data)
	}
}

func TestPostSavedSkipsDraftsAndRevisions(t *testing.T) {
	e := setup(t)
	e.configure(t, []string{trigger.PostSave}, map[string]any{trigger.PostSave: "https://hook.example/abc"})

	draft := e.repo.AddPost(content.Post{Title: "d", Status: content.StatusAutoDraft, Type: "post"})
	rev := e.repo.AddPost(content.Post{Title: "r", Status: "inherit", Type: content.TypeRevision})

	for _, id := range []int64{draft, rev} {
		res := e.bridge.PostSaved(ctx(), id, false)
		if res.Success || res.Message != hookbridge.MessagePostSkipped {
			t.Errorf("post %d: %+v", id, res)
		}
	}
	if e.tr.count() != 0 {
		t.Errorf("sent %d deliveries, want 0", e.tr.count())
	}
}

func TestPostSavedCustomKind(t *testing.T) {
	e := setup(t)
	e.repo.RegisterKind(content.Kind{Name: "book", Label: "Book"})
	bookTrigger := trigger.SaveTriggerFor("book")
	e.configure(t, []string{trigger.PostSave, bookTrigger}, map[string]any{
		trigger.PostSave: "https://hook.example/posts",
		bookTrigger:      "https://hook.example/books",
	})
	id := e.repo.AddPost(content.Post{Title: "Dune", Status: "publish", Type: "book"})

	res := e.bridge.PostSaved(ctx(), id, false)
	if !res.Success {
		t.Fatalf("PostSaved: %+v", res)
	}
	if s := e.tr.last(t); s.url != "https://hook.example/books" || s.body["trigger"] != bookTrigger {
		t.Errorf("unexpected delivery %+v", s)
	}
}

func TestFireDisabledTrigger(t *testing.T) {
	e := setup(t)
	e.configure(t, nil, map[string]any{trigger.UserRegister: "https://hook.example/u"})
	id := e.repo.AddUser(content.User{Username: "ada"})

	res := e.bridge.UserRegistered(ctx(), id)
	if res.Success || res.Message != hookbridge.MessageTriggerDisabled {
		t.Fatalf("expected disabled, got %+v", res)
	}
	if e.tr.count() != 0 {
		t.Error("disabled trigger must not deliver")
	}
}

func TestFireWithoutDestination(t *testing.T) {
	e := setup(t)
	e.configure(t, []string{trigger.CommentPost}, map[string]any{})

	res := e.bridge.CommentPosted(ctx(), 1, 1)
	if res.Success || res.Message != dispatch.MessageNoDestination {
		t.Fatalf("expected no destination, got %+v", res)
	}
	if e.tr.count() != 0 {
		t.Error("transport must not be called")
	}
}

func TestFireCondition(t *testing.T) {
	e := setup(t)
	e.configure(t, []string{trigger.PostSave}, map[string]any{
		trigger.PostSave: map[string]any{
			"url":       "https://hook.example/published",
			"condition": `data.status == "publish"`,
		},
	})

	draft := e.repo.AddPost(content.Post{Title: "wip", Status: "draft", Type: "post"})
	res := e.bridge.PostSaved(ctx(), draft, false)
	if res.Success || res.Message != hookbridge.MessageConditionNotMet {
		t.Fatalf("expected condition not met, got %+v", res)
	}

	pub := e.repo.AddPost(content.Post{Title: "live", Status: "publish", Type: "post"})
	if res := e.bridge.PostSaved(ctx(), pub, false); !res.Success {
		t.Fatalf("expected delivery, got %+v", res)
	}
	if e.tr.count() != 1 {
		t.Errorf("deliveries = %d, want 1", e.tr.count())
	}
}

func TestFireUnknownTrigger(t *testing.T) {
	e := setup(t)
	res := e.bridge.Fire(ctx(), "no_such_trigger", payload.Document{})
	if res.Success || res.Message != hookbridge.MessageUnknownTrigger {
		t.Fatalf("expected unknown trigger, got %+v", res)
	}
}

func TestOrderCreatedRequiresCommerce(t *testing.T) {
	e := setup(t)
	res := e.bridge.OrderCreated(ctx(), 1)
	if res.Success || res.Message != hookbridge.MessageCommerceInactive {
		t.Fatalf("expected commerce inactive, got %+v", res)
	}
}

func TestTestTriggerIgnoresEnablement(t *testing.T) {
	e := setup(t)
	e.configure(t, nil, map[string]any{trigger.UserRegister: "https://hook.example/u"})

	supplied := map[string]any{"username": "synthetic"}
	res := e.bridge.TestTrigger(ctx(), trigger.UserRegister, supplied)
	if !res.Success {
		t.Fatalf("TestTrigger: %+v", res)
	}
	s := e.tr.last(t)
	if s.body["test"] != true {
		t.Errorf("test flag = %v", s.body["test"])
	}
	if data := s.body["data"].(map[string]any); data["username"] != "synthetic" {
		t.Errorf("data = %v", data)
	}
}

func TestReceiveRecordsAction(t *testing.T) {
	e := setup(t)
	if err := settings.Set(ctx(), e.store, settings.KeyDebugMode, true); err != nil {
		t.Fatal(err)
	}

	res := e.bridge.Receive(ctx(), action.CreateUser, action.Params{
		"username": "ada",
		"email":    "ada@example.test",
		"password": "hunter2",
	})
	if !res.Success {
		t.Fatalf("Receive: %+v", res)
	}

	entries, err := e.bridge.Log().List(ctx(), deliverylog.Filter{Type: deliverylog.TypeAction})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	var logged map[string]any
	if err := json.Unmarshal(entries[0].Payload, &logged); err != nil {
		t.Fatal(err)
	}
	if logged["password"] == "hunter2" {
		t.Error("password must not be logged")
	}
	if entries[0].StatusCode != http.StatusCreated || entries[0].Trigger != action.CreateUser {
		t.Errorf("entry = %+v", entries[0])
	}
}
