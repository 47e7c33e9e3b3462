package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xraph/hookbridge/store/memory"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Server.Addr != ":8080" || c.Store.Driver != "memory" {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.Dispatch.TriggerTimeout != 15*time.Second || c.Dispatch.APITimeout != 30*time.Second {
		t.Errorf("unexpected timeouts: %+v", c.Dispatch)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := writeFile(t, "hookbridge.yaml", `
server:
  addr: ":9000"
  rate_limit: 3
store:
  driver: sqlite
  path: /tmp/x.db
dispatch:
  trigger_timeout: 5s
site:
  name: Example
`)
	t.Setenv("HOOKBRIDGE_SERVER_ADDR", ":9999")
	t.Setenv("HOOKBRIDGE_LOG_FORMAT", "json")

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Server.Addr != ":9999" {
		t.Errorf("env should override file, got %q", c.Server.Addr)
	}
	if c.Server.RateLimit != 3 || c.Store.Driver != "sqlite" || c.Store.Path != "/tmp/x.db" {
		t.Errorf("file values not applied: %+v", c)
	}
	if c.Dispatch.TriggerTimeout != 5*time.Second {
		t.Errorf("trigger_timeout = %v", c.Dispatch.TriggerTimeout)
	}
	if c.Log.Format != "json" || c.Site.Name != "Example" {
		t.Errorf("log/site = %+v %+v", c.Log, c.Site)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := writeFile(t, ".env", "HOOKBRIDGE_TEST_DOTENV=loaded\n")
	t.Setenv("HOOKBRIDGE_TEST_DOTENV", "")
	os.Unsetenv("HOOKBRIDGE_TEST_DOTENV")

	if err := loadEnvFile(path, true); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("HOOKBRIDGE_TEST_DOTENV"); got != "loaded" {
		t.Fatalf("dotenv variable = %q", got)
	}

	if err := loadEnvFile(filepath.Join(t.TempDir(), ".env"), false); err != nil {
		t.Fatalf("implicit missing .env should be ignored: %v", err)
	}
	if err := loadEnvFile(filepath.Join(t.TempDir(), ".env"), true); err == nil {
		t.Fatal("explicit missing .env should fail")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(LogConfig{Level: "warn", Format: "json"}, &buf)

	l.Info("hidden")
	l.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &rec); err != nil {
		t.Fatalf("expected one JSON record, got %q", out)
	}
	if rec["msg"] != "shown" || rec["k"] != "v" {
		t.Errorf("record = %v", rec)
	}

	if !newLogger(LogConfig{Level: "bogus"}, &buf).Enabled(context.Background(), slog.LevelInfo) {
		t.Error("unknown level should fall back to info")
	}
}

func TestFixturesSeed(t *testing.T) {
	path := writeFile(t, "fixtures.yaml", `
commerce: true
kinds:
  - name: event
    label: Event
users:
  - id: 1
    username: ada
    email: ada@example.test
    roles: [editor]
    meta:
      nickname: [Ada]
posts:
  - id: 10
    title: Hello
    content: World
    status: publish
    author_id: 1
    categories:
      - {id: 3, name: News, slug: news}
comments:
  - id: 20
    post_id: 10
    author: Eve
    content: Nice
    approved: "1"
orders:
  - id: 30
    number: "1001"
    status: processing
    total: 12.5
    items:
      - {id: 1, name: Mug, quantity: 1, total: 12.5}
`)
	f, err := LoadFixtures(path)
	if err != nil {
		t.Fatal(err)
	}
	repo := memory.NewContent("https://example.test")
	f.Seed(repo)

	ctx := context.Background()
	p, err := repo.GetPost(ctx, 10)
	if err != nil || p.Title != "Hello" || p.AuthorID != 1 {
		t.Fatalf("post = %+v, %v", p, err)
	}
	terms, _ := repo.PostTerms(ctx, 10, "category")
	if len(terms) != 1 || terms[0].Slug != "news" {
		t.Errorf("categories = %v", terms)
	}
	meta, _ := repo.UserMeta(ctx, 1)
	if meta["nickname"][0] != "Ada" {
		t.Errorf("user meta = %v", meta)
	}
	if c, err := repo.GetComment(ctx, 20); err != nil || c.Author != "Eve" {
		t.Errorf("comment = %+v, %v", c, err)
	}
	if !repo.CommerceActive(ctx) {
		t.Error("commerce should be active")
	}
	if o, err := repo.GetOrder(ctx, 30); err != nil || len(o.Items) != 1 {
		t.Errorf("order = %+v, %v", o, err)
	}
	kinds, _ := repo.ContentKinds(ctx)
	if kinds[len(kinds)-1].Name != "event" {
		t.Errorf("kinds = %v", kinds)
	}
}

func TestPrintValue(t *testing.T) {
	v := map[string]any{"success": true, "items": []string{"a"}}

	outputFormat = "yaml"
	var buf bytes.Buffer
	if err := printValue(&buf, v); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "success: true") || !strings.Contains(buf.String(), "- a") {
		t.Errorf("yaml output = %q", buf.String())
	}

	outputFormat = "json"
	t.Cleanup(func() { outputFormat = "yaml" })
	buf.Reset()
	if err := printValue(&buf, v); err != nil {
		t.Fatal(err)
	}
	var back map[string]any
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("json output = %q", buf.String())
	}
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	if _, err := openStore(context.Background(), StoreConfig{Driver: "cassandra"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestOpenStoreSQLite(t *testing.T) {
	s, err := openStore(context.Background(), StoreConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "hb.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.SetSetting(context.Background(), "debug_mode", []byte(`true`)); err != nil {
		t.Fatal(err)
	}
}

func TestKeygenCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"keygen", "-o", "json"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		outputFormat = "yaml"
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	var creds map[string]string
	if err := json.Unmarshal(out.Bytes(), &creds); err != nil {
		t.Fatalf("output = %q", out.String())
	}
	if !strings.HasPrefix(creds["api_key"], "hbk_") || !strings.HasPrefix(creds["signing_secret"], "whsec_") {
		t.Errorf("credentials = %v", creds)
	}
}
