package ratelimit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newFixed(perSecond int) (*Limiter, *fakeClock) {
	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	l := New(perSecond)
	l.now = clk.Now
	return l, clk
}

func TestAllow_Unlimited(t *testing.T) {
	l := New(0)
	for i := 0; i < 100; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatal("a zero rate should always allow")
		}
	}
}

func TestAllow_RateLimited(t *testing.T) {
	l, _ := newFixed(2)

	if !l.Allow("10.0.0.1") || !l.Allow("10.0.0.1") {
		t.Fatal("bucket should start full")
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("third call should be denied")
	}
	if !l.Allow("10.0.0.2") {
		t.Fatal("keys must not share buckets")
	}
}

func TestAllow_Refills(t *testing.T) {
	l, clk := newFixed(10)
	for i := 0; i < 10; i++ {
		l.Allow("k")
	}
	if l.Allow("k") {
		t.Fatal("should be denied after exhausting bucket")
	}

	clk.Advance(150 * time.Millisecond)
	if !l.Allow("k") {
		t.Fatal("should be allowed after refill")
	}
}

func TestAllow_EvictsIdleBuckets(t *testing.T) {
	l, clk := newFixed(1)

	l.Allow("k")
	clk.Advance(30 * time.Second)
	l.Allow("other")
	if n := len(l.buckets); n != 2 {
		t.Fatalf("expected 2 buckets before the sweep interval, got %d", n)
	}

	clk.Advance(sweepInterval)
	l.Allow("fresh")
	if n := len(l.buckets); n != 1 {
		t.Fatalf("expected only the fresh bucket after a sweep, got %d", n)
	}
}

func TestAllow_KeepsActiveBuckets(t *testing.T) {
	l, clk := newFixed(1)

	l.Allow("busy")
	clk.Advance(sweepInterval - time.Millisecond)
	l.Allow("busy")
	clk.Advance(time.Millisecond)
	l.Allow("other")

	if l.Allow("busy") {
		t.Fatal("an exhausted bucket must survive the sweep")
	}
}

func TestMiddleware_BucketsDoNotAccumulate(t *testing.T) {
	l, clk := newFixed(5)
	h := Middleware(l, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(ip string) {
		req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
		req.RemoteAddr = ip + ":4321"
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	for i := 0; i < 10000; i++ {
		send(fmt.Sprintf("10.%d.%d.%d", i>>16&0xff, i>>8&0xff, i&0xff))
	}
	l.mu.Lock()
	before := len(l.buckets)
	l.mu.Unlock()
	if before != 10000 {
		t.Fatalf("expected one bucket per client, got %d", before)
	}

	clk.Advance(time.Hour)
	send("192.0.2.1")

	l.mu.Lock()
	after := len(l.buckets)
	l.mu.Unlock()
	if after != 1 {
		t.Fatalf("buckets retained after an idle hour: %d", after)
	}
}

func TestConcurrentAccess(t *testing.T) {
	l, _ := newFixed(100)

	var wg sync.WaitGroup
	allowed := make(chan bool, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed <- l.Allow("k")
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for v := range allowed {
		if v {
			count++
		}
	}
	if count != 100 {
		t.Fatalf("expected exactly 100 allowed with a frozen clock, got %d", count)
	}
}

func TestMiddleware(t *testing.T) {
	l, _ := newFixed(1)
	h := Middleware(l, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
	req.RemoteAddr = "192.0.2.1:4321"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first request status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}
