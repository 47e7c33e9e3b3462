// Package ratelimit throttles inbound webhook calls per client.
package ratelimit

import (
	"sync"
	"time"
)

// sweepInterval is how often Allow drops idle buckets.
const sweepInterval = time.Minute

// Limiter is a per-key token bucket. Every key gets the same rate, and the
// burst equals the per-second rate.
type Limiter struct {
	mu      sync.Mutex
	rate    float64 // tokens per second
	buckets map[string]*bucket
	now     func() time.Time

	lastSweep time.Time
}

type bucket struct {
	tokens   float64
	lastFill time.Time
}

// New creates a limiter allowing perSecond requests per key. A rate of 0 or
// less disables limiting.
func New(perSecond int) *Limiter {
	return &Limiter{
		rate:    float64(perSecond),
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow reports whether key may proceed, consuming a token if so.
func (l *Limiter) Allow(key string) bool {
	if l == nil || l.rate <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	switch now := l.now(); {
	case l.lastSweep.IsZero():
		l.lastSweep = now
	case now.Sub(l.lastSweep) >= sweepInterval:
		l.prune()
		l.lastSweep = now
	}

	b := l.bucket(key)
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// prune drops buckets that have refilled completely. Callers hold l.mu.
func (l *Limiter) prune() {
	for key, b := range l.buckets {
		l.refill(b)
		if b.tokens >= l.rate {
			delete(l.buckets, key)
		}
	}
}

// bucket returns the refilled bucket for key. Callers hold l.mu.
func (l *Limiter) bucket(key string) *bucket {
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.rate, lastFill: l.now()}
		l.buckets[key] = b
		return b
	}
	l.refill(b)
	return b
}

func (l *Limiter) refill(b *bucket) {
	now := l.now()
	b.tokens += now.Sub(b.lastFill).Seconds() * l.rate
	if b.tokens > l.rate {
		b.tokens = l.rate
	}
	b.lastFill = now
}
