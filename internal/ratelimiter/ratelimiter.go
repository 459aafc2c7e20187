package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyedLimiter holds one token bucket per key (typically a username).
//
// It is used to throttle failed logins: each failure consumes a token for
// the offending key, and once the bucket is empty Allow reports false until
// tokens are replenished. Successful logins never consume tokens.
//
// Buckets idle for longer than the idle timeout are dropped by Prune, which
// callers may invoke periodically to bound memory.
//
// Thread safety:
// All methods are safe for concurrent use.
type KeyedLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idle    time.Duration
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a KeyedLimiter refilling perSecond tokens per second with the
// given burst capacity.
//
// Special cases:
//   - perSecond = 0: unlimited, Allow always returns true
//   - burst = 0: treated as 1
func New(perSecond float64, burst uint) *KeyedLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst == 0 {
		burst = 1
	}

	return &KeyedLimiter{
		limit:   limit,
		burst:   int(burst),
		idle:    10 * time.Minute,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow reports whether key still has a token available without consuming it.
func (k *KeyedLimiter) Allow(key string) bool {
	if k.limit == rate.Inf {
		return true
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	b, ok := k.buckets[key]
	if !ok {
		return true
	}
	return b.limiter.TokensAt(k.now()) >= 1
}

// Consume takes one token from key's bucket, creating the bucket on first
// use. It returns false if no token was available.
func (k *KeyedLimiter) Consume(key string) bool {
	if k.limit == rate.Inf {
		return true
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Reset forgets key's bucket.
func (k *KeyedLimiter) Reset(key string) {
	k.mu.Lock()
	delete(k.buckets, key)
	k.mu.Unlock()
}

// Prune drops buckets not touched within the idle timeout and returns how
// many were removed.
func (k *KeyedLimiter) Prune() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	cutoff := k.now().Add(-k.idle)
	removed := 0
	for key, b := range k.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(k.buckets, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (k *KeyedLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}
