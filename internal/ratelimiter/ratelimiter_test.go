package ratelimiter

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(perSecond float64, burst uint) (*KeyedLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	l := New(perSecond, burst)
	l.now = clock.Now
	return l, clock
}

// TestConsumeExhaustsBurst verifies that a key is blocked after burst failures.
func TestConsumeExhaustsBurst(t *testing.T) {
	l, _ := newTestLimiter(1, 3)

	for i := 0; i < 3; i++ {
		if !l.Consume("alice") {
			t.Fatalf("consume %d should succeed within burst", i)
		}
	}

	if l.Consume("alice") {
		t.Fatal("consume should fail after burst exhausted")
	}
	if l.Allow("alice") {
		t.Fatal("Allow should report false after burst exhausted")
	}
}

// TestKeysAreIndependent verifies that one key's failures never throttle another.
func TestKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, 1)

	l.Consume("alice")
	if l.Allow("alice") {
		t.Fatal("alice should be throttled")
	}
	if !l.Allow("bob") {
		t.Fatal("bob should not be throttled")
	}
	if !l.Consume("bob") {
		t.Fatal("bob should have a token")
	}
}

// TestReplenish verifies tokens return over time.
func TestReplenish(t *testing.T) {
	l, clock := newTestLimiter(2, 1)

	l.Consume("alice")
	if l.Allow("alice") {
		t.Fatal("alice should be throttled")
	}

	clock.Advance(600 * time.Millisecond)

	if !l.Allow("alice") {
		t.Fatal("alice should have a token after replenishment")
	}
}

// TestUnlimited verifies that a zero rate never throttles.
func TestUnlimited(t *testing.T) {
	l := New(0, 0)

	for i := 0; i < 1000; i++ {
		if !l.Consume("alice") {
			t.Fatalf("consume %d should succeed when unlimited", i)
		}
	}
	if l.Len() != 0 {
		t.Fatalf("unlimited limiter should not track keys, got %d", l.Len())
	}
}

// TestResetAndPrune verifies bucket removal.
func TestResetAndPrune(t *testing.T) {
	l, clock := newTestLimiter(1, 1)

	l.Consume("alice")
	l.Consume("bob")
	if l.Len() != 2 {
		t.Fatalf("expected 2 keys, got %d", l.Len())
	}

	l.Reset("alice")
	if !l.Allow("alice") {
		t.Fatal("alice should be allowed after reset")
	}

	clock.Advance(11 * time.Minute)
	if removed := l.Prune(); removed != 1 {
		t.Fatalf("expected 1 pruned key, got %d", removed)
	}
	if l.Len() != 0 {
		t.Fatalf("expected no keys after prune, got %d", l.Len())
	}
}

// TestConcurrentConsume verifies thread safety.
func TestConcurrentConsume(t *testing.T) {
	l := New(1, 50)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Consume("alice") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed < 50 || allowed > 51 {
		t.Fatalf("expected about 50 allowed, got %d", allowed)
	}
}
