package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(rate, burst float64) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	l := New(rate, burst)
	l.now = clock.now
	l.last = clock.now()
	return l, clock
}

func TestNew_Defaults(t *testing.T) {
	l := New(0, 0)
	if l.rate != 10 {
		t.Errorf("expected default rate 10, got %v", l.rate)
	}
	if l.burst != 10 {
		t.Errorf("expected burst raised to rate, got %v", l.burst)
	}
	if l.tokens != l.burst {
		t.Errorf("expected full bucket, got %v", l.tokens)
	}
}

func TestLimiter_AllowBurstThenRefill(t *testing.T) {
	l, clock := newTestLimiter(2, 3)

	for i := 0; i < 3; i++ {
		if !l.Allow() {
			t.Fatalf("request %d should be allowed within burst", i)
		}
	}
	if l.Allow() {
		t.Fatal("request beyond burst should be rejected")
	}

	clock.advance(500 * time.Millisecond)
	if !l.Allow() {
		t.Fatal("one token should be refilled after 500ms at 2 req/sec")
	}
	if l.Allow() {
		t.Fatal("only one token should be refilled")
	}

	clock.advance(time.Hour)
	l.mu.Lock()
	l.refill()
	got := l.tokens
	l.mu.Unlock()
	if got != 3 {
		t.Errorf("tokens should be capped at burst, got %v", got)
	}
}

func TestLimiter_WaitImmediate(t *testing.T) {
	l := New(100, 100)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLimiter_WaitBlocksUntilToken(t *testing.T) {
	l := New(50, 1)
	if !l.Allow() {
		t.Fatal("first request should be allowed")
	}

	start := time.Now()
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("Wait returned too early: %v", elapsed)
	}
}

func TestLimiter_WaitContextCancelled(t *testing.T) {
	l, _ := newTestLimiter(1, 1)
	l.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestKeyed_SeparateBuckets(t *testing.T) {
	k := NewKeyed(1, 1)

	if k.Get("balance") != k.Get("balance") {
		t.Fatal("same key should return the same limiter")
	}
	if !k.Get("balance").Allow() {
		t.Fatal("balance bucket should have a token")
	}
	if k.Get("balance").Allow() {
		t.Fatal("balance bucket should be empty")
	}
	if !k.Get("merit").Allow() {
		t.Fatal("merit bucket must not share tokens with balance")
	}
}

func TestKeyed_Wait(t *testing.T) {
	k := NewKeyed(100, 100)
	throttled, err := k.Wait(context.Background(), "balance")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if throttled {
		t.Error("full bucket must not throttle")
	}
}

func TestKeyed_WaitReportsThrottle(t *testing.T) {
	k := NewKeyed(50, 1)
	if throttled, _ := k.Wait(context.Background(), "merit"); throttled {
		t.Fatal("first request should take the burst token")
	}

	throttled, err := k.Wait(context.Background(), "merit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !throttled {
		t.Error("second request should wait for a refill")
	}
}
