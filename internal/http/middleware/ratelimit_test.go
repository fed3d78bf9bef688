package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, rate float64, burst int) (*RateLimiter, *time.Time) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	rl := NewRateLimiter(ctx, rate, burst)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

func TestRateLimiterBurstThenRefill(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, 2)

	if !rl.Allow("1.1.1.1") || !rl.Allow("1.1.1.1") {
		t.Fatalf("expected burst of 2 to be allowed")
	}
	if rl.Allow("1.1.1.1") {
		t.Fatalf("expected third request to be limited")
	}
	if !rl.Allow("2.2.2.2") {
		t.Fatalf("expected other IPs to have their own bucket")
	}

	*clock = clock.Add(time.Second)
	if !rl.Allow("1.1.1.1") {
		t.Fatalf("expected a token after one second")
	}
}

func TestRateLimiterEvictsIdleBuckets(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, 1)
	rl.Allow("1.1.1.1")

	*clock = clock.Add(11 * time.Minute)
	rl.evict(10 * time.Minute)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.buckets) != 0 {
		t.Fatalf("expected idle bucket to be evicted, have %d", len(rl.buckets))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 0.5, 1)
	handler := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/chat/sessions", nil)
		req.Header.Set("X-Real-Ip", "10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := send(); rec.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}
	rec := send()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After 2, got %q", got)
	}
}
