package middleware

import (
	"testing"
	"time"
)

func TestIPRateLimiterBurst(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Hour, 3, time.Hour)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("203.0.113.1") {
			t.Fatalf("request %d should be within the burst", i+1)
		}
	}
	if limiter.Allow("203.0.113.1") {
		t.Fatal("request beyond the burst should be denied")
	}
}

func TestIPRateLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Hour, 1, time.Hour)

	if !limiter.Allow("203.0.113.1") {
		t.Fatal("first key should be allowed")
	}
	if limiter.Allow("203.0.113.1") {
		t.Fatal("first key should now be throttled")
	}
	if !limiter.Allow("203.0.113.2") {
		t.Fatal("a different key must have its own budget")
	}
}

func TestIPRateLimiterExpiresIdleVisitors(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Hour, 1, time.Minute).(*ipRateLimiter)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter.WithNowFunc(func() time.Time { return now })

	limiter.Allow("203.0.113.1")
	if len(limiter.visitors) != 1 {
		t.Fatalf("expected one tracked visitor, got %d", len(limiter.visitors))
	}

	now = now.Add(2 * time.Minute)
	limiter.Allow("203.0.113.2")
	if _, ok := limiter.visitors["203.0.113.1"]; ok {
		t.Fatal("idle visitor should have been evicted")
	}
}

func TestIPRateLimiterEmptyKey(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Hour, 1, time.Hour)

	if !limiter.Allow("") {
		t.Fatal("empty key should fall back to a shared bucket")
	}
	if limiter.Allow("") {
		t.Fatal("shared bucket should throttle the second anonymous request")
	}
}
