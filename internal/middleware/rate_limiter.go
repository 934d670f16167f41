package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter answers whether the caller identified by key may proceed. The
// router throttles credential endpoints with it so password guessing cannot
// run unmetered.
type RateLimiter interface {
	Allow(key string) bool
}

// anonymousKey buckets requests whose client address could not be determined.
const anonymousKey = "unknown"

type visitor struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per key, normally a client IP, and
// evicts buckets idle for longer than ttl.
type ipRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

// NewIPRateLimiter allows up to requests events per window for each key, with
// burst extra capacity on top. Non-positive arguments fall back to the most
// restrictive sane value.
func NewIPRateLimiter(requests int, window time.Duration, burst int, ttl time.Duration) RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Second
	}
	if burst <= 0 {
		burst = 1
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &ipRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (l *ipRateLimiter) Allow(key string) bool {
	if key == "" {
		key = anonymousKey
	}

	now := l.now()

	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{bucket: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	for k, stale := range l.visitors {
		if now.Sub(stale.lastSeen) > l.ttl {
			delete(l.visitors, k)
		}
	}
	l.mu.Unlock()

	return v.bucket.Allow()
}

// WithNowFunc overrides the time source, for tests.
func (l *ipRateLimiter) WithNowFunc(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
