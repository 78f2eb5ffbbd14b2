package api

import (
	"sync"

	"asterbot/internal/config"

	"golang.org/x/time/rate"
)

const defaultBurst = 5

// rateLimiter token bucket на каждый ключ клиента. RPS 0 выключает ограничение.
type rateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

func newRateLimiter(cfg config.APIRateLimitConfig) *rateLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	return &rateLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(cfg.RPS),
		burst:   burst,
	}
}

func (l *rateLimiter) allow(key string) bool {
	if l.limit <= 0 {
		return true
	}
	return l.forKey(key).Allow()
}

func (l *rateLimiter) forKey(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[key] = b
	}
	return b
}
