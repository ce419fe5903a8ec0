package server

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Contact rate limit defaults: 5 submissions per 15 minutes per client.
const (
	DefaultRateWindow = 15 * time.Minute
	DefaultRateMax    = 5
)

// Decision is the outcome of one rate-limit check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter is a fixed-window counter keyed by client.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

var (
	_ Limiter = (*MemoryLimiter)(nil)
	_ Limiter = (*RedisLimiter)(nil)
)

type window struct {
	requests int
	resetAt  time.Time
}

// MemoryLimiter keeps windows in process memory. Expired windows are swept
// at most once per window length.
type MemoryLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	now       func() time.Time
	entries   map[string]*window
	nextSweep time.Time
}

// NewMemoryLimiter allows max requests per window per key.
func NewMemoryLimiter(windowLen time.Duration, max int) *MemoryLimiter {
	return &MemoryLimiter{
		window:  windowLen,
		max:     max,
		now:     time.Now,
		entries: make(map[string]*window),
	}
}

// Allow counts a request for key. A denied request does not extend the
// window.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.entries[key]
	if ok && now.After(w.resetAt) {
		delete(l.entries, key)
		ok = false
	}
	if !ok {
		w = &window{requests: 1, resetAt: now.Add(l.window)}
		l.entries[key] = w
		return Decision{Allowed: true, Remaining: l.max - 1, ResetAt: w.resetAt}, nil
	}
	if w.requests >= l.max {
		return Decision{Allowed: false, ResetAt: w.resetAt}, nil
	}
	w.requests++
	return Decision{Allowed: true, Remaining: l.max - w.requests, ResetAt: w.resetAt}, nil
}

// Len returns the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for k, w := range l.entries {
		if now.After(w.resetAt) {
			delete(l.entries, k)
		}
	}
	l.nextSweep = now.Add(l.window)
}

// RedisLimiter shares windows across processes with INCR and PEXPIRE.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	window time.Duration
	max    int
	now    func() time.Time
}

// NewRedisLimiter allows max requests per window per key. Keys are stored
// under prefix + "ratelimit:".
func NewRedisLimiter(client *redis.Client, prefix string, window time.Duration, max int) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, window: window, max: max, now: time.Now}
}

// Allow counts a request for key. The first request of a window sets the
// expiry; a key found without one is given a fresh window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := l.prefix + "ratelimit:" + key

	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := l.client.PExpire(ctx, k, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	ttl, err := l.client.PTTL(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit ttl: %w", err)
	}
	if ttl < 0 {
		ttl = l.window
		if err := l.client.PExpire(ctx, k, ttl).Err(); err != nil {
			return Decision{}, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	d := Decision{ResetAt: l.now().Add(ttl)}
	if n > int64(l.max) {
		return d, nil
	}
	d.Allowed = true
	d.Remaining = l.max - int(n)
	return d, nil
}

// ClientIP returns the first X-Forwarded-For entry, else echo's RealIP.
func ClientIP(c echo.Context) string {
	if fwd := c.Request().Header.Get(echo.HeaderXForwardedFor); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := c.RealIP(); ip != "" {
		return ip
	}
	return "unknown"
}
