package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/libvisit-api/pkg/cache"
	appErrors "github.com/noah-isme/libvisit-api/pkg/errors"
	"github.com/noah-isme/libvisit-api/pkg/response"
)

// Limiter decides whether one more request for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// bucketSweepInterval bounds how often idle buckets are pruned.
const bucketSweepInterval = time.Minute

// TokenBucket is an in-memory per-key limiter refilled at perMinute tokens a minute.
// Buckets idle long enough to be full again are dropped.
type TokenBucket struct {
	capacity int
	rate     int
	now      func() time.Time

	mu        sync.Mutex
	state     map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	tokens int
	last   time.Time
}

// NewTokenBucket creates a limiter with capacity tokens. capacity <= 0 uses perMinute.
func NewTokenBucket(capacity, perMinute int) *TokenBucket {
	if capacity <= 0 {
		capacity = perMinute
	}
	return &TokenBucket{capacity: capacity, rate: perMinute, now: time.Now, state: make(map[string]*bucket)}
}

func (l *TokenBucket) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)
	b, ok := l.state[key]
	if !ok {
		l.state[key] = &bucket{tokens: l.capacity - 1, last: now}
		return true, nil
	}
	refill := int(now.Sub(b.last).Minutes() * float64(l.rate))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens <= 0 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

// sweep removes buckets that would have refilled to capacity; a fresh bucket behaves the same.
func (l *TokenBucket) sweep(now time.Time) {
	if l.rate <= 0 || now.Sub(l.lastSweep) < bucketSweepInterval {
		return
	}
	l.lastSweep = now
	idle := time.Duration(float64(time.Minute) * float64(l.capacity) / float64(l.rate))
	for key, b := range l.state {
		if now.Sub(b.last) >= idle {
			delete(l.state, key)
		}
	}
}

// Len reports how many client buckets are tracked.
func (l *TokenBucket) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.state)
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then redis.call('PEXPIRE', KEYS[1], ARGV[1]) end
return current`)

// RedisWindow is a fixed one-minute window limiter shared across instances.
type RedisWindow struct {
	client redis.Scripter
	limit  int
	window time.Duration
}

// NewRedisWindow allows limit requests per key per window.
func NewRedisWindow(client redis.Scripter, limit int, window time.Duration) *RedisWindow {
	if window <= 0 {
		window = time.Minute
	}
	return &RedisWindow{client: client, limit: limit, window: window}
}

func (l *RedisWindow) Allow(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	n, err := fixedWindowScript.Run(ctx, l.client, []string{cache.Key("ratelimit", key)}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit script: %w", err)
	}
	return n <= int64(l.limit), nil
}

// RateLimit enforces limiter per client IP. The IP comes from gin's ClientIP, so
// forwarding headers only count when the engine trusts the sending proxy.
// Limiter errors let the request through.
func RateLimit(limiter Limiter, limit int, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		allowed, err := limiter.Allow(c.Request.Context(), ip)
		if err != nil {
			log.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		if !allowed {
			c.Header("Retry-After", "60")
			response.Error(c, appErrors.ErrRateLimited)
			return
		}
		c.Next()
	}
}
