package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"hippo-backend/internal/shared/server/respond"
	"hippo-backend/internal/shared/telemetry"
)

// Rate limit groups used by the API router.
const (
	GroupDefault = "DEFAULT"
	GroupRead    = "READ"
	GroupUpload  = "UPLOAD"
	GroupExport  = "EXPORT"
)

// RateLimitRule is a token bucket: Rate tokens per second, up to Burst.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

func (r RateLimitRule) unlimited() bool { return r.Rate <= 0 || r.Burst <= 0 }

// interval is the time one token takes to refill.
func (r RateLimitRule) interval() time.Duration {
	return time.Duration(float64(time.Second) / r.Rate)
}

// Limiter spends one token for key under rule and reports how long to wait
// when none is left.
type Limiter interface {
	Allow(ctx context.Context, key string, rule RateLimitRule) (bool, time.Duration, error)
}

type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Limiter      Limiter
}

// RateLimit throttles per user (or per client IP before login) and route
// group. A limiter error lets the request through.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = GroupDefault
	}
	return func(c *gin.Context) {
		group := cfg.DefaultGroup
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok || rule.unlimited() {
			c.Next()
			return
		}

		principal := UserIDFromContext(c)
		if principal == "" {
			principal = "ip:" + c.ClientIP()
		}
		allowed, wait, err := cfg.Limiter.Allow(c.Request.Context(), group+"|"+principal, rule)
		if err != nil {
			telemetry.Warn("ratelimit.unavailable", map[string]any{"group": group, "err": err})
			c.Next()
			return
		}
		if allowed {
			c.Next()
			return
		}

		if wait < time.Millisecond {
			wait = time.Second
		}
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests", gin.H{
			"retryAfterMs": wait.Milliseconds(),
		})
	}
}

// DefaultRules are the per-user buckets for the API.
func DefaultRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		GroupDefault: {Rate: 5, Burst: 20},
		GroupRead:    {Rate: 20, Burst: 60},
		GroupUpload:  {Rate: 1, Burst: 10},
		GroupExport:  {Rate: 0.1, Burst: 2},
	}
}

// GroupForRoute classifies a request by its matched route.
func GroupForRoute(c *gin.Context) string {
	route := c.FullPath()
	switch {
	case strings.HasPrefix(route, "/api/v1/admin/exports"):
		return GroupExport
	case c.Request.Method == http.MethodPost && (strings.HasSuffix(route, "/files") ||
		strings.HasPrefix(route, "/api/v1/documents") || strings.HasSuffix(route, "/qr")):
		return GroupUpload
	case c.Request.Method == http.MethodGet:
		return GroupRead
	}
	return GroupDefault
}

// RateLimiter keeps buckets in process memory. Used when Redis is not configured.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	now     func() time.Time
}

type rateBucket struct {
	tokens float64
	last   time.Time
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{buckets: make(map[string]*rateBucket), now: now}
}

func (l *RateLimiter) Allow(_ context.Context, key string, rule RateLimitRule) (bool, time.Duration, error) {
	if rule.unlimited() {
		return true, 0, nil
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &rateBucket{tokens: float64(rule.Burst), last: now}
		l.buckets[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(float64(rule.Burst), b.tokens+elapsed*rule.Rate)
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true, 0, nil
	}
	wait := time.Duration(math.Ceil((1 - b.tokens) / rule.Rate * 1000)) * time.Millisecond
	return false, wait, nil
}

// gcraScript implements the generic cell rate algorithm on one key holding
// the theoretical arrival time in ms. Returns 0 when allowed, else the wait in ms.
var gcraScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local interval = tonumber(ARGV[2])
local tolerance = tonumber(ARGV[3])
local tat = tonumber(redis.call('GET', KEYS[1]) or now)
if tat < now then tat = now end
local next_tat = tat + interval
local allow_at = next_tat - tolerance
if allow_at > now then
  return allow_at - now
end
redis.call('SET', KEYS[1], next_tat, 'PX', math.ceil(next_tat - now))
return 0
`)

// RedisRateLimiter shares buckets across API instances and Lambda
// invocations.
type RedisRateLimiter struct {
	client    redis.Scripter
	namespace string
	now       func() time.Time
}

func NewRedisRateLimiter(client redis.Scripter, namespace string) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, namespace: namespace, now: time.Now}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string, rule RateLimitRule) (bool, time.Duration, error) {
	if rule.unlimited() {
		return true, 0, nil
	}
	interval := rule.interval().Milliseconds()
	if interval < 1 {
		interval = 1
	}
	args := []any{l.now().UnixMilli(), interval, interval * int64(rule.Burst)}
	waitMs, err := gcraScript.Run(ctx, l.client, []string{l.namespace + ":ratelimit:" + key}, args...).Int64()
	if err != nil {
		return false, 0, err
	}
	if waitMs <= 0 {
		return true, 0, nil
	}
	return false, time.Duration(waitMs) * time.Millisecond, nil
}
