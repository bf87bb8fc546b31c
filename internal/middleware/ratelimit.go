// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/medassist/internal/core"
	"github.com/carterperez-dev/medassist/internal/metrics"
)

type RateLimitConfig struct {
	// Scope prefixes every key and labels the metric, e.g. "api" or "auth".
	Scope   string
	Limit   redis_rate.Limit
	KeyFunc func(*http.Request) string
}

// RateLimiter counts requests in redis when a client is configured. Without
// one, or when a redis call fails, it counts in process.
type RateLimiter struct {
	shared *redis_rate.Limiter
	local  *localLimiter
	cfg    RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}
	if cfg.Scope == "" {
		cfg.Scope = "api"
	}

	rl := &RateLimiter{
		local: newLocalLimiter(),
		cfg:   cfg,
	}
	if rdb != nil {
		rl.shared = redis_rate.NewLimiter(rdb)
	}
	return rl
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		key := "ratelimit:" + rl.cfg.Scope + ":" + rl.cfg.KeyFunc(r)
		res, backend := rl.allow(r, key)

		setRateLimitHeaders(w, res, rl.cfg.Limit)

		if res.Allowed == 0 {
			metrics.ObserveRateLimited(rl.cfg.Scope, backend)
			writeRateLimitExceeded(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(r *http.Request, key string) (*redis_rate.Result, string) {
	if rl.shared != nil {
		res, err := rl.shared.Allow(r.Context(), key, rl.cfg.Limit)
		if err == nil {
			return res, "redis"
		}
		slog.DebugContext(r.Context(), "redis rate limit unavailable, counting locally",
			"error", err,
			"scope", rl.cfg.Scope,
		)
	}

	return rl.local.allow(key, rl.cfg.Limit, time.Now()), "local"
}

// KeyByIP identifies the client by the last X-Forwarded-For hop, then
// X-Real-IP, then the socket address.
func KeyByIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		return "ip:" + strings.TrimSpace(hops[len(hops)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return "ip:" + xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(
		time.Now().Add(res.ResetAfter).Unix(), 10))
	h.Set("RateLimit-Policy",
		fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
	h.Set("RateLimit",
		fmt.Sprintf("%d;t=%d", res.Remaining, int(res.ResetAfter.Seconds())))
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := max(int(res.RetryAfter.Seconds()), 1)

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSONError(w, core.NewAppError(
		core.ErrRateLimited,
		fmt.Sprintf("rate limit exceeded, retry after %d seconds", retryAfter),
		http.StatusTooManyRequests,
		"RATE_LIMITED",
	))
}

const (
	sweepEvery = 1024
	bucketTTL  = 10 * time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localLimiter keeps one token bucket per key. Idle buckets are swept
// inline every sweepEvery calls.
type localLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	calls   int
}

func newLocalLimiter() *localLimiter {
	return &localLimiter{buckets: make(map[string]*bucket)}
}

func (l *localLimiter) allow(
	key string,
	limit redis_rate.Limit,
	now time.Time,
) *redis_rate.Result {
	interval := limit.Period / time.Duration(max(limit.Rate, 1))

	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.calls%sweepEvery == 0 {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(interval), limit.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	res := &redis_rate.Result{
		Limit:      limit,
		RetryAfter: -1,
		ResetAfter: interval,
	}
	if b.limiter.AllowN(now, 1) {
		res.Allowed = 1
	} else {
		res.RetryAfter = interval
	}
	res.Remaining = max(int(b.limiter.TokensAt(now)), 0)

	return res
}

func (l *localLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > bucketTTL {
			delete(l.buckets, key)
		}
	}
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return PerWindow(rate, burst, time.Minute)
}

// PerWindow allows rate requests per window with the given burst. A
// non-positive window counts per minute.
func PerWindow(rate, burst int, window time.Duration) redis_rate.Limit {
	if window <= 0 {
		window = time.Minute
	}
	return redis_rate.Limit{
		Rate:   rate,
		Burst:  burst,
		Period: window,
	}
}
