package http

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	apperrors "github.com/spec-kit/mente-aberta-api/pkg/util"
)

const limiterCleanupInterval = 5 * time.Minute

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(c *fiber.Ctx) string

// IPKey buckets requests by client IP.
func IPKey(c *fiber.Ctx) string {
	return c.IP()
}

// RateLimiter keeps one token bucket per key.
type RateLimiter struct {
	limiters    sync.Map // map[string]*rate.Limiter
	rate        rate.Limit
	burst       int
	perMinute   int
	mu          sync.Mutex
	lastCleanup time.Time
}

// NewRateLimiter allows perMinute requests per key with the given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rate:        rate.Limit(float64(perMinute) / time.Minute.Seconds()),
		burst:       burst,
		perMinute:   perMinute,
		lastCleanup: time.Now(),
	}
}

// Handler returns fiber middleware counting requests by key.
func (rl *RateLimiter) Handler(key KeyFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		k := key(c)
		if k == "" {
			return c.Next()
		}

		limiter := rl.limiter(k)
		if !limiter.Allow() {
			reservation := limiter.Reserve()
			delay := reservation.Delay()
			reservation.Cancel()

			retryAfter := max(int(delay.Seconds()), 1)
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			c.Set("X-RateLimit-Limit", strconv.Itoa(rl.perMinute))
			return apperrors.NewTooManyRequests("too many attempts, please try again later")
		}
		return c.Next()
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if limiter, ok := rl.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}
	actual, _ := rl.limiters.LoadOrStore(key, rate.NewLimiter(rl.rate, rl.burst))
	rl.maybeCleanup()
	return actual.(*rate.Limiter)
}

// maybeCleanup drops limiters whose bucket has refilled, i.e. keys that went idle.
func (rl *RateLimiter) maybeCleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastCleanup) < limiterCleanupInterval {
		return
	}
	rl.lastCleanup = time.Now()

	rl.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(rl.burst) {
			rl.limiters.Delete(key)
		}
		return true
	})
}
