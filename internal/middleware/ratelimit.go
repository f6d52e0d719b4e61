package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"attendance/console/foundation/web"
	"attendance/console/internal/auth"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per staff member, or per client IP
// for unauthenticated requests.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
}

// NewRateLimiter allows perMinute requests per key with the given burst.
// Idle keys are swept until ctx is done.
func NewRateLimiter(ctx context.Context, perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	if burst <= 0 {
		burst = 1
	}

	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		idle:     3 * time.Minute,
	}
	go rl.sweep(ctx)
	return rl
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) sweep(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rl.mu.Lock()
			for k, v := range rl.visitors {
				if time.Since(v.lastSeen) > rl.idle {
					delete(rl.visitors, k)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Limit rejects requests over the limit with 429 and a Retry-After header.
// It must run after Authenticate to key by staff member.
func (rl *RateLimiter) Limit() web.Middleware {
	return func(handler web.Handler) web.Handler {
		return func(c *web.Context) error {
			key := "ip:" + c.ClientIP()
			if claims, err := auth.GetClaims(c.Ctx); err == nil {
				key = "staff:" + strconv.Itoa(claims.UserId)
			}

			r := rl.get(key).Reserve()
			if delay := r.Delay(); delay > 0 {
				r.Cancel()
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				return c.RespondError(web.NewRequestError(errors.New("too many requests"), http.StatusTooManyRequests))
			}

			return handler(c)
		}
	}
}
