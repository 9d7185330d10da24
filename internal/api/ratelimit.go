package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/outreach-platform/internal/auth"
	"github.com/ignite/outreach-platform/internal/pkg/httputil"
)

// rateLimitScript increments the window counter and sets its expiry on
// first hit, atomically. Returns the post-increment count.
var rateLimitScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// rateLimiter is a fixed-window per-user request limiter backed by Redis.
// When Redis is unavailable requests pass through; availability wins over
// strict enforcement.
type rateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func newRateLimiter(client *redis.Client, perMinute int) *rateLimiter {
	return &rateLimiter{client: client, limit: perMinute, window: time.Minute}
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.client == nil || rl.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		subject := r.RemoteAddr
		if user := auth.CurrentUser(r.Context()); user != nil {
			subject = user.ID.String()
		}
		key := fmt.Sprintf("ratelimit:%s:%d", subject, time.Now().Unix()/int64(rl.window.Seconds()))

		count, err := rateLimitScript.Run(r.Context(), rl.client,
			[]string{key}, int(rl.window.Seconds())).Int()
		if err != nil {
			log.Printf("[api] rate limit check failed: %v", err)
			next.ServeHTTP(w, r)
			return
		}
		if count > rl.limit {
			w.Header().Set("Retry-After", "60")
			httputil.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
