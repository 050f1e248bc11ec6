package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dailyquest-app/dailyquest-backend/internal/database"
	"github.com/dailyquest-app/dailyquest-backend/pkg/clientip"
)

const (
	// RateLimitWindow is the fixed counting window
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the maximum number of requests allowed in the window
	RateLimitMaxRequests = 60
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
	// BlockedIPKeyPrefix is the Redis key prefix for blocked IPs
	BlockedIPKeyPrefix = "blocked_ip:"
	// BlockedIPDuration is how long an IP stays blocked
	BlockedIPDuration = 24 * time.Hour
)

// RateLimitMiddleware provides Redis-backed fixed-window rate limiting with
// temporary IP blocking for clients that keep hammering past the limit.
// Shared across instances, unlike the in-process token buckets in
// security.go; Redis errors fail open so the API stays up without Redis.
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ipAddress := clientip.RealClientIP(r)
		ctx := context.Background()

		blockedKey := BlockedIPKeyPrefix + ipAddress
		if blocked, err := database.RedisClient.Exists(ctx, blockedKey).Result(); err == nil && blocked > 0 {
			tooMany(w, "Your IP has been temporarily blocked due to excessive requests. Please try again later.")
			return
		}

		rateLimitKey := RateLimitKeyPrefix + ipAddress

		count, err := database.RedisClient.Incr(ctx, rateLimitKey).Result()
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			database.RedisClient.Expire(ctx, rateLimitKey, RateLimitWindow)
		}

		if count > RateLimitMaxRequests {
			// Block IPs that blow well past the limit within a window.
			if count > RateLimitMaxRequests*2 {
				database.RedisClient.Set(ctx, blockedKey, "1", BlockedIPDuration)
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(RateLimitWindow.Seconds())))
			tooMany(w, "Rate limit exceeded. Please slow down.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func tooMany(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"success":false,"message":"` + message + `"}`))
}
