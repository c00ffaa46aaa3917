package middleware

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit rejects requests with 429 once limiter runs out of tokens.
// A nil limiter disables limiting.
func RateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewLimiter returns a limiter for perSecond requests with the given burst,
// or nil when either is not positive.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 || burst <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
