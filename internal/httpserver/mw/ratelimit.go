package mw

import (
	"net/http"

	"github.com/juju/ratelimit"
)

// RateLimit rejects requests with 429 once bucket is empty. The bucket is
// shared by every client; the bridge only listens on loopback.
func RateLimit(bucket *ratelimit.Bucket) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bucket.TakeAvailable(1) == 0 {
				w.Header().Set("Retry-After", "1")
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewBucket returns a bucket refilled at rate tokens per second holding at
// most burst tokens, or nil when rate is not positive.
func NewBucket(rate float64, burst int) *ratelimit.Bucket {
	if rate <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return ratelimit.NewBucketWithRate(rate, int64(burst))
}
