package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/juju/ratelimit"
	"gotest.tools/v3/assert"
)

func TestRateLimit(t *testing.T) {
	bucket := ratelimit.NewBucketWithQuantum(time.Hour, 2, 2)
	h := RateLimit(bucket)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/message", nil))
		codes[i] = rec.Code
	}
	assert.DeepEqual(t, codes, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests})
}

func TestNewBucket(t *testing.T) {
	assert.Assert(t, NewBucket(0, 10) == nil)

	b := NewBucket(5, 0)
	assert.Assert(t, b != nil)
	assert.Equal(t, b.Capacity(), int64(1))
}
