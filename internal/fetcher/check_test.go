package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/sbm/internal/model"
)

func newStatusServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/gone":
			w.WriteHeader(http.StatusGone)
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		case "/get-only":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckURLs(t *testing.T) {
	srv := newStatusServer(t)
	bookmarks := []model.Bookmark{
		{ID: "1", URL: srv.URL + "/ok"},
		{ID: "2", URL: srv.URL + "/gone"},
		{ID: "3", URL: srv.URL + "/missing"},
		{ID: "4", URL: srv.URL + "/broken"},
		{ID: "5", URL: srv.URL + "/get-only"},
	}

	var calls atomic.Int32
	results := CheckURLs(context.Background(), bookmarks, CheckOptions{
		Concurrency: 3,
		Timeout:     2 * time.Second,
		OnProgress: func(completed, total int) {
			calls.Add(1)
			assert.Check(t, is.Equal(total, 5))
		},
	})

	assert.Equal(t, len(results), 5)
	assert.Equal(t, results[0].Status, Healthy)
	assert.Equal(t, results[1].Status, Dead)
	assert.Equal(t, results[2].Status, Dead)
	assert.Equal(t, results[2].StatusCode, http.StatusNotFound)
	assert.Equal(t, results[3].Status, Unreachable)
	assert.Equal(t, results[3].Error, "Internal Server Error")
	assert.Equal(t, results[4].Status, Healthy)
	assert.Equal(t, results[0].Bookmark.ID, "1")
	assert.Equal(t, int(calls.Load()), 5)

	assert.DeepEqual(t, Summarize(results), Summary{Healthy: 2, Dead: 2, Unreachable: 1})
	assert.DeepEqual(t, DeadIDs(results), []string{"2", "3"})
}

func TestCheckURLs_Empty(t *testing.T) {
	assert.Assert(t, is.Nil(CheckURLs(context.Background(), nil, CheckOptions{})))
}

func TestCheckURLs_Canceled(t *testing.T) {
	srv := newStatusServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := CheckURLs(ctx, []model.Bookmark{{URL: srv.URL + "/ok"}}, CheckOptions{Concurrency: 1})
	assert.Equal(t, results[0].Status, Unreachable)
	assert.Equal(t, results[0].Error, "Canceled")
}

func TestIsExcludedDomain(t *testing.T) {
	excluded := []string{"GitHub.com"}
	assert.Assert(t, isExcludedDomain("https://github.com/me/private", excluded))
	assert.Assert(t, isExcludedDomain("https://gist.github.com/x", excluded))
	assert.Assert(t, !isExcludedDomain("https://notgithub.com/x", excluded))
	assert.Assert(t, !isExcludedDomain("::bad", excluded))
}

func TestNormalizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errors.New("dial tcp: lookup nope.invalid: no such host"), "DNS failure"},
		{errors.New("Client.Timeout exceeded while awaiting headers"), "Timeout"},
		{context.DeadlineExceeded, "Timeout"},
		{context.Canceled, "Canceled"},
		{errors.New("connect: connection refused"), "Connection refused"},
		{errors.New("x509: certificate signed by unknown authority"), "TLS/certificate error"},
		{errors.New("tls: handshake failure"), "TLS error"},
		{errors.New("something odd"), "something odd"},
	}
	for _, tt := range tests {
		assert.Check(t, is.Equal(normalizeError(tt.err), tt.want))
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, Healthy.String(), "healthy")
	assert.Equal(t, Dead.String(), "dead")
	assert.Equal(t, Unreachable.String(), "unreachable")
}
