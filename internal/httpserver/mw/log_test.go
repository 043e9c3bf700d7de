package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gotest.tools/v3/assert"

	"github.com/nikbrunner/sbm/internal/logger"
)

func TestLog(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	h := Log(logger.FromZap(zap.New(core)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/message", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	assert.Equal(t, len(entries), 2)
	assert.Equal(t, entries[0].Level, zap.InfoLevel)
	fields := entries[0].ContextMap()
	assert.Equal(t, fields["status"], int64(200))
	assert.Equal(t, fields["bytes"], int64(5))
	assert.Equal(t, fields["path"], "/api/message")
	assert.Equal(t, entries[1].Level, zap.DebugLevel)
}
