package logger_test

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gotest.tools/v3/assert"

	"github.com/nikbrunner/sbm/internal/logger"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{" error ", zapcore.ErrorLevel},
		{"warn", zapcore.WarnLevel},
		{"", zapcore.WarnLevel},
		{"verbose", zapcore.WarnLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, logger.ParseLevel(tt.in), tt.want, "level %q", tt.in)
	}
}

func TestNew(t *testing.T) {
	for _, pretty := range []bool{true, false} {
		log, err := logger.New("debug", pretty)
		assert.NilError(t, err)
		log.Debug("hello", logger.String("k", "v"))
		_ = log.Sync()
	}
}

func TestWith_CarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core)).With(logger.String("component", "capture"))

	log.Warn("enrichment failed", logger.Error(errors.New("timeout")))
	log.Infof("saved %d", 3)

	entries := logs.AllUntimed()
	assert.Equal(t, len(entries), 2)
	assert.Equal(t, entries[0].Message, "enrichment failed")
	assert.Equal(t, entries[0].ContextMap()["component"], "capture")
	assert.Equal(t, entries[0].ContextMap()["error"], "timeout")
	assert.Equal(t, entries[1].Message, "saved 3")
}

func TestNop(t *testing.T) {
	log := logger.Nop()
	log.Error("dropped")
	assert.NilError(t, log.Sync())
}
