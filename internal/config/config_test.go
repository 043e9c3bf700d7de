package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/sbm/internal/config"
)

func TestLoad_CreatesFileWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sbm", "config.yaml")

	cfg, err := config.Load(path)
	assert.NilError(t, err)

	assert.Equal(t, cfg.Storage.Backend, config.BackendJSON)
	assert.Equal(t, cfg.Storage.JSONPath, filepath.Join(filepath.Dir(path), "bookmarks.json"))
	assert.Equal(t, cfg.Storage.SQLitePath, filepath.Join(filepath.Dir(path), "bookmarks.db"))
	assert.Equal(t, cfg.Redis.KeyPrefix, "sbm:")
	assert.Equal(t, cfg.Redis.ConnectTimeout, 10*time.Second)
	assert.Equal(t, cfg.Log.Level, "warn")
	assert.Equal(t, cfg.Fetch.Concurrency, 10)
	assert.DeepEqual(t, cfg.Fetch.ExcludeDomains, []string{"github.com", "gitlab.com"})
	assert.Equal(t, cfg.Server.Listen, "127.0.0.1:8723")
	assert.Equal(t, cfg.Server.RateLimit, 20.0)
	assert.Equal(t, cfg.Server.Burst, 40)
	assert.Equal(t, cfg.Server.EnrichSchedule, "")
	assert.Equal(t, cfg.Export.Format, "json")

	_, err = os.Stat(path)
	assert.NilError(t, err, "expected config file to be written")
}

func TestLoad_ReadsFileAndKeepsDefaultsForMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `storage:
  backend: sqlite
  sqlite-path: /tmp/marks.db
log:
  level: debug
  pretty: true
fetch:
  timeout: 3s
  exclude-domains: [example.com]
`
	assert.NilError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(path)
	assert.NilError(t, err)
	assert.Equal(t, cfg.Storage.Backend, config.BackendSQLite)
	assert.Equal(t, cfg.Storage.SQLitePath, "/tmp/marks.db")
	assert.Equal(t, cfg.Log.Level, "debug")
	assert.Assert(t, cfg.Log.Pretty)
	assert.Equal(t, cfg.Fetch.Timeout, 3*time.Second)
	assert.Equal(t, cfg.Fetch.Concurrency, 10)
	assert.DeepEqual(t, cfg.Fetch.ExcludeDomains, []string{"example.com"})
	assert.Equal(t, cfg.Redis.Addr, "localhost:6379")
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("SBM_STORAGE_BACKEND", "REDIS")
	t.Setenv("SBM_REDIS_ADDR", "cache:6380")
	t.Setenv("SBM_REDIS_DB", "2")
	t.Setenv("SBM_LOG_PRETTY", "true")
	t.Setenv("SBM_LISTEN_ADDR", ":9999")
	t.Setenv("SBM_ENRICH_SCHEDULE", "@every 6h")

	cfg, err := config.Load(path)
	assert.NilError(t, err)
	assert.Equal(t, cfg.Storage.Backend, config.BackendRedis)
	assert.Equal(t, cfg.Redis.Addr, "cache:6380")
	assert.Equal(t, cfg.Redis.DB, 2)
	assert.Assert(t, cfg.Log.Pretty)
	assert.Equal(t, cfg.Server.Listen, ":9999")
	assert.Equal(t, cfg.Server.EnrichSchedule, "@every 6h")
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("SBM_REDIS_DB", "two")
	_, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
	assert.ErrorContains(t, err, "SBM_REDIS_DB")
}

func TestLoad_InvalidBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NilError(t, os.WriteFile(path, []byte("storage:\n  backend: mongo\n"), 0o644))

	_, err := config.Load(path)
	assert.Check(t, is.ErrorContains(err, "invalid config"))
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NilError(t, os.WriteFile(path, []byte("storage: [unclosed"), 0o644))

	_, err := config.Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := config.Default(path)
	assert.NilError(t, err)
	cfg.Fetch.Concurrency = 3
	cfg.Redis.MaxWait = 7 * time.Second
	assert.NilError(t, cfg.Save())

	loaded, err := config.Load(path)
	assert.NilError(t, err)
	assert.Equal(t, loaded.Fetch.Concurrency, 3)
	assert.Equal(t, loaded.Redis.MaxWait, 7*time.Second)
}

func TestExportDir(t *testing.T) {
	cfg, err := config.Default(filepath.Join(t.TempDir(), "config.yaml"))
	assert.NilError(t, err)

	dir, err := cfg.ExportDir()
	assert.NilError(t, err)
	assert.Equal(t, filepath.Base(dir), "Downloads")

	cfg.Export.Dir = "/srv/exports"
	dir, err = cfg.ExportDir()
	assert.NilError(t, err)
	assert.Equal(t, dir, "/srv/exports")
}
