// Package config loads sbm's YAML configuration with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	File    string        `yaml:"-"`
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
	Log     LogConfig     `yaml:"log"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Server  ServerConfig  `yaml:"server"`
	Export  ExportConfig  `yaml:"export"`
}

// StorageConfig selects where the bookmark collection lives. Empty paths
// resolve next to the config file.
type StorageConfig struct {
	Backend    string `yaml:"backend" default:"json" validate:"oneof=json sqlite redis"`
	JSONPath   string `yaml:"json-path"`
	SQLitePath string `yaml:"sqlite-path"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr" default:"localhost:6379" validate:"required"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db" validate:"gte=0"`
	KeyPrefix string `yaml:"key-prefix" default:"sbm:"`
	PoolSize  int    `yaml:"pool-size" default:"4" validate:"gt=0"`

	DialTimeout  time.Duration `yaml:"dial-timeout" default:"5s"`
	ReadTimeout  time.Duration `yaml:"read-timeout" default:"3s"`
	WriteTimeout time.Duration `yaml:"write-timeout" default:"3s"`

	// Connection retry: total budget, first backoff step, backoff cap and
	// per-ping timeout.
	ConnectTimeout time.Duration `yaml:"connect-timeout" default:"10s" validate:"gt=0"`
	RetryInterval  time.Duration `yaml:"retry-interval" default:"500ms" validate:"gt=0"`
	MaxWait        time.Duration `yaml:"max-wait" default:"5s" validate:"gt=0"`
	PingTimeout    time.Duration `yaml:"ping-timeout" default:"2s" validate:"gt=0"`
	WarnThreshold  int           `yaml:"warn-threshold" default:"3" validate:"gte=0"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level  string `yaml:"level" default:"warn"`
	Pretty bool   `yaml:"pretty"`
}

type FetchConfig struct {
	Concurrency    int           `yaml:"concurrency" default:"10" validate:"gt=0"`
	Timeout        time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
	EnrichTimeout  time.Duration `yaml:"enrich-timeout" default:"5s" validate:"gt=0"`
	UserAgent      string        `yaml:"user-agent" default:"sbm/1.0 (+bookmark metadata)"`
	ExcludeDomains []string      `yaml:"exclude-domains" default:"[\"github.com\",\"gitlab.com\"]"`
}

type ServerConfig struct {
	Listen          string        `yaml:"listen" default:"127.0.0.1:8723" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown-timeout" default:"5s"`
	AllowedOrigins  []string      `yaml:"allowed-origins" default:"[\"chrome-extension://*\",\"moz-extension://*\"]"`

	// RateLimit is the sustained message rate per second, Burst the bucket
	// size. Zero disables limiting.
	RateLimit float64 `yaml:"rate-limit" default:"20" validate:"gte=0"`
	Burst     int     `yaml:"burst" default:"40" validate:"gte=0"`

	// EnrichSchedule is a cron expression ("0 3 * * *", "@every 6h") for
	// backfilling page details while serving. Empty disables it.
	EnrichSchedule string `yaml:"enrich-schedule"`
}

type ExportConfig struct {
	// Dir defaults to ~/Downloads.
	Dir    string `yaml:"dir"`
	Format string `yaml:"format" default:"json" validate:"oneof=json csv html"`
}

// DefaultPath returns ~/.config/sbm/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "sbm", "config.yaml"), nil
}

// Default returns a config with every default applied and paths resolved
// relative to file.
func Default(file string) (*Config, error) {
	c := &Config{File: file}
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("failed to set config defaults: %w", err)
	}
	c.resolvePaths()
	return c, nil
}

// Load reads the config file at path, writing one with defaults if it does
// not exist, then applies SBM_* environment overrides.
func Load(path string) (*Config, error) {
	c := &Config{File: path}
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("failed to set config defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// A failed write is not fatal; the defaults still apply.
		_ = c.Save()
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		// Fill fields present in the file but left empty.
		if err := defaults.Set(c); err != nil {
			return nil, fmt.Errorf("failed to set config defaults: %w", err)
		}
	}

	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	c.resolvePaths()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

var validate = validator.New()

// Validate checks value ranges and enums.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes the config back to its file, creating the directory.
func (c *Config) Save() error {
	if c.File == "" {
		return errors.New("config has no file path")
	}
	if err := os.MkdirAll(filepath.Dir(c.File), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(c.File, data, 0o644)
}

// Dir is the directory holding the config file.
func (c *Config) Dir() string {
	return filepath.Dir(c.File)
}

func (c *Config) resolvePaths() {
	if c.Storage.JSONPath == "" {
		c.Storage.JSONPath = filepath.Join(c.Dir(), "bookmarks.json")
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = filepath.Join(c.Dir(), "bookmarks.db")
	}
	c.Storage.JSONPath = expandHome(c.Storage.JSONPath)
	c.Storage.SQLitePath = expandHome(c.Storage.SQLitePath)
	c.Export.Dir = expandHome(c.Export.Dir)
}

// ExportDir returns the configured export directory or ~/Downloads.
func (c *Config) ExportDir() (string, error) {
	if c.Export.Dir != "" {
		return c.Export.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Downloads"), nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("SBM_STORAGE_BACKEND", &c.Storage.Backend)
	str("SBM_JSON_PATH", &c.Storage.JSONPath)
	str("SBM_SQLITE_PATH", &c.Storage.SQLitePath)
	str("SBM_REDIS_ADDR", &c.Redis.Addr)
	str("SBM_REDIS_USERNAME", &c.Redis.Username)
	str("SBM_REDIS_PASSWORD", &c.Redis.Password)
	str("SBM_REDIS_PREFIX", &c.Redis.KeyPrefix)
	str("SBM_LOG_LEVEL", &c.Log.Level)
	str("SBM_LISTEN_ADDR", &c.Server.Listen)
	str("SBM_ENRICH_SCHEDULE", &c.Server.EnrichSchedule)
	str("SBM_EXPORT_DIR", &c.Export.Dir)

	if v, ok := lookup("SBM_REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SBM_REDIS_DB %q: %w", v, err)
		}
		c.Redis.DB = db
	}
	if v, ok := lookup("SBM_LOG_PRETTY"); ok && v != "" {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SBM_LOG_PRETTY %q: %w", v, err)
		}
		c.Log.Pretty = pretty
	}
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
