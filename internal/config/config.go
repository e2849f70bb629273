// Package config loads service configuration from an optional YAML file,
// then environment variables, then validates the result.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	CacheRedis     = "redis"
	CacheRistretto = "ristretto"
	CacheBigcache  = "bigcache"
	CacheNone      = "none"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	// URL in the form sqlite:///relative.db, sqlite:////abs/path.db or postgres://...
	URL string `yaml:"url"`
	// SQLiteDriver picks the database/sql driver for sqlite URLs:
	// "sqlite" (modernc, pure Go) or "sqlite3" (mattn, cgo).
	SQLiteDriver string        `yaml:"sqlite_driver"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	SlowQuery    time.Duration `yaml:"slow_query"`
}

type CacheConfig struct {
	Driver    string        `yaml:"driver"`
	RedisURL  string        `yaml:"redis_url"`
	TTL       time.Duration `yaml:"ttl"`
	OpTimeout time.Duration `yaml:"op_timeout"`
	Codec     string        `yaml:"codec"`
	// Decode size guard; 0 disables.
	MaxEntryBytes int           `yaml:"max_entry_bytes"`
	MaxCostBytes  int64         `yaml:"max_cost_bytes"` // ristretto
	Breaker       BreakerConfig `yaml:"breaker"`
}

type BreakerConfig struct {
	Enabled             bool          `yaml:"enabled"`
	ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
	OpenTimeout         time.Duration `yaml:"open_timeout"`
}

type LogConfig struct {
	Backend     string `yaml:"backend"` // zap | logrus | slog
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:            ":8000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Database: DatabaseConfig{
			URL:          "sqlite:///book_reviews.db",
			SQLiteDriver: "sqlite",
			MaxOpenConns: 10,
		},
		Cache: CacheConfig{
			Driver:        CacheRedis,
			RedisURL:      "redis://localhost:6379/0",
			TTL:           30 * time.Second,
			OpTimeout:     250 * time.Millisecond,
			Codec:         "json",
			MaxEntryBytes: 8 << 20,
			MaxCostBytes:  64 << 20,
			Breaker: BreakerConfig{
				Enabled:             true,
				ConsecutiveFailures: 5,
				OpenTimeout:         10 * time.Second,
			},
		},
		Log: LogConfig{
			Backend: "zap",
			Level:   "info",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "bookcache",
		},
	}
}

// Load reads path (if non-empty) over the defaults, applies environment
// overrides, and validates.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an injectable environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(name)
		if !ok || v == "" {
			return nil
		}
		d, err := parseDuration(v)
		if err != nil {
			return &ConfigError{Field: name, Message: err.Error()}
		}
		*dst = d
		return nil
	}

	str("HTTP_ADDR", &c.HTTP.Addr)
	str("DATABASE_URL", &c.Database.URL)
	str("SQLITE_DRIVER", &c.Database.SQLiteDriver)
	str("REDIS_URL", &c.Cache.RedisURL)
	str("CACHE_DRIVER", &c.Cache.Driver)
	str("CACHE_CODEC", &c.Cache.Codec)
	str("LOG_BACKEND", &c.Log.Backend)
	str("LOG_LEVEL", &c.Log.Level)
	if err := dur("CACHE_TTL", &c.Cache.TTL); err != nil {
		return err
	}
	if err := dur("CACHE_OP_TIMEOUT", &c.Cache.OpTimeout); err != nil {
		return err
	}
	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		c.HTTP.CORSOrigins = splitList(v)
	}
	if v, ok := lookup("METRICS_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &ConfigError{Field: "METRICS_ENABLED", Message: err.Error()}
		}
		c.Metrics.Enabled = b
	}
	return nil
}

// parseDuration accepts Go durations ("30s") and bare seconds ("30").
func parseDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks whether the configuration values are usable.
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return &ConfigError{Field: "HTTP.Addr", Message: "must not be empty"}
	}
	if c.HTTP.ShutdownTimeout < 0 {
		return &ConfigError{Field: "HTTP.ShutdownTimeout", Message: "must be non-negative"}
	}
	if _, _, err := c.Database.DriverDSN(); err != nil {
		return err
	}

	switch c.Cache.Driver {
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return &ConfigError{Field: "Cache.RedisURL", Message: "required when driver is redis"}
		}
	case CacheRistretto, CacheBigcache, CacheNone:
	default:
		return &ConfigError{Field: "Cache.Driver", Message: fmt.Sprintf("unknown driver %q", c.Cache.Driver)}
	}
	if c.Cache.TTL <= 0 {
		return &ConfigError{Field: "Cache.TTL", Message: "must be greater than 0"}
	}
	if c.Cache.OpTimeout <= 0 {
		return &ConfigError{Field: "Cache.OpTimeout", Message: "must be greater than 0"}
	}
	switch c.Cache.Codec {
	case "", "json", "msgpack", "cbor":
	default:
		return &ConfigError{Field: "Cache.Codec", Message: fmt.Sprintf("unknown codec %q", c.Cache.Codec)}
	}
	if c.Cache.MaxEntryBytes < 0 {
		return &ConfigError{Field: "Cache.MaxEntryBytes", Message: "must be non-negative"}
	}
	if c.Cache.Breaker.Enabled && c.Cache.Breaker.ConsecutiveFailures == 0 {
		return &ConfigError{Field: "Cache.Breaker.ConsecutiveFailures", Message: "must be greater than 0"}
	}

	switch c.Log.Backend {
	case "zap", "logrus", "slog":
	default:
		return &ConfigError{Field: "Log.Backend", Message: fmt.Sprintf("unknown backend %q", c.Log.Backend)}
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ConfigError{Field: "Log.Level", Message: fmt.Sprintf("unknown level %q", c.Log.Level)}
	}
	return nil
}

var errScheme = errors.New("scheme must be sqlite or postgres")

// DriverDSN turns the database URL into a database/sql driver name and DSN.
func (d DatabaseConfig) DriverDSN() (driver, dsn string, err error) {
	u, err := url.Parse(d.URL)
	if err != nil {
		return "", "", &ConfigError{Field: "Database.URL", Message: err.Error()}
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return "postgres", d.URL, nil
	case "sqlite":
	default:
		return "", "", &ConfigError{Field: "Database.URL", Message: errScheme.Error()}
	}

	// sqlite:///rel.db -> "rel.db"; sqlite:////abs.db -> "/abs.db"
	path := strings.TrimPrefix(u.Path, "/")
	if path == "" || path == ":memory:" {
		path = ":memory:"
	}

	switch d.SQLiteDriver {
	case "", "sqlite":
		return "sqlite", "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", nil
	case "sqlite3":
		return "sqlite3", "file:" + path + "?_foreign_keys=on&_busy_timeout=5000", nil
	default:
		return "", "", &ConfigError{Field: "Database.SQLiteDriver", Message: fmt.Sprintf("unknown driver %q", d.SQLiteDriver)}
	}
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
}
