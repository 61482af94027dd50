package swclient

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

// DefaultBaseURL is used when neither config nor environment names a backend.
const DefaultBaseURL = "http://localhost:8000"

// Session backends accepted by SessionConfig.Backend.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config holds process-wide client settings.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	BaseURL          string        `yaml:"base_url"`
	Timeout          time.Duration `yaml:"timeout"`
	UserAgent        string        `yaml:"user_agent"`
	LoginPath        string        `yaml:"login_path"`
	MaxResponseBytes int64         `yaml:"max_response_bytes"`
	Session          SessionConfig `yaml:"session"`
	Expiry           ExpiryConfig  `yaml:"expiry"`
	Audit            AuditConfig   `yaml:"audit"`
	Metrics          MetricsConfig `yaml:"metrics"`
	Log              LogConfig     `yaml:"log"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig selects where the Session is persisted.
type SessionConfig struct {
	Backend   string `yaml:"backend"`
	Dir       string `yaml:"dir"`
	KeyPrefix string `yaml:"key_prefix"`
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
}

// ExpiryConfig tunes the local expiry check. A positive Leeway treats tokens
// as expired that much before their exp claim.
type ExpiryConfig struct {
	Leeway time.Duration `yaml:"leeway"`
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

// LogConfig sets the level of loggers built by NewLogger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		BaseURL:          DefaultBaseURL,
		Timeout:          30 * time.Second,
		UserAgent:        "swclient/1",
		LoginPath:        "/login",
		MaxResponseBytes: 8 << 20,
		Session: SessionConfig{
			Backend:   BackendMemory,
			KeyPrefix: "",
		},
		Expiry: ExpiryConfig{
			Leeway: 0,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("BaseURL must be an absolute http(s) URL")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return errors.New("BaseURL must not carry a query or fragment")
	}
	if c.Timeout <= 0 {
		return errors.New("Timeout must be > 0")
	}
	if !strings.HasPrefix(c.LoginPath, "/") {
		return errors.New("LoginPath must start with /")
	}
	if c.MaxResponseBytes <= 0 {
		return errors.New("MaxResponseBytes must be > 0")
	}

	switch c.Session.Backend {
	case BackendMemory:
	case BackendFile:
		if strings.TrimSpace(c.Session.Dir) == "" {
			return errors.New("file session backend requires Session.Dir")
		}
	case BackendRedis:
		if c.Session.RedisDB < 0 {
			return errors.New("Session.RedisDB must be >= 0")
		}
	default:
		return fmt.Errorf("unsupported session backend %q", c.Session.Backend)
	}

	if c.Expiry.Leeway < 0 || c.Expiry.Leeway > 5*time.Minute {
		return errors.New("Expiry.Leeway must be within [0, 5m]")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("latency histograms require metrics to be enabled")
	}
	return nil
}

// LoadConfig reads YAML from path on top of DefaultConfig, then applies
// SMARTWORK_* environment overrides. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path != "" {
		if err := loadFromYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("unmarshal config yaml: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SMARTWORK_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	if err := overrideDuration("SMARTWORK_TIMEOUT", &cfg.Timeout); err != nil {
		return err
	}
	if v := os.Getenv("SMARTWORK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SMARTWORK_SESSION_BACKEND"); v != "" {
		cfg.Session.Backend = v
	}
	if v := os.Getenv("SMARTWORK_SESSION_DIR"); v != "" {
		cfg.Session.Dir = v
	}
	if v := os.Getenv("SMARTWORK_REDIS_ADDR"); v != "" {
		cfg.Session.RedisAddr = v
	}
	if err := overrideInt("SMARTWORK_REDIS_DB", &cfg.Session.RedisDB); err != nil {
		return err
	}
	return nil
}

func overrideDuration(key string, target *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*target = d
	return nil
}

func overrideInt(key string, target *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*target = n
	return nil
}
