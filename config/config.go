package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	CORS       CORSConfig       `yaml:"cors"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Transcript TranscriptConfig `yaml:"transcript"`
	History    HistoryConfig    `yaml:"history"`

	Version string `yaml:"version"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Compress        bool          `yaml:"compress"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// Dir enables the rotating log file when set.
	Dir string `yaml:"dir"`
}

type CORSConfig struct {
	Enabled          bool     `yaml:"enabled"`
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	BurstSize         int  `yaml:"burst_size"`
}

// TranscriptConfig tunes the remote caption lookups.
type TranscriptConfig struct {
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	Attempts       int           `yaml:"attempts"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	LanguagePause  time.Duration `yaml:"language_pause"`
	ResolveTimeout time.Duration `yaml:"resolve_timeout"`
	UserAgent      string        `yaml:"user_agent"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	PrimaryEnabled bool          `yaml:"primary_enabled"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    120 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			Compress:        true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		CORS: CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			ExposedHeaders: []string{"X-Request-ID", "X-Transcript-Source"},
			MaxAge:         86400,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 60,
			BurstSize:         10,
		},
		Transcript: TranscriptConfig{
			FetchTimeout:   8 * time.Second,
			Attempts:       3,
			RetryDelay:     350 * time.Millisecond,
			LanguagePause:  250 * time.Millisecond,
			ResolveTimeout: 90 * time.Second,
			UserAgent:      DefaultUserAgent,
			MaxBodyBytes:   10 << 20,
			PrimaryEnabled: true,
		},
		History: HistoryConfig{
			Enabled: false,
			DBPath:  "./data/history.db",
		},
		Version: "1.0.0",
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables, in that order of precedence.
func Load() (*Config, error) {
	cfg := Default()

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("SERVER_PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvAsDuration("READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvAsDuration("WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvAsDuration("IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.Compress = getEnvAsBool("COMPRESS_ENABLED", c.Server.Compress)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Log.Dir = getEnv("LOG_DIR", c.Log.Dir)

	c.CORS.Enabled = getEnvAsBool("CORS_ENABLED", c.CORS.Enabled)
	c.CORS.AllowedOrigins = getEnvAsStringSlice("CORS_ALLOWED_ORIGINS", c.CORS.AllowedOrigins)
	c.CORS.AllowedMethods = getEnvAsStringSlice("CORS_ALLOWED_METHODS", c.CORS.AllowedMethods)
	c.CORS.AllowedHeaders = getEnvAsStringSlice("CORS_ALLOWED_HEADERS", c.CORS.AllowedHeaders)
	c.CORS.ExposedHeaders = getEnvAsStringSlice("CORS_EXPOSED_HEADERS", c.CORS.ExposedHeaders)
	c.CORS.AllowCredentials = getEnvAsBool("CORS_ALLOW_CREDENTIALS", c.CORS.AllowCredentials)
	c.CORS.MaxAge = getEnvAsInt("CORS_MAX_AGE", c.CORS.MaxAge)

	c.RateLimit.Enabled = getEnvAsBool("RATE_LIMIT_ENABLED", c.RateLimit.Enabled)
	c.RateLimit.RequestsPerMinute = getEnvAsInt("RATE_LIMIT_RPM", c.RateLimit.RequestsPerMinute)
	c.RateLimit.BurstSize = getEnvAsInt("RATE_LIMIT_BURST", c.RateLimit.BurstSize)

	c.Transcript.FetchTimeout = getEnvAsDuration("TRANSCRIPT_FETCH_TIMEOUT", c.Transcript.FetchTimeout)
	c.Transcript.Attempts = getEnvAsInt("TRANSCRIPT_ATTEMPTS", c.Transcript.Attempts)
	c.Transcript.RetryDelay = getEnvAsDuration("TRANSCRIPT_RETRY_DELAY", c.Transcript.RetryDelay)
	c.Transcript.LanguagePause = getEnvAsDuration("TRANSCRIPT_LANGUAGE_PAUSE", c.Transcript.LanguagePause)
	c.Transcript.ResolveTimeout = getEnvAsDuration("TRANSCRIPT_RESOLVE_TIMEOUT", c.Transcript.ResolveTimeout)
	c.Transcript.UserAgent = getEnv("TRANSCRIPT_USER_AGENT", c.Transcript.UserAgent)
	c.Transcript.MaxBodyBytes = getEnvAsInt64("TRANSCRIPT_MAX_BODY_BYTES", c.Transcript.MaxBodyBytes)
	c.Transcript.PrimaryEnabled = getEnvAsBool("TRANSCRIPT_PRIMARY_ENABLED", c.Transcript.PrimaryEnabled)

	c.History.Enabled = getEnvAsBool("HISTORY_ENABLED", c.History.Enabled)
	c.History.DBPath = getEnv("DB_PATH", c.History.DBPath)

	c.Version = getEnv("VERSION", c.Version)
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if c.Server.ReadTimeout <= 0 {
		return errors.New("read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return errors.New("write timeout must be positive")
	}
	if c.Transcript.FetchTimeout <= 0 {
		return errors.New("transcript fetch timeout must be positive")
	}
	if c.Transcript.Attempts < 1 {
		return errors.New("transcript attempts must be at least 1")
	}
	if c.Transcript.RetryDelay < 0 || c.Transcript.LanguagePause < 0 {
		return errors.New("transcript delays must not be negative")
	}
	if c.Transcript.ResolveTimeout < 0 {
		return errors.New("transcript resolve timeout must not be negative")
	}
	if c.Transcript.ResolveTimeout > 0 && c.Server.WriteTimeout <= c.Transcript.ResolveTimeout {
		logrus.WithFields(logrus.Fields{
			"write_timeout":   c.Server.WriteTimeout,
			"resolve_timeout": c.Transcript.ResolveTimeout,
		}).Warn("Write timeout does not exceed resolve timeout, slow lookups may be cut off")
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		return errors.New("rate limit requests per minute must be positive")
	}

	if c.Log.Dir != "" {
		if err := os.MkdirAll(c.Log.Dir, 0o755); err != nil {
			return errors.Wrap(err, "failed to create log directory")
		}
	}
	if c.History.Enabled {
		if c.History.DBPath == "" {
			return errors.New("database path is required when history is enabled")
		}
		if err := os.MkdirAll(filepath.Dir(c.History.DBPath), 0o755); err != nil {
			return errors.Wrap(err, "failed to create database directory")
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		warnInvalid(key, value, defaultValue, "integer")
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
		warnInvalid(key, value, defaultValue, "integer")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		warnInvalid(key, value, defaultValue, "boolean")
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		warnInvalid(key, value, defaultValue, "duration")
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		if value = strings.TrimSpace(value); value != "" {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return parts
		}
	}
	return defaultValue
}

func warnInvalid(key, value string, defaultValue any, kind string) {
	logrus.WithFields(logrus.Fields{
		"key":          key,
		"value":        value,
		"defaultValue": defaultValue,
	}).Warnf("Invalid %s, using default", kind)
}
