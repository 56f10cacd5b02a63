package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Model backends.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Model artifacts and backend selection.
	ModelBackend       string
	ModelPath          string
	ScalerPath         string
	RemoteModelURL     string
	RemoteModelTimeout time.Duration

	// StaticDir is the absolute path of the built SPA.
	StaticDir       string
	CORSAllowOrigin string

	ClampNegative       bool
	PredictionCacheSize int

	// HistoryDBPath enables the SQLite prediction history when set.
	HistoryDBPath string

	// Prediction event stream; disabled when KafkaBrokers is empty.
	KafkaBrokers         []string
	KafkaPredictionTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	remoteTimeout, err := parsePositiveDuration("REMOTE_MODEL_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	clamp, err := parseBool("PREDICTION_CLAMP_NEGATIVE", false)
	if err != nil {
		return nil, err
	}

	staticDir, err := filepath.Abs(sharedcfg.EnvOrDefault("STATIC_DIR", "static/react"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATIC_DIR: %w", err)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "json")),
		ShutdownTimeout: shutdownTimeout,

		ModelBackend:       strings.ToLower(sharedcfg.EnvOrDefault("MODEL_BACKEND", BackendLocal)),
		ModelPath:          sharedcfg.EnvOrDefault("MODEL_PATH", "models/ridge.yaml"),
		ScalerPath:         sharedcfg.EnvOrDefault("SCALER_PATH", "models/scaler.yaml"),
		RemoteModelURL:     strings.TrimSuffix(sharedcfg.EnvOrDefault("REMOTE_MODEL_URL", ""), "/"),
		RemoteModelTimeout: remoteTimeout,

		StaticDir:       staticDir,
		CORSAllowOrigin: sharedcfg.EnvOrDefault("CORS_ALLOW_ORIGIN", "*"),

		ClampNegative:       clamp,
		PredictionCacheSize: parseCacheSize(),

		HistoryDBPath: sharedcfg.EnvOrDefault("HISTORY_DB_PATH", ""),

		KafkaBrokers:         sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "")),
		KafkaPredictionTopic: sharedcfg.EnvOrDefault("KAFKA_PREDICTION_TOPIC", "fwi-predictions"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q (allowed: json, text)", c.LogFormat)
	}

	switch c.ModelBackend {
	case BackendLocal:
		if c.ModelPath == "" {
			return errors.New("MODEL_PATH is required")
		}
		if c.ScalerPath == "" {
			return errors.New("SCALER_PATH is required")
		}
	case BackendRemote:
		if c.RemoteModelURL == "" {
			return errors.New("MODEL_BACKEND is remote but REMOTE_MODEL_URL is not set")
		}
		u, err := url.Parse(c.RemoteModelURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid REMOTE_MODEL_URL %q", c.RemoteModelURL)
		}
	default:
		return fmt.Errorf("invalid MODEL_BACKEND %q (allowed: local, remote)", c.ModelBackend)
	}

	if len(c.KafkaBrokers) > 0 && c.KafkaPredictionTopic == "" {
		return errors.New("KAFKA_PREDICTION_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

// KafkaEnabled reports whether predictions are published to Kafka.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// HistoryEnabled reports whether predictions are stored in SQLite.
func (c *Config) HistoryEnabled() bool { return c.HistoryDBPath != "" }

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, s)
	}
	return b, nil
}

// parseCacheSize returns PREDICTION_CACHE_SIZE; 0 disables the cache.
func parseCacheSize() int {
	if s := os.Getenv("PREDICTION_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n >= 0 {
			return n
		}
	}
	return 1000
}
