package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRemoteURL = "http://model.internal:5000"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, BackendLocal, cfg.ModelBackend)
	assert.Equal(t, "models/ridge.yaml", cfg.ModelPath)
	assert.Equal(t, "models/scaler.yaml", cfg.ScalerPath)
	assert.Empty(t, cfg.RemoteModelURL)
	assert.Equal(t, 5*time.Second, cfg.RemoteModelTimeout)
	assert.True(t, filepath.IsAbs(cfg.StaticDir))
	assert.Equal(t, "react", filepath.Base(cfg.StaticDir))
	assert.Equal(t, "*", cfg.CORSAllowOrigin)
	assert.False(t, cfg.ClampNegative)
	assert.Equal(t, 1000, cfg.PredictionCacheSize)
	assert.False(t, cfg.HistoryEnabled())
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "fwi-predictions", cfg.KafkaPredictionTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("MODEL_BACKEND", "remote")
	t.Setenv("REMOTE_MODEL_URL", testRemoteURL+"/")
	t.Setenv("REMOTE_MODEL_TIMEOUT", "2s")
	t.Setenv("STATIC_DIR", dir)
	t.Setenv("CORS_ALLOW_ORIGIN", "https://fwi.example.org")
	t.Setenv("PREDICTION_CLAMP_NEGATIVE", "true")
	t.Setenv("PREDICTION_CACHE_SIZE", "50")
	t.Setenv("HISTORY_DB_PATH", filepath.Join(dir, "history.db"))
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092,")
	t.Setenv("KAFKA_PREDICTION_TOPIC", "custom-predictions")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, BackendRemote, cfg.ModelBackend)
	assert.Equal(t, testRemoteURL, cfg.RemoteModelURL)
	assert.Equal(t, 2*time.Second, cfg.RemoteModelTimeout)
	assert.Equal(t, dir, cfg.StaticDir)
	assert.Equal(t, "https://fwi.example.org", cfg.CORSAllowOrigin)
	assert.True(t, cfg.ClampNegative)
	assert.Equal(t, 50, cfg.PredictionCacheSize)
	assert.True(t, cfg.HistoryEnabled())
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-predictions", cfg.KafkaPredictionTopic)
}

func TestLoad_InvalidEnv(t *testing.T) {
	cases := []struct {
		key   string
		value string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"SHUTDOWN_TIMEOUT", "-1s"},
		{"REMOTE_MODEL_TIMEOUT", "0s"},
		{"LOG_LEVEL", "verbose"},
		{"LOG_FORMAT", "xml"},
		{"MODEL_BACKEND", "onnx"},
		{"PREDICTION_CLAMP_NEGATIVE", "maybe"},
	}

	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.key)
		})
	}
}

func TestLoad_RemoteBackendWithoutURL(t *testing.T) {
	t.Setenv("MODEL_BACKEND", "remote")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REMOTE_MODEL_URL")
}

func TestLoad_RemoteBackendBadURL(t *testing.T) {
	t.Setenv("MODEL_BACKEND", "remote")
	t.Setenv("REMOTE_MODEL_URL", "model.internal:5000")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REMOTE_MODEL_URL")
}

func TestLoad_InvalidCacheSizeFallsBackToDefault(t *testing.T) {
	for _, v := range []string{"-1", "lots"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("PREDICTION_CACHE_SIZE", v)
			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, 1000, cfg.PredictionCacheSize)
		})
	}
}

func TestLoad_CacheDisabled(t *testing.T) {
	t.Setenv("PREDICTION_CACHE_SIZE", "0")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.PredictionCacheSize)
}

func TestLoad_BlankBrokersDisableKafka(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " , ")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled())
}

func TestLoad_SharedParsers(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("KAFKA_BROKERS", " a:1, ,b:2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.KafkaBrokers)
}
