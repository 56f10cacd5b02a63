package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/fire-weather-api/internal/adapter/cache"
	httpadapter "github.com/couchcryptid/fire-weather-api/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/fire-weather-api/internal/adapter/kafka"
	"github.com/couchcryptid/fire-weather-api/internal/adapter/remote"
	"github.com/couchcryptid/fire-weather-api/internal/adapter/sqlite"
	"github.com/couchcryptid/fire-weather-api/internal/config"
	"github.com/couchcryptid/fire-weather-api/internal/model"
	"github.com/couchcryptid/fire-weather-api/internal/observability"
	"github.com/couchcryptid/fire-weather-api/internal/predict"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m, err := buildModel(cfg, metrics, logger)
	if err != nil {
		logger.Error("failed to load model", "error", err)
		os.Exit(1)
	}

	opts := []predict.Option{predict.WithClampNegative(cfg.ClampNegative)}

	var history httpadapter.HistoryReader
	var store *sqlite.Store
	if cfg.HistoryEnabled() {
		store, err = sqlite.Open(ctx, cfg.HistoryDBPath, logger)
		if err != nil {
			logger.Error("failed to open history database", "path", cfg.HistoryDBPath, "error", err)
			os.Exit(1)
		}
		history = store
		opts = append(opts, predict.WithRecorder("history", store))
		logger.Info("prediction history enabled", "path", cfg.HistoryDBPath)
	}

	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled() {
		publisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaPredictionTopic, metrics, logger)
		opts = append(opts, predict.WithRecorder("events", publisher))
		logger.Info("prediction events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaPredictionTopic)
	}

	svc := predict.New(m, logger, metrics, opts...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Predictor: svc,
		Ready:     svc,
		History:   history,
		Metrics:   metrics,
	}, httpadapter.Options{
		StaticDir:       cfg.StaticDir,
		CORSAllowOrigin: cfg.CORSAllowOrigin,
	}, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("history database close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// buildModel selects the backend and wraps it in the prediction cache when enabled.
func buildModel(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (predict.Model, error) {
	var m predict.Model
	switch cfg.ModelBackend {
	case config.BackendRemote:
		m = remote.NewClient(cfg.RemoteModelURL, cfg.RemoteModelTimeout, metrics, logger)
		logger.Info("remote model backend", "url", cfg.RemoteModelURL, "timeout", cfg.RemoteModelTimeout)
	default:
		pipe, err := model.LoadPipeline(cfg.ScalerPath, cfg.ModelPath)
		if err != nil {
			return nil, err
		}
		m = pipe
		logger.Info("model artifacts loaded", "scaler", cfg.ScalerPath, "model", cfg.ModelPath)
	}

	if cfg.PredictionCacheSize == 0 {
		logger.Info("prediction cache disabled")
		return m, nil
	}
	cached, err := cache.NewCachedModel(m, cfg.PredictionCacheSize, metrics)
	if err != nil {
		return nil, err
	}
	logger.Info("prediction cache enabled", "size", cfg.PredictionCacheSize)
	return cached, nil
}
