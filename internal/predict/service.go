// Package predict turns prediction request bodies into Fire Weather Index
// results and hands successful predictions to the configured recorders.
package predict

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/fire-weather-api/internal/domain"
	"github.com/couchcryptid/fire-weather-api/internal/observability"
)

// Model evaluates a feature vector. Implementations must be safe for concurrent use.
type Model interface {
	Predict(ctx context.Context, features domain.FeatureVector) (float64, error)
}

// Recorder receives every successful prediction.
type Recorder interface {
	Record(ctx context.Context, p domain.Prediction) error
}

// Pinger is implemented by recorders and models whose health gates readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type namedRecorder struct {
	name string
	rec  Recorder
}

// Service runs the parse, evaluate, check, record sequence for one request.
type Service struct {
	model         Model
	recorders     []namedRecorder
	clampNegative bool
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithClampNegative floors negative results at 0.
func WithClampNegative(on bool) Option {
	return func(s *Service) { s.clampNegative = on }
}

// WithRecorder adds a sink for successful predictions. name labels failure
// metrics and log lines.
func WithRecorder(name string, r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorders = append(s.recorders, namedRecorder{name: name, rec: r})
		}
	}
}

// New creates a Service around model.
func New(model Model, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Service {
	s := &Service{
		model:   model,
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	if model != nil {
		metrics.ModelReady.Set(1)
	}
	return s
}

// Predict parses body, evaluates the model and records the result.
//
// Errors are *domain.ValidationError for bad input, *domain.ComputationError
// when the model cannot produce a finite value for valid input, and
// *domain.InternalError for everything else. Recorder failures are logged and
// counted but never fail the request.
func (s *Service) Predict(ctx context.Context, body []byte) (domain.Prediction, error) {
	start := time.Now()

	features, err := domain.ParseFeatures(body)
	if err != nil {
		s.metrics.Predictions.WithLabelValues("validation_error").Inc()
		return domain.Prediction{}, err
	}

	result, err := s.evaluate(ctx, features)
	if err != nil {
		s.metrics.Predictions.WithLabelValues(outcome(err)).Inc()
		return domain.Prediction{}, err
	}

	if s.clampNegative && result < 0 {
		result = 0
	}

	p := domain.NewPrediction(features, result)
	s.metrics.Predictions.WithLabelValues("success").Inc()
	s.metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	s.metrics.PredictedFWI.Observe(result)

	s.record(ctx, p)
	return p, nil
}

func (s *Service) evaluate(ctx context.Context, features domain.FeatureVector) (float64, error) {
	if s.model == nil {
		return 0, &domain.InternalError{Op: "predict", Err: errors.New("no model loaded")}
	}

	y, err := s.model.Predict(ctx, features)
	if err != nil {
		var (
			verr *domain.ValidationError
			cerr *domain.ComputationError
			ierr *domain.InternalError
		)
		if errors.As(err, &verr) || errors.As(err, &cerr) || errors.As(err, &ierr) {
			return 0, err
		}
		return 0, &domain.InternalError{Op: "predict", Err: err}
	}

	if !domain.IsFinite(y) {
		return 0, &domain.ComputationError{Reason: domain.ErrNonFiniteResult.Error(), Err: domain.ErrNonFiniteResult}
	}
	return y, nil
}

// record delivers p to every recorder. Recording outlives a cancelled request.
func (s *Service) record(ctx context.Context, p domain.Prediction) {
	if len(s.recorders) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, r := range s.recorders {
		if err := r.rec.Record(ctx, p); err != nil {
			s.logger.Warn("record prediction failed", "sink", r.name, "id", p.ID, "error", err)
			s.metrics.RecorderFailures.WithLabelValues(r.name).Inc()
		}
	}
}

// CheckReadiness returns nil once a model is attached and every pingable
// dependency responds.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if s.model == nil {
		return errors.New("model not loaded")
	}
	if p, ok := s.model.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("model: %w", err)
		}
	}
	for _, r := range s.recorders {
		p, ok := r.rec.(Pinger)
		if !ok {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", r.name, err)
		}
	}
	return nil
}

func outcome(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return "validation_error"
	}
	var cerr *domain.ComputationError
	if errors.As(err, &cerr) {
		return "computation_error"
	}
	return "internal_error"
}
