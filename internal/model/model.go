package model

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/couchcryptid/fire-weather-api/internal/domain"
)

// StandardScaler maps raw features to zero-mean, unit-variance space using the
// statistics learned at fit time.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// NewStandardScaler validates the fitted statistics. Zero scale entries are
// replaced by 1 so constant training features pass through centred but unscaled.
func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if err := checkVector("mean", mean); err != nil {
		return nil, err
	}
	if err := checkVector("scale", scale); err != nil {
		return nil, err
	}
	s := slices.Clone(scale)
	for i, v := range s {
		if v == 0 {
			s[i] = 1
		}
	}
	return &StandardScaler{mean: slices.Clone(mean), scale: s}, nil
}

// Transform returns a new, scaled copy of x.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.mean) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.mean), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.mean[i]) / s.scale[i]
	}
	return out, nil
}

// Ridge is a fitted L2-regularized linear regression model.
type Ridge struct {
	coef      []float64
	intercept float64
}

// NewRidge validates the fitted coefficients.
func NewRidge(coef []float64, intercept float64) (*Ridge, error) {
	if err := checkVector("coef", coef); err != nil {
		return nil, err
	}
	if !domain.IsFinite(intercept) {
		return nil, errors.New("intercept is not finite")
	}
	return &Ridge{coef: slices.Clone(coef), intercept: intercept}, nil
}

// Predict evaluates coef·x + intercept.
func (r *Ridge) Predict(x []float64) (float64, error) {
	if len(x) != len(r.coef) {
		return 0, fmt.Errorf("model expects %d features, got %d", len(r.coef), len(x))
	}
	y := r.intercept
	for i, v := range x {
		y += r.coef[i] * v
	}
	return y, nil
}

// Pipeline chains a scaler and a ridge model. It is safe for concurrent use:
// neither stage mutates state after construction.
type Pipeline struct {
	scaler *StandardScaler
	ridge  *Ridge
}

// NewPipeline composes a scaler and a model.
func NewPipeline(scaler *StandardScaler, ridge *Ridge) *Pipeline {
	return &Pipeline{scaler: scaler, ridge: ridge}
}

// Predict scales the features and evaluates the model. Dimension mismatches
// mean the artifacts disagree with each other, so they are internal errors.
func (p *Pipeline) Predict(_ context.Context, features domain.FeatureVector) (float64, error) {
	scaled, err := p.scaler.Transform(features.Values())
	if err != nil {
		return 0, &domain.InternalError{Op: "scale features", Err: err}
	}
	y, err := p.ridge.Predict(scaled)
	if err != nil {
		return 0, &domain.InternalError{Op: "evaluate model", Err: err}
	}
	return y, nil
}
