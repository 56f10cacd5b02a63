// Package model loads the fitted scaler and ridge regression artifacts and
// evaluates them.
//
// Artifacts are YAML documents (JSON is accepted too) exported from the training
// environment. Both record the feature names they were fit with; loading fails
// unless those names equal domain.FieldNames in order, so a reordered export can
// never silently shift inputs between coefficients.
package model

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/couchcryptid/fire-weather-api/internal/domain"
	"gopkg.in/yaml.v3"
)

// Artifact kinds.
const (
	KindStandardScaler = "standard_scaler"
	KindRidge          = "ridge"
)

// artifact is the on-disk shape shared by both kinds.
type artifact struct {
	Kind         string    `yaml:"kind"`
	FeatureNames []string  `yaml:"feature_names"`
	Mean         []float64 `yaml:"mean,omitempty"`
	Scale        []float64 `yaml:"scale,omitempty"`
	Coef         []float64 `yaml:"coef,omitempty"`
	Intercept    float64   `yaml:"intercept,omitempty"`
}

// LoadScaler reads and validates a standard scaler artifact.
func LoadScaler(path string) (*StandardScaler, error) {
	a, err := readArtifact(path, KindStandardScaler)
	if err != nil {
		return nil, err
	}
	return NewStandardScaler(a.Mean, a.Scale)
}

// LoadRidge reads and validates a ridge regression artifact.
func LoadRidge(path string) (*Ridge, error) {
	a, err := readArtifact(path, KindRidge)
	if err != nil {
		return nil, err
	}
	return NewRidge(a.Coef, a.Intercept)
}

// LoadPipeline loads both artifacts and composes them.
func LoadPipeline(scalerPath, modelPath string) (*Pipeline, error) {
	scaler, err := LoadScaler(scalerPath)
	if err != nil {
		return nil, err
	}
	ridge, err := LoadRidge(modelPath)
	if err != nil {
		return nil, err
	}
	return NewPipeline(scaler, ridge), nil
}

func readArtifact(path, wantKind string) (artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return artifact{}, fmt.Errorf("read %s artifact: %w", wantKind, err)
	}

	var a artifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return artifact{}, fmt.Errorf("decode %s artifact %s: %w", wantKind, path, err)
	}
	if a.Kind != wantKind {
		return artifact{}, fmt.Errorf("artifact %s: kind %q, want %q", path, a.Kind, wantKind)
	}
	if err := checkFeatureNames(a.FeatureNames); err != nil {
		return artifact{}, fmt.Errorf("artifact %s: %w", path, err)
	}
	return a, nil
}

func checkFeatureNames(names []string) error {
	if len(names) == 0 {
		return errors.New("feature_names is empty")
	}
	if !slices.Equal(names, domain.FieldNames()) {
		return fmt.Errorf("feature_names %v do not match model order %v", names, domain.FieldNames())
	}
	return nil
}

func checkVector(name string, v []float64) error {
	if len(v) != domain.FeatureCount {
		return fmt.Errorf("%s has %d values, want %d", name, len(v), domain.FeatureCount)
	}
	for i, x := range v {
		if !domain.IsFinite(x) {
			return fmt.Errorf("%s[%d] is not finite", name, i)
		}
	}
	return nil
}
