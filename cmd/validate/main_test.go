package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/fire-weather-api/internal/domain"
	"github.com/couchcryptid/fire-weather-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testScaler  = "../../internal/model/testdata/scaler.yaml"
	testModel   = "../../internal/model/testdata/ridge.yaml"
	testSamples = "../../internal/model/testdata/samples.json"
)

func TestRun_FixturesPass(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, testScaler, testModel, testSamples, 1e-9)

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "All validations passed.")
	assert.Contains(t, out.String(), "Phase 3: Sample Predictions (2)")
}

func TestRun_DevelopmentArtifactsWithoutSamples(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, "../../models/scaler.yaml", "../../models/ridge.yaml", "", 1e-6)
	assert.Equal(t, 0, code, out.String())
}

func TestRun_WrongExpectation(t *testing.T) {
	samples := filepath.Join(t.TempDir(), "samples.json")
	require.NoError(t, os.WriteFile(samples, []byte(`[
		{"name": "off by one", "input": {"Temperature":30,"RH":60,"Ws":15,"Rain":1,"FFMC":75,"DMC":15,"ISI":5,"Classes":0.5,"region":0.5}, "expected": 8},
		{"name": "bad input", "input": {"Temperature":"hot"}}
	]`), 0o600))

	var out bytes.Buffer
	code := run(&out, testScaler, testModel, samples, 1e-6)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "off by one: got 7.000000, want 8.000000")
	assert.Contains(t, out.String(), "bad input: Missing or invalid value for 'Temperature'")
	assert.Contains(t, out.String(), "Validation FAILED.")
}

func TestRun_ArtifactErrorsReportedTogether(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, testModel, testScaler, "", 1e-6)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), `scaler: artifact`)
	assert.Contains(t, out.String(), `model: artifact`)
	assert.NotContains(t, out.String(), "Phase 2")
}

func TestRun_MissingSamplesFile(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, testScaler, testModel, filepath.Join(t.TempDir(), "none.json"), 1e-6)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "FATAL: load samples")
}

func TestValidateSanity_CornersReportedInOrder(t *testing.T) {
	fill := func(v float64) []float64 {
		out := make([]float64, domain.FeatureCount)
		for i := range out {
			out[i] = v
		}
		return out
	}
	scaler, err := model.NewStandardScaler(fill(1), fill(1e-300))
	require.NoError(t, err)
	ridge, err := model.NewRidge(fill(1e308), 0)
	require.NoError(t, err)

	for range 5 {
		p := validateSanity(model.NewPipeline(scaler, ridge))
		require.Len(t, p.errors, 3)
		for i, name := range []string{"low", "high", "zero"} {
			assert.True(t, strings.HasPrefix(p.errors[i], name+" corner:"), p.errors[i])
		}
	}
}
