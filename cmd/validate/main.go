// Command validate checks a scaler/model artifact pair before it is deployed.
// It loads both artifacts, verifies their feature order and dimensions, runs a
// set of sample requests through the pipeline and compares the results with
// expected values.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -scaler models/scaler.yaml \
//	  -model models/ridge.yaml \
//	  -samples internal/model/testdata/samples.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/couchcryptid/fire-weather-api/internal/domain"
	"github.com/couchcryptid/fire-weather-api/internal/model"
)

// sample is one request body with an optional expected FWI.
type sample struct {
	Name     string          `json:"name"`
	Input    json.RawMessage `json:"input"`
	Expected *float64        `json:"expected"`
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	scalerPath := flag.String("scaler", "models/scaler.yaml", "path to the standard scaler artifact")
	modelPath := flag.String("model", "models/ridge.yaml", "path to the ridge model artifact")
	samplesPath := flag.String("samples", "", "optional JSON file of sample requests with expected results")
	tolerance := flag.Float64("tolerance", 1e-6, "allowed absolute difference from expected results")
	flag.Parse()

	if *scalerPath == "" || *modelPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(os.Stdout, *scalerPath, *modelPath, *samplesPath, *tolerance))
}

func run(w io.Writer, scalerPath, modelPath, samplesPath string, tolerance float64) int {
	fmt.Fprintln(w, "=== FWI Artifact Validation ===")
	fmt.Fprintln(w)

	var samples []sample
	if samplesPath != "" {
		var err error
		samples, err = loadJSON[sample](samplesPath)
		if err != nil {
			fmt.Fprintf(w, "FATAL: load samples: %v\n", err)
			return 1
		}
	}

	load, pipe := validateArtifacts(scalerPath, modelPath)
	phases := []*phase{load}
	if pipe != nil {
		phases = append(phases,
			validateSanity(pipe),
			validateSamples(pipe, samples, tolerance),
		)
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Artifacts: scaler=%s model=%s, %d samples\n", scalerPath, modelPath, len(samples))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ── Phase 1: Artifact loading ──
// Each artifact is loaded on its own so both failures are reported.

func validateArtifacts(scalerPath, modelPath string) (*phase, *model.Pipeline) {
	p := &phase{name: "Phase 1: Artifact Loading"}

	scaler, err := model.LoadScaler(scalerPath)
	if err != nil {
		p.errorf("scaler: %v", err)
	}
	ridge, err := model.LoadRidge(modelPath)
	if err != nil {
		p.errorf("model: %v", err)
	}
	if !p.passed() {
		return p, nil
	}
	return p, model.NewPipeline(scaler, ridge)
}

// ── Phase 2: Sanity ──
// The pipeline must produce finite output across the plausible input range.

// sanityCorners span the observed range of the training data, in report order.
var sanityCorners = []struct {
	name string
	fv   domain.FeatureVector
}{
	{"low", domain.FeatureVector{Temperature: 22, RH: 21, Ws: 6, Rain: 0, FFMC: 28.6, DMC: 0.7, ISI: 0, Classes: 0, Region: 0}},
	{"high", domain.FeatureVector{Temperature: 42, RH: 90, Ws: 29, Rain: 16.8, FFMC: 96, DMC: 65.9, ISI: 19, Classes: 1, Region: 1}},
	{"zero", domain.FeatureVector{}},
}

func validateSanity(pipe *model.Pipeline) *phase {
	p := &phase{name: "Phase 2: Finite Output Over Input Range"}

	for _, c := range sanityCorners {
		y, err := pipe.Predict(context.Background(), c.fv)
		if err != nil {
			p.errorf("%s corner: %v", c.name, err)
			continue
		}
		if !domain.IsFinite(y) {
			p.errorf("%s corner: result %v is not finite", c.name, y)
		}
	}
	return p
}

// ── Phase 3: Samples ──
// Every sample must parse, predict a finite value and match its expectation.

func validateSamples(pipe *model.Pipeline, samples []sample, tolerance float64) *phase {
	p := &phase{name: fmt.Sprintf("Phase 3: Sample Predictions (%d)", len(samples))}

	for i, s := range samples {
		label := s.Name
		if label == "" {
			label = fmt.Sprintf("sample %d", i+1)
		}

		fv, err := domain.ParseFeatures(s.Input)
		if err != nil {
			p.errorf("%s: %v", label, err)
			continue
		}
		y, err := pipe.Predict(context.Background(), fv)
		if err != nil {
			p.errorf("%s: %v", label, err)
			continue
		}
		if !domain.IsFinite(y) {
			p.errorf("%s: %s", label, domain.ErrNonFiniteResult)
			continue
		}
		if s.Expected != nil && math.Abs(y-*s.Expected) > tolerance {
			p.errorf("%s: got %.6f, want %.6f (±%g)", label, y, *s.Expected, tolerance)
		}
	}
	return p
}
