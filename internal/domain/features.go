package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FeatureVector holds the nine model inputs. Field order matches the order the
// scaler and model were fit with; see FieldNames.
type FeatureVector struct {
	Temperature float64 `json:"Temperature"`
	RH          float64 `json:"RH"`
	Ws          float64 `json:"Ws"`
	Rain        float64 `json:"Rain"`
	FFMC        float64 `json:"FFMC"`
	DMC         float64 `json:"DMC"`
	ISI         float64 `json:"ISI"`
	Classes     float64 `json:"Classes"`
	Region      float64 `json:"region"`
}

// FeatureCount is the length of every vector handed to the scaler and model.
const FeatureCount = 9

var fieldNames = [FeatureCount]string{
	"Temperature", "RH", "Ws", "Rain", "FFMC", "DMC", "ISI", "Classes", "region",
}

// FieldNames returns the request field names in model order.
func FieldNames() []string {
	out := make([]string, FeatureCount)
	copy(out, fieldNames[:])
	return out
}

// Values returns the features in model order.
func (f FeatureVector) Values() []float64 {
	return []float64{f.Temperature, f.RH, f.Ws, f.Rain, f.FFMC, f.DMC, f.ISI, f.Classes, f.Region}
}

// FeatureVectorFromValues is the inverse of Values.
func FeatureVectorFromValues(v []float64) (FeatureVector, error) {
	if len(v) != FeatureCount {
		return FeatureVector{}, fmt.Errorf("feature vector has %d values, want %d", len(v), FeatureCount)
	}
	return FeatureVector{
		Temperature: v[0],
		RH:          v[1],
		Ws:          v[2],
		Rain:        v[3],
		FFMC:        v[4],
		DMC:         v[5],
		ISI:         v[6],
		Classes:     v[7],
		Region:      v[8],
	}, nil
}

// ParseFeatures decodes a prediction request body into a FeatureVector.
//
// The body must be a JSON object. Each required field may be a JSON number or a
// string holding a number; surrounding whitespace in strings is ignored. Fields
// are checked in model order and the first missing, non-numeric or non-finite
// value is reported as a *ValidationError naming that field. Extra fields are
// ignored. An empty body or a literal null is treated as an empty object.
func ParseFeatures(body []byte) (FeatureVector, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return FeatureVector{}, err
	}

	values := make([]float64, FeatureCount)
	for i, name := range fieldNames {
		v, ok := obj[name]
		if !ok {
			return FeatureVector{}, invalidField(name, "missing")
		}
		f, err := toFinite(v)
		if err != nil {
			return FeatureVector{}, invalidField(name, err.Error())
		}
		values[i] = f
	}

	return FeatureVectorFromValues(values)
}

func decodeObject(body []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]any{}, nil
	}
	if trimmed[0] != '{' {
		return nil, &ValidationError{Reason: "request body must be a JSON object"}
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, &ValidationError{Reason: "invalid JSON body", Err: err}
	}
	if dec.More() {
		return nil, &ValidationError{Reason: "invalid JSON body: trailing data"}
	}
	return obj, nil
}

var (
	errNotNumeric = errors.New("not a number")
	errNotFinite  = errors.New("not finite")
)

// toFinite converts a decoded JSON value into a finite float64.
func toFinite(v any) (float64, error) {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return 0, errNotNumeric
	}
	if isHexLiteral(s) {
		return 0, errNotNumeric
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// ParseFloat reports overflow as ErrRange with f set to ±Inf.
		if errors.Is(err, strconv.ErrRange) && math.IsInf(f, 0) {
			return 0, errNotFinite
		}
		return 0, errNotNumeric
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return f, nil
}

// isHexLiteral reports whether s is a hexadecimal literal such as 0x1p3.
func isHexLiteral(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func invalidField(name, reason string) *ValidationError {
	return &ValidationError{Field: name, Reason: reason}
}

// IsFinite reports whether f is neither NaN nor ±Inf.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
