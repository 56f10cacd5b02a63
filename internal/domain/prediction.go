package domain

import (
	"time"

	"github.com/google/uuid"
)

// Prediction is one successful model evaluation, as kept in the dashboard history
// and published to the prediction event stream.
type Prediction struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Input     FeatureVector `json:"input"`
	Result    float64       `json:"result"`
}

// NewPrediction stamps a result with a random ID and the current clock time.
func NewPrediction(input FeatureVector, result float64) Prediction {
	return Prediction{
		ID:        uuid.NewString(),
		Timestamp: clock.Now().UTC(),
		Input:     input,
		Result:    result,
	}
}

// RegionName maps the region flag used by the dataset to its station name.
func RegionName(region float64) string {
	switch region {
	case 0:
		return "Bejaia"
	case 1:
		return "Sidi-Bel Abbes"
	default:
		return "unknown"
	}
}
