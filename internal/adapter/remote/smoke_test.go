//go:build remote

package remote

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/fire-weather-api/internal/domain"
	"github.com/couchcryptid/fire-weather-api/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit a running prediction service at REMOTE_MODEL_URL.
// Run with: go test -tags=remote ./internal/adapter/remote/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	url := os.Getenv("REMOTE_MODEL_URL")
	if url == "" {
		t.Fatal("REMOTE_MODEL_URL must be set to run smoke tests")
	}
	return NewClient(url, 10*time.Second, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_Predict(t *testing.T) {
	c := smokeClient(t)

	y, err := c.Predict(context.Background(), sampleFeatures)
	require.NoError(t, err)
	assert.True(t, domain.IsFinite(y))
	t.Logf("FWI=%.4f", y)
}
