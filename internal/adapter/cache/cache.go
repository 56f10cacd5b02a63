// Package cache memoizes model results for repeated feature vectors.
package cache

import (
	"context"
	"fmt"

	"github.com/couchcryptid/fire-weather-api/internal/domain"
	"github.com/couchcryptid/fire-weather-api/internal/observability"
	"github.com/couchcryptid/fire-weather-api/internal/predict"
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedModel wraps a model with an in-memory LRU cache keyed by the exact
// feature values.
type CachedModel struct {
	inner   predict.Model
	cache   *lru.Cache[domain.FeatureVector, float64]
	metrics *observability.Metrics
}

// NewCachedModel creates a cache decorator holding at most maxEntries results.
func NewCachedModel(inner predict.Model, maxEntries int, metrics *observability.Metrics) (*CachedModel, error) {
	c, err := lru.New[domain.FeatureVector, float64](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create prediction cache: %w", err)
	}
	return &CachedModel{inner: inner, cache: c, metrics: metrics}, nil
}

func (c *CachedModel) Predict(ctx context.Context, features domain.FeatureVector) (float64, error) {
	if y, ok := c.cache.Get(features); ok {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return y, nil
	}
	c.metrics.CacheLookups.WithLabelValues("miss").Inc()

	y, err := c.inner.Predict(ctx, features)
	if err != nil {
		return y, err
	}
	// Non-finite results are rejected downstream; keep them out so a retry reaches the model.
	if domain.IsFinite(y) {
		c.cache.Add(features, y)
	}
	return y, nil
}

// Ping forwards to the wrapped model when it supports health checks.
func (c *CachedModel) Ping(ctx context.Context) error {
	if p, ok := c.inner.(predict.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Len reports the number of cached results.
func (c *CachedModel) Len() int { return c.cache.Len() }
