package predict

import (
	"context"
	"sync"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/model"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/observability"
)

// CachedLoader wraps a Loader and keeps the most recently loaded bundle.
// Loading a different id replaces it. Failed loads are not cached so the
// next request retries.
type CachedLoader struct {
	inner   Loader
	metrics *observability.Metrics

	mu     sync.Mutex
	id     string
	bundle *model.Bundle
}

// NewCachedLoader creates a single-slot cache decorator around a loader.
func NewCachedLoader(inner Loader, metrics *observability.Metrics) *CachedLoader {
	return &CachedLoader{inner: inner, metrics: metrics}
}

func (c *CachedLoader) Load(ctx context.Context, id string) (*model.Bundle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bundle != nil && c.id == id {
		c.metrics.ModelCache.WithLabelValues("hit").Inc()
		return c.bundle, nil
	}
	c.metrics.ModelCache.WithLabelValues("miss").Inc()

	c.id, c.bundle = "", nil
	b, err := c.inner.Load(ctx, id)
	if err != nil {
		c.metrics.ModelLoads.WithLabelValues(id, "error").Inc()
		return nil, err
	}
	c.metrics.ModelLoads.WithLabelValues(id, "success").Inc()
	c.id, c.bundle = id, b
	return b, nil
}

// Current returns the id of the cached bundle, if any.
func (c *CachedLoader) Current() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id, c.bundle != nil
}

// Invalidate drops the cached bundle when it belongs to id.
func (c *CachedLoader) Invalidate(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bundle == nil || c.id != id {
		return false
	}
	c.id, c.bundle = "", nil
	return true
}
