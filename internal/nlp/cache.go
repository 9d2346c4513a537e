package nlp

import (
	"log/slog"
	"sync"
	"time"
)

// Cache creates each extractor once per method name and hands out the same
// instance afterwards.
type Cache struct {
	registry *Registry
	params   map[string]map[string]any

	mu     sync.Mutex
	loaded map[string]Extractor
}

// NewCache creates a cache over registry. params holds optional per-method
// factory parameters.
func NewCache(registry *Registry, params map[string]map[string]any) *Cache {
	if registry == nil {
		registry = DefaultRegistry
	}
	return &Cache{
		registry: registry,
		params:   params,
		loaded:   make(map[string]Extractor),
	}
}

// Get returns the extractor for method, loading it on first use.
func (c *Cache) Get(method string) (Extractor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if extractor, ok := c.loaded[method]; ok {
		return extractor, nil
	}

	start := time.Now()
	extractor, err := c.registry.Create(method, c.params[method])
	if err != nil {
		return nil, err
	}
	c.loaded[method] = extractor
	slog.Info("nlp: loaded extractor", "method", method, "duration_ms", time.Since(start).Milliseconds())
	return extractor, nil
}

// Loaded returns the number of extractors created so far.
func (c *Cache) Loaded() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.loaded)
}
