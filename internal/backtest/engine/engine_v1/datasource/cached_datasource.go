package datasource

import (
	"fmt"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"golang.org/x/sync/singleflight"
)

type loadResult struct {
	series types.PriceSeries
	err    error
}

// CachedDataSource wraps a DataSource and caches loaded series by path and time window.
// Every strategy of a run configuration reads the same files, so each file is only queried once.
// Concurrent loads of one key share a single underlying Load; different keys load in parallel.
type CachedDataSource struct {
	underlying DataSource
	cache      map[string]loadResult
	mu         sync.RWMutex
	inflight   singleflight.Group
}

// NewCachedDataSource creates a new CachedDataSource wrapping the given DataSource.
func NewCachedDataSource(underlying DataSource) *CachedDataSource {
	return &CachedDataSource{
		underlying: underlying,
		cache:      make(map[string]loadResult),
	}
}

// ClearCache clears all cached series.
func (c *CachedDataSource) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]loadResult)
}

// Load implements DataSource with caching. Errors are cached as well.
func (c *CachedDataSource) Load(path string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.PriceSeries, error) {
	key := buildLoadKey(path, start, end)

	if result, ok := c.cached(key); ok {
		return result.series, result.err
	}

	value, _, _ := c.inflight.Do(key, func() (any, error) {
		if result, ok := c.cached(key); ok {
			return result, nil
		}

		series, err := c.underlying.Load(path, start, end)
		result := loadResult{series: series, err: err}

		c.mu.Lock()
		c.cache[key] = result
		c.mu.Unlock()

		return result, nil
	})

	result := value.(loadResult)

	return result.series, result.err
}

func (c *CachedDataSource) cached(key string) (loadResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result, ok := c.cache[key]

	return result, ok
}

// Close implements DataSource.
func (c *CachedDataSource) Close() error {
	c.ClearCache()

	return c.underlying.Close()
}

func buildLoadKey(path string, start optional.Option[time.Time], end optional.Option[time.Time]) string {
	startKey := "none"
	if start.IsSome() {
		startKey = fmt.Sprintf("%d", start.Unwrap().UnixNano())
	}

	endKey := "none"
	if end.IsSome() {
		endKey = fmt.Sprintf("%d", end.Unwrap().UnixNano())
	}

	return fmt.Sprintf("%s|%s|%s", path, startKey, endKey)
}
