package datasource

import (
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// InMemoryDataSource serves price series registered under a path.
// It is used by tests and by callers that already hold the data.
type InMemoryDataSource struct {
	series map[string]types.PriceSeries
	mu     sync.RWMutex
}

// NewInMemoryDataSource creates a new data source holding a copy of series.
func NewInMemoryDataSource(series map[string]types.PriceSeries) *InMemoryDataSource {
	ds := &InMemoryDataSource{
		series: make(map[string]types.PriceSeries, len(series)),
		mu:     sync.RWMutex{},
	}

	for path, s := range series {
		ds.series[path] = s
	}

	return ds
}

// Add registers series under path, replacing any previous series.
func (ds *InMemoryDataSource) Add(path string, series types.PriceSeries) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.series[path] = series
}

// Load implements DataSource.
func (ds *InMemoryDataSource) Load(path string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.PriceSeries, error) {
	ds.mu.RLock()
	series, ok := ds.series[path]
	ds.mu.RUnlock()

	if !ok {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeDataNotFound, "no price series registered for %s", path)
	}

	if start.IsNone() && end.IsNone() {
		return series, nil
	}

	bars := make([]types.PriceBar, 0, series.Len())

	for _, bar := range series.Bars() {
		if inWindow(bar.Time, start, end) {
			bars = append(bars, bar)
		}
	}

	return types.NewPriceSeries(series.Symbol(), bars)
}

// Close implements DataSource.
func (ds *InMemoryDataSource) Close() error {
	return nil
}
