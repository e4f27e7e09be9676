package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// DataSource supplies the daily price series stored at a path.
type DataSource interface {
	// Load reads the series stored at path, restricted to the optional inclusive time window.
	// The returned series is ordered by time and satisfies types.NewPriceSeries.
	Load(path string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.PriceSeries, error)
	// Close closes the data source and releases any resources
	Close() error
}

// inWindow reports whether t lies inside the optional inclusive window.
func inWindow(t time.Time, start optional.Option[time.Time], end optional.Option[time.Time]) bool {
	if start.IsSome() && t.Before(start.Unwrap()) {
		return false
	}

	if end.IsSome() && t.After(end.Unwrap()) {
		return false
	}

	return true
}
