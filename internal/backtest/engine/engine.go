package engine

import (
	"context"

	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Lifecycle callback types for backtest phases
// All callbacks with error return can abort execution if they return an error.
// Run callbacks may be invoked concurrently from several goroutines.

// OnBacktestStartCallback is called once before any run starts.
type OnBacktestStartCallback func(totalRuns int) error

// OnBacktestEndCallback is called when the entire backtest completes (always called via defer).
type OnBacktestEndCallback func(err error)

// OnRunStartCallback is called when processing of a strategy+data file combination begins.
// runID is a unique identifier for this run, generated before processing starts.
type OnRunStartCallback func(runID string, configName string, dataPath string) error

// OnRunEndCallback is called when a run completed successfully.
type OnRunEndCallback func(runID string, result RunResult)

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBacktestStart *OnBacktestStartCallback
	OnBacktestEnd   *OnBacktestEndCallback
	OnRunStart      *OnRunStartCallback
	OnRunEnd        *OnRunEndCallback
}

// RunResult is the outcome of one strategy applied to one data file.
type RunResult struct {
	// ID is the unique identifier of the run
	ID string
	// ConfigName is the name of the strategy entry in the run configuration
	ConfigName string
	// DataPath is the data file the series was loaded from
	DataPath string
	// ResultFolder is where results were written, empty when nothing was written
	ResultFolder string
	// Strategy and Params that produced the signals
	Strategy types.StrategyType
	Params   types.StrategyParams
	// Series is the loaded price series
	Series types.PriceSeries
	// Signals is the computed signal series
	Signals types.SignalSeries
	// Result holds trades and statistics
	Result types.BacktestResult
}

type Engine interface {
	// Initialize the engine with the given YAML run configuration.
	// The configuration names the data files, the strategies and the optional time window.
	Initialize(config string) error
	// SetDataSource sets the data source for the engine.
	SetDataSource(dataSource datasource.DataSource) error
	// Run runs every strategy against every data file and returns the results in
	// data file major order. The context can be used to cancel the backtest operation.
	// Use LifecycleCallbacks to receive notifications at different phases of the backtest.
	Run(ctx context.Context, callbacks LifecycleCallbacks) ([]RunResult, error)
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
