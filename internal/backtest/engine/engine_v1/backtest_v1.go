package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/writers"
	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/simulator"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type BacktestEngineV1 struct {
	config            BacktestEngineV1Config
	dataPaths         []string
	log               *logger.Logger
	indicatorRegistry indicator.IndicatorRegistry
	datasource        datasource.DataSource
	initialized       bool
}

// runJob is one strategy entry applied to one data file.
type runJob struct {
	index    int
	dataPath string
	strategy StrategyConfig
}

func NewBacktestEngineV1() engine.Engine {
	return NewBacktestEngineV1WithLogger(nil)
}

// NewBacktestEngineV1WithLogger creates an engine that logs to log.
// A nil logger is replaced by an info level logger on Initialize.
func NewBacktestEngineV1WithLogger(log *logger.Logger) engine.Engine {
	return &BacktestEngineV1{
		config:            EmptyConfig(),
		dataPaths:         nil,
		log:               log,
		indicatorRegistry: nil,
		datasource:        nil,
		initialized:       false,
	}
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	// initialize the logger
	if b.log == nil {
		var loggerError error

		b.log, loggerError = logger.NewLogger()
		if loggerError != nil {
			return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create logger", loggerError)
		}
	}

	parsed, err := ParseConfig(config)
	if err != nil {
		b.log.Error("Invalid run configuration", zap.Error(err))

		return err
	}

	b.config = parsed

	b.dataPaths, err = resolveDataPaths(b.config.DataPath)
	if err != nil {
		b.log.Error("Failed to resolve data path",
			zap.String("data_path", b.config.DataPath),
			zap.Error(err),
		)

		return err
	}

	// initialize the indicator registry
	if b.indicatorRegistry == nil {
		b.indicatorRegistry = indicator.NewDefaultRegistry()
	}

	b.initialized = true

	b.log.Debug("Backtest engine initialized",
		zap.Strings("data_paths", b.dataPaths),
		zap.Int("strategies", len(b.config.Strategies)),
		zap.Int("concurrency", b.config.Concurrency),
	)

	return nil
}

// SetDataSource implements engine.Engine.
func (b *BacktestEngineV1) SetDataSource(datasource datasource.DataSource) error {
	if datasource == nil {
		return errors.New(errors.ErrCodeBacktestNoDatasource, "datasource must not be nil")
	}

	b.datasource = datasource

	return nil
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) (results []engine.RunResult, err error) {
	defer func() {
		if callbacks.OnBacktestEnd != nil {
			(*callbacks.OnBacktestEnd)(err)
		}
	}()

	if err := b.preRunCheck(); err != nil {
		return nil, err
	}

	jobs := b.buildJobs()

	if callbacks.OnBacktestStart != nil {
		if err := (*callbacks.OnBacktestStart)(len(jobs)); err != nil {
			return nil, fmt.Errorf("backtest aborted by start callback: %w", err)
		}
	}

	if b.config.ResultsFolder != "" {
		if err := os.MkdirAll(b.config.ResultsFolder, 0755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to create results folder", err)
		}
	}

	b.log.Info("Backtest started",
		zap.Int("runs", len(jobs)),
		zap.Int("concurrency", b.config.Concurrency),
	)

	results = make([]engine.RunResult, len(jobs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(b.config.Concurrency)

	for _, job := range jobs {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			runID := uuid.New().String()

			if callbacks.OnRunStart != nil {
				if err := (*callbacks.OnRunStart)(runID, job.strategy.Name, job.dataPath); err != nil {
					return fmt.Errorf("run %s aborted by start callback: %w", runID, err)
				}
			}

			result, err := b.runOne(runID, job)
			if err != nil {
				b.log.Error("Run failed",
					zap.String("run_id", runID),
					zap.String("config", job.strategy.Name),
					zap.String("data", job.dataPath),
					zap.Error(err),
				)

				return err
			}

			results[job.index] = result

			if callbacks.OnRunEnd != nil {
				(*callbacks.OnRunEnd)(runID, result)
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	b.log.Info("Backtest finished", zap.Int("runs", len(results)))

	return results, nil
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", fmt.Errorf("failed to generate schema: %w", err)
	}

	return schema, nil
}

// runOne loads the series, computes the signal, simulates and writes the results of one job.
func (b *BacktestEngineV1) runOne(runID string, job runJob) (engine.RunResult, error) {
	started := time.Now()

	series, err := b.datasource.Load(job.dataPath, b.config.StartTime, b.config.EndTime)
	if err != nil {
		return engine.RunResult{}, fmt.Errorf("failed to load %s: %w", job.dataPath, err)
	}

	strategyType, err := types.ParseStrategyType(job.strategy.Strategy)
	if err != nil {
		return engine.RunResult{}, err
	}

	ind, err := b.indicatorRegistry.GetIndicator(strategyType)
	if err != nil {
		return engine.RunResult{}, err
	}

	if err := ind.Config(job.strategy.Params); err != nil {
		return engine.RunResult{}, fmt.Errorf("invalid params for %s: %w", job.strategy.Name, err)
	}

	signals, err := ind.Compute(series)
	if err != nil {
		return engine.RunResult{}, fmt.Errorf("failed to compute %s signal: %w", strategyType, err)
	}

	result, err := simulator.Simulate(series, signals)
	if err != nil {
		return engine.RunResult{}, fmt.Errorf("failed to simulate %s: %w", job.strategy.Name, err)
	}

	runResult := engine.RunResult{
		ID:           runID,
		ConfigName:   job.strategy.Name,
		DataPath:     job.dataPath,
		ResultFolder: "",
		Strategy:     strategyType,
		Params:       job.strategy.Params,
		Series:       series,
		Signals:      signals,
		Result:       result,
	}

	if b.config.ResultsFolder != "" {
		runResult.ResultFolder = getResultFolder(job.strategy.Name, job.dataPath, b)

		summary := types.RunSummary{
			ID:         runID,
			Timestamp:  started,
			Symbol:     series.Symbol(),
			Strategy:   strategyType,
			ConfigName: job.strategy.Name,
			DataPath:   job.dataPath,
			Params:     job.strategy.Params,
			Bars:       series.Len(),
			SignalBars: signals.Len(),
			Stats:      result.Stats,
		}

		if err := writers.NewResultsWriter(runResult.ResultFolder).Write(summary, signals, result); err != nil {
			return engine.RunResult{}, err
		}
	}

	b.log.Debug("Run finished",
		zap.String("run_id", runID),
		zap.String("symbol", series.Symbol()),
		zap.String("config", job.strategy.Name),
		zap.Int("trades", len(result.Trades)),
		zap.Float64("total_profit", result.Stats.TotalProfit),
		zap.Duration("elapsed", time.Since(started)),
	)

	return runResult, nil
}

func (b *BacktestEngineV1) buildJobs() []runJob {
	jobs := make([]runJob, 0, len(b.dataPaths)*len(b.config.Strategies))

	for _, dataPath := range b.dataPaths {
		for _, strategy := range b.config.Strategies {
			jobs = append(jobs, runJob{
				index:    len(jobs),
				dataPath: dataPath,
				strategy: strategy,
			})
		}
	}

	return jobs
}

func (b *BacktestEngineV1) preRunCheck() error {
	if !b.initialized {
		return errors.New(errors.ErrCodeBacktestConfigError, "engine is not initialized")
	}

	if len(b.config.Strategies) == 0 {
		b.log.Error("No strategies loaded")

		return errors.New(errors.ErrCodeBacktestNoStrategies, "no strategies loaded")
	}

	if len(b.dataPaths) == 0 {
		b.log.Error("No data paths loaded")

		return errors.New(errors.ErrCodeBacktestNoDataPaths, "no data paths loaded")
	}

	if b.datasource == nil {
		b.log.Error("No datasource set")

		return errors.New(errors.ErrCodeBacktestNoDatasource, "no datasource set")
	}

	return nil
}

// resolveDataPaths expands pattern. A plain path that matches nothing is kept as is,
// so the data source reports the missing file.
func resolveDataPaths(pattern string) ([]string, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid data_path pattern %q", pattern)
	}

	if len(files) == 0 {
		if hasGlobMeta(pattern) {
			return nil, errors.Newf(errors.ErrCodeBacktestNoDataPaths, "data_path %q matches no files", pattern)
		}

		return []string{pattern}, nil
	}

	sort.Strings(files)

	return files, nil
}
