package main

import (
	"context"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	enginev1 "github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/report"
)

func (a *app) runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run every strategy of a YAML configuration against every data file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the run configuration `FILE`",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Only print the comparison table",
			},
		},
		Action: a.runAction,
	}
}

func (a *app) runAction(ctx context.Context, cmd *cli.Command) error {
	config, err := os.ReadFile(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	backtester := enginev1.NewBacktestEngineV1WithLogger(a.log)
	if err := backtester.Initialize(string(config)); err != nil {
		return fmt.Errorf("failed to initialize backtest engine: %w", err)
	}

	duckdb, err := datasource.NewDataSource(":memory:", a.log)
	if err != nil {
		return fmt.Errorf("failed to create data source: %w", err)
	}

	source := datasource.NewCachedDataSource(duckdb)
	defer source.Close()

	if err := backtester.SetDataSource(source); err != nil {
		return err
	}

	var bar *progressbar.ProgressBar

	onStart := engine.OnBacktestStartCallback(func(totalRuns int) error {
		bar = progressbar.NewOptions(totalRuns,
			progressbar.OptionSetDescription("Backtesting"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWriter(os.Stderr),
		)

		return nil
	})
	onRunEnd := engine.OnRunEndCallback(func(runID string, result engine.RunResult) {
		a.log.Debug("Run completed",
			zap.String("run_id", runID),
			zap.String("config", result.ConfigName),
			zap.String("symbol", result.Result.Symbol),
		)

		if bar != nil {
			_ = bar.Add(1)
		}
	})
	onEnd := engine.OnBacktestEndCallback(func(err error) {
		if bar != nil {
			_ = bar.Finish()
		}
	})

	results, err := backtester.Run(ctx, engine.LifecycleCallbacks{
		OnBacktestStart: &onStart,
		OnBacktestEnd:   &onEnd,
		OnRunStart:      nil,
		OnRunEnd:        &onRunEnd,
	})
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	w := output(cmd)
	rows := make([]report.RunRow, 0, len(results))

	for _, result := range results {
		if !cmd.Bool("quiet") {
			if err := report.RenderResult(w, result.Result); err != nil {
				return err
			}
		}

		rows = append(rows, report.RunRow{
			Name:     result.ConfigName,
			Symbol:   result.Result.Symbol,
			Strategy: result.Strategy,
			Stats:    result.Result.Stats,
		})
	}

	return report.RenderComparison(w, rows)
}
