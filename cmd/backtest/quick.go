package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/writers"
	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/report"
	"github.com/rxtech-lab/argo-backtest/internal/simulator"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

func (a *app) quickCommand() *cli.Command {
	defaults := types.DefaultParams()

	return &cli.Command{
		Name:  "quick",
		Usage: "Backtest one strategy on one data file without a configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "Parquet or CSV price `FILE`", Required: true},
			&cli.StringFlag{Name: "strategy", Aliases: []string{"s"}, Usage: "Strategy to run (sma, rsi, bollinger, macd)", Required: true},
			&cli.StringFlag{Name: "results", Usage: "Folder the results are written to"},
			&cli.IntFlag{Name: "short", Usage: "SMA short window", Value: defaults.ShortWindow},
			&cli.IntFlag{Name: "long", Usage: "SMA long window", Value: defaults.LongWindow},
			&cli.IntFlag{Name: "rsi-window", Usage: "RSI window", Value: defaults.RSIWindow},
			&cli.FloatFlag{Name: "lower", Usage: "RSI lower threshold", Value: defaults.LowerThreshold},
			&cli.FloatFlag{Name: "upper", Usage: "RSI upper threshold", Value: defaults.UpperThreshold},
			&cli.IntFlag{Name: "band-window", Usage: "Bollinger band window", Value: defaults.BandWindow},
			&cli.FloatFlag{Name: "band-multiplier", Usage: "Bollinger band multiplier", Value: defaults.BandMultiplier},
			&cli.IntFlag{Name: "fast", Usage: "MACD fast span", Value: defaults.FastSpan},
			&cli.IntFlag{Name: "slow", Usage: "MACD slow span", Value: defaults.SlowSpan},
			&cli.IntFlag{Name: "signal", Usage: "MACD signal span", Value: defaults.SignalSpan},
			&cli.TimestampFlag{
				Name:   "start",
				Usage:  "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{Layouts: []string{time.DateOnly}},
			},
			&cli.TimestampFlag{
				Name:   "end",
				Usage:  "End date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{Layouts: []string{time.DateOnly}},
			},
		},
		Action: a.quickAction,
	}
}

// paramsFromFlags reads the strategy parameters of the quick command.
func paramsFromFlags(cmd *cli.Command) types.StrategyParams {
	return types.StrategyParams{
		ShortWindow:    int(cmd.Int("short")),
		LongWindow:     int(cmd.Int("long")),
		RSIWindow:      int(cmd.Int("rsi-window")),
		LowerThreshold: cmd.Float("lower"),
		UpperThreshold: cmd.Float("upper"),
		BandWindow:     int(cmd.Int("band-window")),
		BandMultiplier: cmd.Float("band-multiplier"),
		FastSpan:       int(cmd.Int("fast")),
		SlowSpan:       int(cmd.Int("slow")),
		SignalSpan:     int(cmd.Int("signal")),
	}
}

func timeFlag(cmd *cli.Command, name string) optional.Option[time.Time] {
	if !cmd.IsSet(name) {
		return optional.None[time.Time]()
	}

	// dates are interpreted as UTC midnight, matching the loaded bars
	t := cmd.Timestamp(name)

	return optional.Some(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
}

func (a *app) quickAction(_ context.Context, cmd *cli.Command) error {
	source, err := datasource.NewDataSource(":memory:", a.log)
	if err != nil {
		return fmt.Errorf("failed to create data source: %w", err)
	}
	defer source.Close()

	dataPath := cmd.String("data")

	series, err := source.Load(dataPath, timeFlag(cmd, "start"), timeFlag(cmd, "end"))
	if err != nil {
		return err
	}

	params := paramsFromFlags(cmd)

	signals, err := indicator.ComputeSignal(series, cmd.String("strategy"), params)
	if err != nil {
		return err
	}

	result, err := simulator.Simulate(series, signals)
	if err != nil {
		return err
	}

	if folder := cmd.String("results"); folder != "" {
		summary := types.RunSummary{
			ID:         uuid.New().String(),
			Timestamp:  time.Now(),
			Symbol:     series.Symbol(),
			Strategy:   signals.Strategy,
			ConfigName: "quick",
			DataPath:   dataPath,
			Params:     params,
			Bars:       series.Len(),
			SignalBars: signals.Len(),
			Stats:      result.Stats,
		}

		if err := writers.NewResultsWriter(folder).Write(summary, signals, result); err != nil {
			return err
		}
	}

	return report.RenderResult(output(cmd), result)
}
