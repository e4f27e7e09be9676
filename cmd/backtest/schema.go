package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	enginev1 "github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/internal/version"
)

const (
	schemaFileName       = "backtest-config.json"
	sampleConfigFileName = "backtest-config.yaml"
)

// sampleConfig is the starter configuration written next to the schema.
type sampleConfig struct {
	Version       string                    `yaml:"version"`
	DataPath      string                    `yaml:"data_path"`
	ResultsFolder string                    `yaml:"results_folder"`
	Concurrency   int                       `yaml:"concurrency"`
	Strategies    []enginev1.StrategyConfig `yaml:"strategies"`
}

func newSampleConfig() sampleConfig {
	strategies := make([]enginev1.StrategyConfig, 0, len(types.AllStrategyTypes))
	for _, strategy := range types.AllStrategyTypes {
		strategies = append(strategies, enginev1.StrategyConfig{
			Name:     string(strategy),
			Strategy: string(strategy),
			Params:   types.DefaultParams(),
		})
	}

	return sampleConfig{
		Version:       version.GetVersion(),
		DataPath:      "data/*.parquet",
		ResultsFolder: "results",
		Concurrency:   enginev1.DefaultConcurrency,
		Strategies:    strategies,
	}
}

func (a *app) schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON schema of the run configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "output",
				Usage: "Write the schema and a sample configuration into this folder instead",
			},
		},
		Action: a.schemaAction,
	}
}

func (a *app) schemaAction(_ context.Context, cmd *cli.Command) error {
	config := enginev1.EmptyConfig()

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	folder := cmd.String("output")
	if folder == "" {
		_, err = fmt.Fprintln(output(cmd), schema)

		return err
	}

	if err := os.MkdirAll(folder, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	schemaPath := filepath.Join(folder, schemaFileName)
	if err := os.WriteFile(schemaPath, []byte(schema), 0644); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}

	a.log.Info("Schema generated", zap.String("path", schemaPath))

	// an existing sample config is left untouched
	samplePath := filepath.Join(folder, sampleConfigFileName)
	if _, err := os.Stat(samplePath); err == nil {
		return nil
	}

	sample, err := yaml.Marshal(newSampleConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal sample config: %w", err)
	}

	sample = append([]byte("# yaml-language-server: $schema="+schemaFileName+"\n"), sample...)
	if err := os.WriteFile(samplePath, sample, 0644); err != nil {
		return fmt.Errorf("failed to write sample config: %w", err)
	}

	a.log.Info("Sample config generated", zap.String("path", samplePath))

	return nil
}
