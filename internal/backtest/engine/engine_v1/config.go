package engine

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/internal/version"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConcurrency = 1
	MaxConcurrency     = 64
)

// StrategyConfig is one strategy entry of the run configuration.
type StrategyConfig struct {
	Name     string               `yaml:"name" json:"name" jsonschema:"title=Name,description=Unique name of this entry used for the results folder" validate:"required"`
	Strategy string               `yaml:"strategy" json:"strategy" jsonschema:"title=Strategy,description=Signal strategy to run,enum=sma,enum=rsi,enum=bollinger,enum=macd" validate:"required"`
	Params   types.StrategyParams `yaml:"params" json:"params" jsonschema:"title=Params,description=Strategy parameters; omitted keys keep their defaults"`
}

type BacktestEngineV1Config struct {
	Version       string                     `yaml:"version" json:"version" jsonschema:"title=Version,description=Engine version the configuration was written for" validate:"required"`
	DataPath      string                     `yaml:"data_path" json:"data_path" jsonschema:"title=Data Path,description=Glob of parquet or csv price files" validate:"required"`
	ResultsFolder string                     `yaml:"results_folder" json:"results_folder" jsonschema:"title=Results Folder,description=Output folder; nothing is written when empty"`
	Concurrency   int                        `yaml:"concurrency" json:"concurrency" jsonschema:"title=Concurrency,description=Maximum number of runs executed at once,minimum=1,maximum=64,default=1" validate:"gte=1,lte=64"`
	StartTime     optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start time for the backtest period"`
	EndTime       optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end time for the backtest period"`
	Strategies    []StrategyConfig           `yaml:"strategies" json:"strategies" jsonschema:"title=Strategies,description=Strategies applied to every data file,minItems=1" validate:"dive"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config
func (c *BacktestEngineV1Config) UnmarshalYAML(value *yaml.Node) error {
	type Strategy struct {
		Name     string                `yaml:"name"`
		Strategy string                `yaml:"strategy"`
		Params   *types.StrategyParams `yaml:"params"`
	}

	type Config struct {
		Version       string     `yaml:"version"`
		DataPath      string     `yaml:"data_path"`
		ResultsFolder string     `yaml:"results_folder"`
		Concurrency   *int       `yaml:"concurrency"`
		StartTime     *time.Time `yaml:"start_time"`
		EndTime       *time.Time `yaml:"end_time"`
		Strategies    []Strategy `yaml:"strategies"`
	}

	var config Config
	if err := value.Decode(&config); err != nil {
		return err
	}

	*c = EmptyConfig()
	c.Version = config.Version
	c.DataPath = config.DataPath
	c.ResultsFolder = config.ResultsFolder

	if config.Concurrency != nil {
		c.Concurrency = *config.Concurrency
	}

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	for _, s := range config.Strategies {
		params := types.DefaultParams()
		if s.Params != nil {
			params = *s.Params
		}

		c.Strategies = append(c.Strategies, StrategyConfig{
			Name:     s.Name,
			Strategy: s.Strategy,
			Params:   params,
		})
	}

	return nil
}

// ParseConfig decodes and validates a YAML run configuration.
func ParseConfig(content string) (BacktestEngineV1Config, error) {
	var config BacktestEngineV1Config
	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return EmptyConfig(), errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse run configuration", err)
	}

	if err := config.Validate(); err != nil {
		return EmptyConfig(), err
	}

	return config, nil
}

// Validate checks field constraints, the time window, strategy names and version compatibility.
func (c *BacktestEngineV1Config) Validate() error {
	if len(c.Strategies) == 0 {
		return errors.New(errors.ErrCodeBacktestNoStrategies, "run configuration has no strategies")
	}

	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid run configuration", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "end_time %s is before start_time %s",
			c.EndTime.Unwrap().Format(time.RFC3339), c.StartTime.Unwrap().Format(time.RFC3339))
	}

	names := make(map[string]bool, len(c.Strategies))

	for _, s := range c.Strategies {
		if names[s.Name] {
			return errors.Newf(errors.ErrCodeInvalidConfiguration, "duplicate strategy name %q", s.Name)
		}

		names[s.Name] = true

		if _, err := types.ParseStrategyType(s.Strategy); err != nil {
			return err
		}
	}

	return version.CheckVersionCompatibility(version.Version, c.Version)
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// EmptyConfig returns a BacktestEngineV1Config with default values
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		Version:       "",
		DataPath:      "",
		ResultsFolder: "",
		Concurrency:   DefaultConcurrency,
		StartTime:     optional.None[time.Time](),
		EndTime:       optional.None[time.Time](),
		Strategies:    nil,
	}
}
