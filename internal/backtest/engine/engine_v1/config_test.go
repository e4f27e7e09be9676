package engine

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestParseConfigDefaults() {
	config, err := ParseConfig(`
version: "1.0.0"
data_path: data/SPY.parquet
strategies:
  - name: ma
    strategy: sma
`)
	suite.Require().NoError(err)

	suite.Equal("1.0.0", config.Version)
	suite.Equal("data/SPY.parquet", config.DataPath)
	suite.Empty(config.ResultsFolder)
	suite.Equal(DefaultConcurrency, config.Concurrency)
	suite.True(config.StartTime.IsNone())
	suite.True(config.EndTime.IsNone())
	suite.Require().Len(config.Strategies, 1)
	suite.Equal("ma", config.Strategies[0].Name)
	suite.Equal("sma", config.Strategies[0].Strategy)
	suite.Equal(types.DefaultParams(), config.Strategies[0].Params)
}

func (suite *ConfigTestSuite) TestParseConfigFull() {
	config, err := ParseConfig(`
version: v1.0.3
data_path: data/*.parquet
results_folder: results
concurrency: 4
start_time: 2024-01-01T00:00:00Z
end_time: 2024-06-30T00:00:00Z
strategies:
  - name: fast_ma
    strategy: ma_crossover
    params:
      short_window: 5
      long_window: 10
  - name: rsi
    strategy: RSI
    params:
      rsi_window: 7
`)
	suite.Require().NoError(err)

	suite.Equal(4, config.Concurrency)
	suite.Equal("results", config.ResultsFolder)
	suite.True(config.StartTime.Unwrap().Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	suite.True(config.EndTime.Unwrap().Equal(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)))

	suite.Require().Len(config.Strategies, 2)
	suite.Equal(5, config.Strategies[0].Params.ShortWindow)
	suite.Equal(10, config.Strategies[0].Params.LongWindow)
	// omitted keys keep their defaults
	suite.Equal(14, config.Strategies[0].Params.RSIWindow)
	suite.Equal(7, config.Strategies[1].Params.RSIWindow)
	suite.Equal(30.0, config.Strategies[1].Params.LowerThreshold)
}

func (suite *ConfigTestSuite) TestParseConfigErrors() {
	tests := []struct {
		name    string
		content string
		code    errors.ErrorCode
	}{
		{
			name:    "malformed yaml",
			content: "version: [1.0.0",
			code:    errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "no strategies",
			content: `
version: "1.0.0"
data_path: data/SPY.parquet
strategies: []
`,
			code: errors.ErrCodeBacktestNoStrategies,
		},
		{
			name: "missing data path",
			content: `
version: "1.0.0"
strategies:
  - name: ma
    strategy: sma
`,
			code: errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "missing version",
			content: `
data_path: data/SPY.parquet
strategies:
  - name: ma
    strategy: sma
`,
			code: errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "missing strategy name",
			content: `
version: "1.0.0"
data_path: data/SPY.parquet
strategies:
  - strategy: sma
`,
			code: errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "zero concurrency",
			content: `
version: "1.0.0"
data_path: data/SPY.parquet
concurrency: 0
strategies:
  - name: ma
    strategy: sma
`,
			code: errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "band window below two",
			content: `
version: "1.0.0"
data_path: data/SPY.parquet
strategies:
  - name: bb
    strategy: bollinger
    params:
      band_window: 1
`,
			code: errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "end before start",
			content: `
version: "1.0.0"
data_path: data/SPY.parquet
start_time: 2024-02-01T00:00:00Z
end_time: 2024-01-01T00:00:00Z
strategies:
  - name: ma
    strategy: sma
`,
			code: errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "duplicate names",
			content: `
version: "1.0.0"
data_path: data/SPY.parquet
strategies:
  - name: ma
    strategy: sma
  - name: ma
    strategy: rsi
`,
			code: errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "unknown strategy",
			content: `
version: "1.0.0"
data_path: data/SPY.parquet
strategies:
  - name: ichimoku
    strategy: ichimoku
`,
			code: errors.ErrCodeUnknownStrategy,
		},
		{
			name: "major version mismatch",
			content: `
version: "2.0.0"
data_path: data/SPY.parquet
strategies:
  - name: ma
    strategy: sma
`,
			code: errors.ErrCodeVersionMismatch,
		},
		{
			name: "invalid version",
			content: `
version: latest
data_path: data/SPY.parquet
strategies:
  - name: ma
    strategy: sma
`,
			code: errors.ErrCodeInvalidVersion,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := ParseConfig(tc.content)
			suite.Require().Error(err)
			suite.Equal(tc.code, errors.GetCode(err), err.Error())
		})
	}
}

func (suite *ConfigTestSuite) TestDevelopmentVersionSkipsCheck() {
	_, err := ParseConfig(`
version: main
data_path: data/SPY.parquet
strategies:
  - name: ma
    strategy: sma
`)
	suite.NoError(err)
}

func (suite *ConfigTestSuite) TestEmptyConfig() {
	config := EmptyConfig()

	suite.Equal(DefaultConcurrency, config.Concurrency)
	suite.True(config.StartTime.IsNone())
	suite.True(config.EndTime.IsNone())
	suite.Nil(config.Strategies)
}

func (suite *ConfigTestSuite) TestGenerateSchemaJSON() {
	config := EmptyConfig()

	schema, err := config.GenerateSchemaJSON()
	suite.Require().NoError(err)

	suite.Contains(schema, `"title": "backtest-engine-v1-config"`)
	suite.Contains(schema, `"data_path"`)
	suite.Contains(schema, `"strategies"`)
	suite.Contains(schema, `"short_window"`)
	suite.Contains(schema, `"date-time"`)
}
