package types

import (
	"testing"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type StrategyTestSuite struct {
	suite.Suite
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

func (suite *StrategyTestSuite) TestParseStrategyType() {
	tests := []struct {
		input    string
		expected StrategyType
	}{
		{"SMA", StrategyTypeSMA},
		{"ma-crossover", StrategyTypeSMA},
		{"rsi", StrategyTypeRSI},
		{"Bollinger", StrategyTypeBollinger},
		{"bb", StrategyTypeBollinger},
		{" MACD ", StrategyTypeMACD},
	}

	for _, tc := range tests {
		suite.Run(tc.input, func() {
			strategy, err := ParseStrategyType(tc.input)
			suite.NoError(err)
			suite.Equal(tc.expected, strategy)
		})
	}
}

func (suite *StrategyTestSuite) TestParseStrategyTypeUnknown() {
	_, err := ParseStrategyType("ichimoku")
	suite.Error(err)
	suite.True(errors.IsUnknownStrategy(err))

	_, err = ParseStrategyType("")
	suite.True(errors.IsUnknownStrategy(err))
}

func (suite *StrategyTestSuite) TestDefaultParams() {
	params := DefaultParams()
	suite.Equal(20, params.ShortWindow)
	suite.Equal(50, params.LongWindow)
	suite.Equal(14, params.RSIWindow)
	suite.Equal(30.0, params.LowerThreshold)
	suite.Equal(70.0, params.UpperThreshold)
	suite.Equal(20, params.BandWindow)
	suite.Equal(2.0, params.BandMultiplier)
	suite.Equal(12, params.FastSpan)
	suite.Equal(26, params.SlowSpan)
	suite.Equal(9, params.SignalSpan)
}

func (suite *StrategyTestSuite) TestUnmarshalYAMLKeepsDefaults() {
	var params StrategyParams

	err := yaml.Unmarshal([]byte("short_window: 5\nband_multiplier: 0\n"), &params)
	suite.Require().NoError(err)

	suite.Equal(5, params.ShortWindow)
	suite.Equal(0.0, params.BandMultiplier)
	suite.Equal(50, params.LongWindow)
	suite.Equal(14, params.RSIWindow)
	suite.Equal(9, params.SignalSpan)
}
