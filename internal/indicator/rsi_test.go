package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RSITestSuite struct {
	suite.Suite
}

func TestRSISuite(t *testing.T) {
	suite.Run(t, new(RSITestSuite))
}

func (suite *RSITestSuite) newIndicator(window int) Indicator {
	ind := NewRSI()

	params := types.DefaultParams()
	params.RSIWindow = window
	suite.Require().NoError(ind.Config(params))

	return ind
}

func (suite *RSITestSuite) TestDefaults() {
	rsi := NewRSI().(*RSI)
	suite.Equal(14, rsi.period)
	suite.Equal(30.0, rsi.lowerThreshold)
	suite.Equal(70.0, rsi.upperThreshold)
	suite.Equal(14, rsi.WarmUp())
}

func (suite *RSITestSuite) TestStrictlyRisingIsOverbought() {
	series := newTestSeries(suite.T(), linearPrices(20, 100, 1)...)

	signals, err := NewRSI().Compute(series)
	suite.Require().NoError(err)
	suite.Equal(6, signals.Len())

	for _, point := range signals.Points {
		suite.Equal(100.0, point.Indicators[ValueRSI])
		suite.Equal(0.0, point.Indicators[ValueAvgLoss])
		suite.Equal(types.SignalBearish, point.Value)
	}
}

func (suite *RSITestSuite) TestStrictlyFallingIsOversold() {
	series := newTestSeries(suite.T(), linearPrices(20, 100, -1)...)

	signals, err := NewRSI().Compute(series)
	suite.Require().NoError(err)

	for _, point := range signals.Points {
		suite.Equal(0.0, point.Indicators[ValueRSI])
		suite.Equal(types.SignalBullish, point.Value)
	}
}

func (suite *RSITestSuite) TestAlternatingIsNeutral() {
	series := newTestSeries(suite.T(), 1, 2, 1, 2, 1)

	signals, err := suite.newIndicator(2).Compute(series)
	suite.Require().NoError(err)
	suite.Equal(2, signals.WarmUp)
	suite.Equal(3, signals.Len())

	for _, point := range signals.Points {
		suite.Equal(0.5, point.Indicators[ValueAvgGain])
		suite.Equal(0.5, point.Indicators[ValueAvgLoss])
		suite.Equal(50.0, point.Indicators[ValueRSI])
		suite.Equal(types.SignalNeutral, point.Value)
	}

	suite.True(series.At(2).Time.Equal(signals.Points[0].Time))
}

func (suite *RSITestSuite) TestShortSeriesYieldsEmptySignal() {
	series := newTestSeries(suite.T(), linearPrices(14, 1, 1)...)

	signals, err := NewRSI().Compute(series)
	suite.NoError(err)
	suite.Equal(0, signals.Len())

	signals, err = NewRSI().Compute(newTestSeries(suite.T(), 5))
	suite.NoError(err)
	suite.Equal(0, signals.Len())
}

func (suite *RSITestSuite) TestInvalidConfig() {
	params := types.DefaultParams()
	params.RSIWindow = 0
	err := NewRSI().Config(params)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))

	params = types.DefaultParams()
	params.LowerThreshold = 80
	err = NewRSI().Config(params)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidThreshold))

	params = types.DefaultParams()
	params.UpperThreshold = 101
	err = NewRSI().Config(params)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidThreshold))
}
