package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type BollingerBandsTestSuite struct {
	suite.Suite
}

func TestBollingerBandsSuite(t *testing.T) {
	suite.Run(t, new(BollingerBandsTestSuite))
}

func (suite *BollingerBandsTestSuite) newIndicator(window int, multiplier float64) Indicator {
	ind := NewBollingerBands()

	params := types.DefaultParams()
	params.BandWindow = window
	params.BandMultiplier = multiplier
	suite.Require().NoError(ind.Config(params))

	return ind
}

func (suite *BollingerBandsTestSuite) TestDefaults() {
	bb := NewBollingerBands().(*BollingerBands)
	suite.Equal(20, bb.period)
	suite.Equal(2.0, bb.multiplier)
	suite.Equal(19, bb.WarmUp())
}

func (suite *BollingerBandsTestSuite) TestBandValues() {
	series := newTestSeries(suite.T(), 1, 2, 3, 4, 5)

	signals, err := suite.newIndicator(3, 2).Compute(series)
	suite.Require().NoError(err)
	suite.Equal(3, signals.Len())

	first := signals.Points[0]
	suite.Equal(2.0, first.Indicators[ValueMiddleBand])
	suite.Equal(1.0, first.Indicators[ValueStdDev])
	suite.Equal(4.0, first.Indicators[ValueUpperBand])
	suite.Equal(0.0, first.Indicators[ValueLowerBand])
	suite.Equal(types.SignalNeutral, first.Value)
}

func (suite *BollingerBandsTestSuite) TestZeroMultiplierComparesWithMean() {
	series := newTestSeries(suite.T(), 1, 2, 3, 2, 2)

	signals, err := suite.newIndicator(2, 0).Compute(series)
	suite.Require().NoError(err)
	suite.Equal([]types.SignalValue{-1, -1, 1, 0}, signals.Values())
}

func (suite *BollingerBandsTestSuite) TestBreakouts() {
	series := newTestSeries(suite.T(), 10, 10.5, 10, 10.5, 10, 20, 10, 10.5, 10, 0)

	signals, err := suite.newIndicator(5, 1).Compute(series)
	suite.Require().NoError(err)

	// the spike to 20 sits above the upper band and the drop to 0 below the lower band
	suite.Equal(types.SignalBearish, signals.Points[1].Value)
	suite.Equal(types.SignalBullish, signals.Points[len(signals.Points)-1].Value)
}

func (suite *BollingerBandsTestSuite) TestShortSeriesYieldsEmptySignal() {
	signals, err := NewBollingerBands().Compute(newTestSeries(suite.T(), linearPrices(19, 1, 1)...))
	suite.NoError(err)
	suite.Equal(0, signals.Len())
}

func (suite *BollingerBandsTestSuite) TestInvalidConfig() {
	params := types.DefaultParams()
	params.BandWindow = 1
	err := NewBollingerBands().Config(params)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))

	params = types.DefaultParams()
	params.BandMultiplier = -0.5
	err = NewBollingerBands().Config(params)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidMultiplier))
}
