package indicator

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var testStart = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func newTestSeries(t *testing.T, prices ...float64) types.PriceSeries {
	t.Helper()

	bars := make([]types.PriceBar, len(prices))
	for i, p := range prices {
		bars[i] = types.PriceBar{Time: testStart.AddDate(0, 0, i), Price: p}
	}

	series, err := types.NewPriceSeries("TEST", bars)
	require.NoError(t, err)

	return series
}

func flatPrices(n int, price float64) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = price
	}

	return prices
}

func linearPrices(n int, start, step float64) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = start + float64(i)*step
	}

	return prices
}

type IndicatorTestSuite struct {
	suite.Suite
}

func TestIndicatorSuite(t *testing.T) {
	suite.Run(t, new(IndicatorTestSuite))
}

func (suite *IndicatorTestSuite) TestCompare() {
	suite.Equal(types.SignalBullish, compare(2, 1))
	suite.Equal(types.SignalBearish, compare(1, 2))
	suite.Equal(types.SignalNeutral, compare(1, 1))
}

// Every variant must align its points with the tail of the price series.
func (suite *IndicatorTestSuite) TestAlignmentForAllStrategies() {
	prices := []float64{10, 11, 12, 11, 10, 9, 10, 11, 13, 12, 11, 12, 14, 15, 13, 12, 11, 12, 13, 14}
	series := newTestSeries(suite.T(), prices...)

	params := types.DefaultParams()
	params.ShortWindow = 3
	params.LongWindow = 5
	params.RSIWindow = 4
	params.BandWindow = 4
	params.FastSpan = 3
	params.SlowSpan = 6
	params.SignalSpan = 3

	registry := NewDefaultRegistry()

	for _, strategy := range types.AllStrategyTypes {
		ind, err := registry.GetIndicator(strategy)
		suite.Require().NoError(err)
		suite.Require().NoError(ind.Config(params))

		signals, err := ind.Compute(series)
		suite.Require().NoError(err, strategy)

		suite.Equal(strategy, signals.Strategy)
		suite.Equal(ind.WarmUp(), signals.WarmUp, strategy)
		suite.Equal(len(prices)-ind.WarmUp(), signals.Len(), strategy)

		for i, point := range signals.Points {
			bar := series.At(signals.WarmUp + i)
			suite.True(bar.Time.Equal(point.Time), "%s point %d", strategy, i)
			suite.Equal(bar.Price, point.Price)
			suite.NotEmpty(point.Indicators)
		}
	}
}

func (suite *IndicatorTestSuite) TestFlatSeriesHasNoBullishSignal() {
	series := newTestSeries(suite.T(), flatPrices(60, 42)...)
	registry := NewDefaultRegistry()

	for _, strategy := range types.AllStrategyTypes {
		ind, err := registry.GetIndicator(strategy)
		suite.Require().NoError(err)

		signals, err := ind.Compute(series)
		suite.Require().NoError(err)
		suite.NotZero(signals.Len(), strategy)

		for _, value := range signals.Values() {
			suite.NotEqual(types.SignalBullish, value, strategy)
		}
	}
}

func (suite *IndicatorTestSuite) TestEmptySeriesIsInvalidInput() {
	registry := NewDefaultRegistry()

	for _, strategy := range types.AllStrategyTypes {
		ind, err := registry.GetIndicator(strategy)
		suite.Require().NoError(err)

		_, err = ind.Compute(types.PriceSeries{})
		suite.Error(err)
		suite.True(errors.IsInvalidInput(err), strategy)
	}
}
