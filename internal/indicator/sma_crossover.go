package indicator

import (
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

const (
	ValueSMAShort = "sma_short"
	ValueSMALong  = "sma_long"
)

// SMACrossover signals bullish while the short moving average is above the long one.
type SMACrossover struct {
	shortWindow int
	longWindow  int
}

// NewSMACrossover creates a new crossover indicator with default configuration.
func NewSMACrossover() Indicator {
	defaults := types.DefaultParams()

	return &SMACrossover{
		shortWindow: defaults.ShortWindow,
		longWindow:  defaults.LongWindow,
	}
}

// Name returns the name of the indicator.
func (s *SMACrossover) Name() types.StrategyType {
	return types.StrategyTypeSMA
}

// Config reads ShortWindow and LongWindow.
func (s *SMACrossover) Config(params types.StrategyParams) error {
	if err := validatePositive("shortWindow", params.ShortWindow); err != nil {
		return err
	}

	if err := validatePositive("longWindow", params.LongWindow); err != nil {
		return err
	}

	s.shortWindow = params.ShortWindow
	s.longWindow = params.LongWindow

	return nil
}

// WarmUp is the number of bars before both averages are defined.
func (s *SMACrossover) WarmUp() int {
	return max(s.shortWindow, s.longWindow) - 1
}

// Compute implements Indicator.
func (s *SMACrossover) Compute(series types.PriceSeries) (types.SignalSeries, error) {
	if err := series.Validate(); err != nil {
		return types.SignalSeries{}, err
	}

	prices := series.Prices()
	warmUp := s.WarmUp()

	short, err := rollingMean(prices, s.shortWindow)
	if err != nil {
		return shortSeriesOrError(s.Name(), warmUp, err)
	}

	long, err := rollingMean(prices, s.longWindow)
	if err != nil {
		return shortSeriesOrError(s.Name(), warmUp, err)
	}

	points := make([]types.SignalPoint, 0, len(prices)-warmUp)

	for i := warmUp; i < len(prices); i++ {
		shortValue := short[i-s.shortWindow+1]
		longValue := long[i-s.longWindow+1]

		points = append(points, newSignalPoint(series.At(i), compare(shortValue, longValue), map[string]float64{
			ValueSMAShort: shortValue,
			ValueSMALong:  longValue,
		}))
	}

	return types.SignalSeries{
		Strategy: s.Name(),
		WarmUp:   warmUp,
		Points:   points,
	}, nil
}
