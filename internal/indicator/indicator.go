package indicator

import (
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// Indicator interface defines methods that any signal generating strategy must implement
type Indicator interface {
	// Name returns the strategy this indicator implements
	Name() types.StrategyType
	// Config applies the parameters owned by this indicator and validates them
	Config(params types.StrategyParams) error
	// WarmUp returns the number of leading bars that lack a fully formed indicator value
	WarmUp() int
	// Compute returns one signal point per bar after the warm-up window
	Compute(series types.PriceSeries) (types.SignalSeries, error)
}

// compare maps the ordering of two indicator lines to a signal.
func compare(a, b float64) types.SignalValue {
	switch {
	case a > b:
		return types.SignalBullish
	case a < b:
		return types.SignalBearish
	default:
		return types.SignalNeutral
	}
}

func emptySignalSeries(strategy types.StrategyType, warmUp int) types.SignalSeries {
	return types.SignalSeries{
		Strategy: strategy,
		WarmUp:   warmUp,
		Points:   []types.SignalPoint{},
	}
}

// shortSeriesOrError turns an insufficient data error into an empty signal series.
// Any other error is returned unchanged.
func shortSeriesOrError(strategy types.StrategyType, warmUp int, err error) (types.SignalSeries, error) {
	if errors.IsInsufficientDataError(err) {
		return emptySignalSeries(strategy, warmUp), nil
	}

	return types.SignalSeries{}, err
}

func newSignalPoint(bar types.PriceBar, value types.SignalValue, indicators map[string]float64) types.SignalPoint {
	return types.SignalPoint{
		Time:       bar.Time,
		Price:      bar.Price,
		Value:      value,
		Indicators: indicators,
	}
}

func validatePositive(name string, value int) error {
	if value <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be a positive integer, got %d", name, value)
	}

	return nil
}
