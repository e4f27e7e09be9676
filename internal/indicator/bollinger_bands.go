package indicator

import (
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

const (
	ValueMiddleBand = "middle"
	ValueUpperBand  = "upper"
	ValueLowerBand  = "lower"
	ValueStdDev     = "std"
)

// BollingerBands signals bullish when price closes below the lower band
// and bearish when it closes above the upper band.
type BollingerBands struct {
	period     int
	multiplier float64
}

// NewBollingerBands creates a new Bollinger Bands indicator with default configuration.
func NewBollingerBands() Indicator {
	defaults := types.DefaultParams()

	return &BollingerBands{
		period:     defaults.BandWindow,
		multiplier: defaults.BandMultiplier,
	}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() types.StrategyType {
	return types.StrategyTypeBollinger
}

// Config reads BandWindow and BandMultiplier.
func (bb *BollingerBands) Config(params types.StrategyParams) error {
	if params.BandWindow < 2 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "bandWindow must be at least 2, got %d", params.BandWindow)
	}

	if params.BandMultiplier < 0 {
		return errors.Newf(errors.ErrCodeInvalidMultiplier, "bandMultiplier must not be negative, got %v", params.BandMultiplier)
	}

	bb.period = params.BandWindow
	bb.multiplier = params.BandMultiplier

	return nil
}

// WarmUp is the number of bars before the first full window.
func (bb *BollingerBands) WarmUp() int {
	return bb.period - 1
}

// Compute implements Indicator.
func (bb *BollingerBands) Compute(series types.PriceSeries) (types.SignalSeries, error) {
	if err := series.Validate(); err != nil {
		return types.SignalSeries{}, err
	}

	prices := series.Prices()

	means, err := rollingMean(prices, bb.period)
	if err != nil {
		return shortSeriesOrError(bb.Name(), bb.WarmUp(), err)
	}

	stds, err := rollingStdDev(prices, bb.period)
	if err != nil {
		return shortSeriesOrError(bb.Name(), bb.WarmUp(), err)
	}

	points := make([]types.SignalPoint, 0, len(means))

	for k := range means {
		i := k + bb.WarmUp()
		upper := means[k] + bb.multiplier*stds[k]
		lower := means[k] - bb.multiplier*stds[k]

		signal := types.SignalNeutral
		if prices[i] < lower {
			signal = types.SignalBullish
		} else if prices[i] > upper {
			signal = types.SignalBearish
		}

		points = append(points, newSignalPoint(series.At(i), signal, map[string]float64{
			ValueMiddleBand: means[k],
			ValueUpperBand:  upper,
			ValueLowerBand:  lower,
			ValueStdDev:     stds[k],
		}))
	}

	return types.SignalSeries{
		Strategy: bb.Name(),
		WarmUp:   bb.WarmUp(),
		Points:   points,
	}, nil
}
