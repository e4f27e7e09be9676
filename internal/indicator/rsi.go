package indicator

import (
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

const (
	ValueRSI     = "rsi"
	ValueAvgGain = "avg_gain"
	ValueAvgLoss = "avg_loss"
)

// rsiWithoutLosses is reported when the average loss of a window is zero.
// A flat window therefore reads as overbought.
const rsiWithoutLosses = 100.0

// RSI signals bullish when the oscillator is oversold and bearish when it is overbought.
// Gains and losses are averaged with a simple rolling mean over the window.
type RSI struct {
	period         int
	lowerThreshold float64
	upperThreshold float64
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() Indicator {
	defaults := types.DefaultParams()

	return &RSI{
		period:         defaults.RSIWindow,
		lowerThreshold: defaults.LowerThreshold,
		upperThreshold: defaults.UpperThreshold,
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.StrategyType {
	return types.StrategyTypeRSI
}

// Config reads RSIWindow, LowerThreshold and UpperThreshold.
func (r *RSI) Config(params types.StrategyParams) error {
	if err := validatePositive("rsiWindow", params.RSIWindow); err != nil {
		return err
	}

	if params.LowerThreshold < 0 || params.UpperThreshold > 100 {
		return errors.Newf(errors.ErrCodeInvalidThreshold, "thresholds must be within [0, 100], got lower=%v upper=%v", params.LowerThreshold, params.UpperThreshold)
	}

	if params.LowerThreshold > params.UpperThreshold {
		return errors.Newf(errors.ErrCodeInvalidThreshold, "lowerThreshold %v must not exceed upperThreshold %v", params.LowerThreshold, params.UpperThreshold)
	}

	r.period = params.RSIWindow
	r.lowerThreshold = params.LowerThreshold
	r.upperThreshold = params.UpperThreshold

	return nil
}

// WarmUp is one bar for the first price change plus period-1 bars for the first full window.
func (r *RSI) WarmUp() int {
	return r.period
}

// Compute implements Indicator.
func (r *RSI) Compute(series types.PriceSeries) (types.SignalSeries, error) {
	if err := series.Validate(); err != nil {
		return types.SignalSeries{}, err
	}

	prices := series.Prices()

	gains := make([]float64, len(prices)-1)
	losses := make([]float64, len(prices)-1)

	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains[i-1] = change
		} else {
			losses[i-1] = -change
		}
	}

	avgGains, err := rollingMean(gains, r.period)
	if err != nil {
		return shortSeriesOrError(r.Name(), r.WarmUp(), err)
	}

	avgLosses, err := rollingMean(losses, r.period)
	if err != nil {
		return shortSeriesOrError(r.Name(), r.WarmUp(), err)
	}

	points := make([]types.SignalPoint, 0, len(avgGains))

	for k := range avgGains {
		value := relativeStrengthIndex(avgGains[k], avgLosses[k])

		signal := types.SignalNeutral
		if value < r.lowerThreshold {
			signal = types.SignalBullish
		} else if value > r.upperThreshold {
			signal = types.SignalBearish
		}

		points = append(points, newSignalPoint(series.At(k+r.period), signal, map[string]float64{
			ValueRSI:     value,
			ValueAvgGain: avgGains[k],
			ValueAvgLoss: avgLosses[k],
		}))
	}

	return types.SignalSeries{
		Strategy: r.Name(),
		WarmUp:   r.WarmUp(),
		Points:   points,
	}, nil
}

func relativeStrengthIndex(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return rsiWithoutLosses
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}
