package indicator

import (
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

const (
	ValueFastEMA   = "ema_fast"
	ValueSlowEMA   = "ema_slow"
	ValueMACD      = "macd"
	ValueSignal    = "signal"
	ValueHistogram = "histogram"
)

// MACD signals bullish while the MACD line is above its signal line.
// All averages are recursive EMAs seeded by the first value, so no bars are dropped.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with default configuration.
func NewMACD() Indicator {
	defaults := types.DefaultParams()

	return &MACD{
		fastPeriod:   defaults.FastSpan,
		slowPeriod:   defaults.SlowSpan,
		signalPeriod: defaults.SignalSpan,
	}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.StrategyType {
	return types.StrategyTypeMACD
}

// Config reads FastSpan, SlowSpan and SignalSpan.
func (m *MACD) Config(params types.StrategyParams) error {
	if err := validatePositive("fastSpan", params.FastSpan); err != nil {
		return err
	}

	if err := validatePositive("slowSpan", params.SlowSpan); err != nil {
		return err
	}

	if err := validatePositive("signalSpan", params.SignalSpan); err != nil {
		return err
	}

	m.fastPeriod = params.FastSpan
	m.slowPeriod = params.SlowSpan
	m.signalPeriod = params.SignalSpan

	return nil
}

// WarmUp is zero since a seeded EMA is defined from the first bar.
func (m *MACD) WarmUp() int {
	return 0
}

// Compute implements Indicator.
func (m *MACD) Compute(series types.PriceSeries) (types.SignalSeries, error) {
	if err := series.Validate(); err != nil {
		return types.SignalSeries{}, err
	}

	prices := series.Prices()

	fast, err := exponentialMovingAverage(prices, m.fastPeriod)
	if err != nil {
		return shortSeriesOrError(m.Name(), m.WarmUp(), err)
	}

	slow, err := exponentialMovingAverage(prices, m.slowPeriod)
	if err != nil {
		return shortSeriesOrError(m.Name(), m.WarmUp(), err)
	}

	macdLine := make([]float64, len(prices))
	for i := range prices {
		macdLine[i] = fast[i] - slow[i]
	}

	signalLine, err := exponentialMovingAverage(macdLine, m.signalPeriod)
	if err != nil {
		return shortSeriesOrError(m.Name(), m.WarmUp(), err)
	}

	points := make([]types.SignalPoint, 0, len(prices))

	for i := range prices {
		points = append(points, newSignalPoint(series.At(i), compare(macdLine[i], signalLine[i]), map[string]float64{
			ValueFastEMA:   fast[i],
			ValueSlowEMA:   slow[i],
			ValueMACD:      macdLine[i],
			ValueSignal:    signalLine[i],
			ValueHistogram: macdLine[i] - signalLine[i],
		}))
	}

	return types.SignalSeries{
		Strategy: m.Name(),
		WarmUp:   m.WarmUp(),
		Points:   points,
	}, nil
}
