package types

import "time"

// SignalValue is the discrete per-bar position signal produced by an indicator.
type SignalValue int8

const (
	// SignalBearish favours exiting a long position.
	SignalBearish SignalValue = -1
	// SignalNeutral favours no action.
	SignalNeutral SignalValue = 0
	// SignalBullish favours entering a long position.
	SignalBullish SignalValue = 1
)

func (v SignalValue) String() string {
	switch v {
	case SignalBullish:
		return "bullish"
	case SignalBearish:
		return "bearish"
	default:
		return "neutral"
	}
}

// SignalType names a transition the simulator acts on.
type SignalType string

const (
	// SignalTypeBuy is a transition into a bullish signal.
	SignalTypeBuy SignalType = "buy"
	// SignalTypeSell is a transition into a bearish signal.
	SignalTypeSell SignalType = "sell"
)

// SignalPoint is the indicator output for a single bar.
type SignalPoint struct {
	// Time is the timestamp of the price bar this point belongs to
	Time time.Time
	// Price is the price of that bar
	Price float64
	// Value is the discrete signal
	Value SignalValue
	// Indicators holds the intermediate indicator values, e.g. "sma_short" or "rsi"
	Indicators map[string]float64
}

// SignalSeries is the indicator output aligned to a contiguous suffix of a PriceSeries.
// Point i corresponds to bar WarmUp+i of the source series.
type SignalSeries struct {
	// Strategy is the indicator that produced the series
	Strategy StrategyType
	// WarmUp is the number of leading bars that were dropped
	WarmUp int
	// Points are the aligned signal points
	Points []SignalPoint
}

// Len returns the number of signal points.
func (s SignalSeries) Len() int {
	return len(s.Points)
}

// Values returns the discrete signals in order.
func (s SignalSeries) Values() []SignalValue {
	values := make([]SignalValue, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}

	return values
}
