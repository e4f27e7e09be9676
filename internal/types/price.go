package types

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// PriceBar is one observation of a daily price series.
type PriceBar struct {
	Time  time.Time `csv:"time" yaml:"time"`
	Price float64   `csv:"price" yaml:"price"`
}

// PriceSeries is an immutable, time ordered sequence of price bars for one symbol.
// Construct it with NewPriceSeries; the zero value is an empty series that every
// consumer rejects as invalid input.
type PriceSeries struct {
	symbol string
	bars   []PriceBar
}

// NewPriceSeries validates and copies bars into a new series.
// Timestamps must be strictly increasing and every price finite and positive.
func NewPriceSeries(symbol string, bars []PriceBar) (PriceSeries, error) {
	if len(bars) == 0 {
		return PriceSeries{}, errors.Newf(errors.ErrCodeInvalidInput, "price series for %q is empty", symbol)
	}

	copied := make([]PriceBar, len(bars))
	copy(copied, bars)

	for i, bar := range copied {
		if math.IsNaN(bar.Price) || math.IsInf(bar.Price, 0) {
			return PriceSeries{}, errors.Newf(errors.ErrCodeInvalidInput, "price at index %d (%s) is not a finite number", i, bar.Time.Format(time.DateOnly))
		}

		if bar.Price <= 0 {
			return PriceSeries{}, errors.Newf(errors.ErrCodeInvalidInput, "price at index %d (%s) must be positive, got %g", i, bar.Time.Format(time.DateOnly), bar.Price)
		}

		if i > 0 && !bar.Time.After(copied[i-1].Time) {
			return PriceSeries{}, errors.Newf(errors.ErrCodeInvalidInput, "timestamps must be strictly increasing: index %d (%s) is not after index %d (%s)",
				i, bar.Time.Format(time.RFC3339), i-1, copied[i-1].Time.Format(time.RFC3339))
		}
	}

	return PriceSeries{symbol: symbol, bars: copied}, nil
}

// Symbol returns the instrument the series belongs to.
func (s PriceSeries) Symbol() string {
	return s.symbol
}

// Len returns the number of bars.
func (s PriceSeries) Len() int {
	return len(s.bars)
}

// IsEmpty reports whether the series holds no bars.
func (s PriceSeries) IsEmpty() bool {
	return len(s.bars) == 0
}

// At returns the bar at index i.
func (s PriceSeries) At(i int) PriceBar {
	return s.bars[i]
}

// Last returns the final bar. It panics on an empty series.
func (s PriceSeries) Last() PriceBar {
	return s.bars[len(s.bars)-1]
}

// Bars returns a copy of the underlying bars.
func (s PriceSeries) Bars() []PriceBar {
	copied := make([]PriceBar, len(s.bars))
	copy(copied, s.bars)

	return copied
}

// Suffix returns the last n bars as a new series. n is clamped to [0, Len()].
func (s PriceSeries) Suffix(n int) PriceSeries {
	n = min(max(n, 0), len(s.bars))

	bars := make([]PriceBar, n)
	copy(bars, s.bars[len(s.bars)-n:])

	return PriceSeries{symbol: s.symbol, bars: bars}
}

// Prices returns the price column as a new slice.
func (s PriceSeries) Prices() []float64 {
	prices := make([]float64, len(s.bars))
	for i, bar := range s.bars {
		prices[i] = bar.Price
	}

	return prices
}

// Validate reports whether the series can be handed to the engine.
func (s PriceSeries) Validate() error {
	if len(s.bars) == 0 {
		return errors.Newf(errors.ErrCodeInvalidInput, "price series for %q is empty", s.symbol)
	}

	return nil
}
