package types

import "time"

// Trade is a completed long round trip.
type Trade struct {
	EntryTime  time.Time `csv:"entry_time" yaml:"entry_time"`
	EntryPrice float64   `csv:"entry_price" yaml:"entry_price"`
	ExitTime   time.Time `csv:"exit_time" yaml:"exit_time"`
	ExitPrice  float64   `csv:"exit_price" yaml:"exit_price"`
	// Profit is ExitPrice - EntryPrice for a single unit.
	Profit float64 `csv:"profit" yaml:"profit"`
	// Forced is true when the position was still open at the end of the series
	// and was closed at the final bar.
	Forced bool `csv:"forced" yaml:"forced"`
}

// NewTrade builds a trade and derives its profit.
func NewTrade(entryTime time.Time, entryPrice float64, exitTime time.Time, exitPrice float64, forced bool) Trade {
	return Trade{
		EntryTime:  entryTime,
		EntryPrice: entryPrice,
		ExitTime:   exitTime,
		ExitPrice:  exitPrice,
		Profit:     exitPrice - entryPrice,
		Forced:     forced,
	}
}

// HoldingPeriod returns how long the position was held.
func (t Trade) HoldingPeriod() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}

// IsWin reports whether the trade closed with a strictly positive profit.
func (t Trade) IsWin() bool {
	return t.Profit > 0
}
