package simulator

import (
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

const (
	reasonEntry         = "buy transition while flat"
	reasonExit          = "sell transition while long"
	reasonForcedExit    = "position still open at the final bar"
	reasonSellWhileFlat = "sell transition without an open position"
	reasonBuyWhileLong  = "buy transition while already long"
)

type position struct {
	open       bool
	entryIndex int
	entryPrice float64
}

// Simulate walks an aligned signal series once and returns the completed long trades
// with their aggregate statistics.
//
// Only one position is held at a time. A buy transition opens it, a sell transition closes it,
// and transitions that do not fit the current state are recorded as ignored marks.
// A position still open at the last bar is closed there with Trade.Forced set.
func Simulate(prices types.PriceSeries, signals types.SignalSeries) (types.BacktestResult, error) {
	if err := prices.Validate(); err != nil {
		return types.BacktestResult{}, err
	}

	offset, err := alignmentOffset(prices, signals)
	if err != nil {
		return types.BacktestResult{}, err
	}

	trades := make([]types.Trade, 0)
	marks := make([]types.Mark, 0)

	var (
		state    position
		previous = types.SignalNeutral
	)

	for i, point := range signals.Points {
		bar := prices.At(offset + i)

		switch transition(previous, point.Value) {
		case types.SignalTypeBuy:
			if state.open {
				marks = append(marks, types.NewMark(bar.Time, bar.Price, types.SignalTypeBuy, types.MarkActionIgnored, reasonBuyWhileLong))
				break
			}

			state = position{open: true, entryIndex: offset + i, entryPrice: bar.Price}
			marks = append(marks, types.NewMark(bar.Time, bar.Price, types.SignalTypeBuy, types.MarkActionEntry, reasonEntry))
		case types.SignalTypeSell:
			if !state.open {
				marks = append(marks, types.NewMark(bar.Time, bar.Price, types.SignalTypeSell, types.MarkActionIgnored, reasonSellWhileFlat))
				break
			}

			entry := prices.At(state.entryIndex)
			trades = append(trades, types.NewTrade(entry.Time, state.entryPrice, bar.Time, bar.Price, false))
			marks = append(marks, types.NewMark(bar.Time, bar.Price, types.SignalTypeSell, types.MarkActionExit, reasonExit))
			state = position{}
		}

		previous = point.Value
	}

	if state.open {
		entry := prices.At(state.entryIndex)
		last := prices.Last()
		trades = append(trades, types.NewTrade(entry.Time, state.entryPrice, last.Time, last.Price, true))
		marks = append(marks, types.NewMark(last.Time, last.Price, types.SignalTypeSell, types.MarkActionForcedExit, reasonForcedExit))
	}

	stats, cumulative := CalculateStats(trades)
	stats.BuyAndHoldProfit = buyAndHoldProfit(prices.Suffix(signals.Len()))

	return types.BacktestResult{
		Symbol:           prices.Symbol(),
		Strategy:         signals.Strategy,
		Trades:           trades,
		Stats:            stats,
		CumulativeProfit: cumulative,
		Marks:            marks,
	}, nil
}

// transition reports the buy or sell transition at a bar, or "" when the signal did not change
// into a bullish or bearish state.
func transition(previous, current types.SignalValue) types.SignalType {
	switch {
	case current == types.SignalBullish && previous != types.SignalBullish:
		return types.SignalTypeBuy
	case current == types.SignalBearish && previous != types.SignalBearish:
		return types.SignalTypeSell
	default:
		return ""
	}
}

// alignmentOffset returns the index of the price bar that matches the first signal point.
func alignmentOffset(prices types.PriceSeries, signals types.SignalSeries) (int, error) {
	offset := prices.Len() - signals.Len()
	if offset < 0 {
		return 0, errors.Newf(errors.ErrCodeMisalignedSeries, "signal series has %d points but price series only %d bars", signals.Len(), prices.Len())
	}

	for i, point := range signals.Points {
		bar := prices.At(offset + i)
		if !bar.Time.Equal(point.Time) {
			return 0, errors.Newf(errors.ErrCodeMisalignedSeries, "signal point %d at %s does not match price bar %d at %s",
				i, point.Time.Format(time.RFC3339), offset+i, bar.Time.Format(time.RFC3339))
		}
	}

	return offset, nil
}

func buyAndHoldProfit(evaluated types.PriceSeries) float64 {
	if evaluated.Len() < 2 {
		return 0
	}

	return evaluated.Last().Price - evaluated.At(0).Price
}
