package simulator

import (
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/shopspring/decimal"
)

// CalculateStats aggregates trades and returns the running sum of their profits.
// Zero trades yield zero stats and an empty cumulative slice.
func CalculateStats(trades []types.Trade) (types.TradeStats, []float64) {
	cumulative := make([]float64, 0, len(trades))
	if len(trades) == 0 {
		return types.TradeStats{}, cumulative
	}

	var (
		stats   types.TradeStats
		total   = decimal.Zero
		peak    = decimal.Zero
		maxDraw = decimal.Zero
	)

	stats.NumberOfTrades = len(trades)
	stats.MaximumProfit = trades[0].Profit
	stats.MaximumLoss = trades[0].Profit

	for _, trade := range trades {
		total = total.Add(decimal.NewFromFloat(trade.Profit))

		running, _ := total.Float64()
		cumulative = append(cumulative, running)

		if total.GreaterThan(peak) {
			peak = total
		}

		if drawdown := peak.Sub(total); drawdown.GreaterThan(maxDraw) {
			maxDraw = drawdown
		}

		switch {
		case trade.Profit > 0:
			stats.NumberOfWinningTrades++
		case trade.Profit < 0:
			stats.NumberOfLosingTrades++
		}

		stats.MaximumProfit = max(stats.MaximumProfit, trade.Profit)
		stats.MaximumLoss = min(stats.MaximumLoss, trade.Profit)
	}

	count := decimal.NewFromInt(int64(len(trades)))

	stats.TotalProfit, _ = total.Float64()
	stats.AverageProfit, _ = total.Div(count).Float64()
	stats.WinRate, _ = decimal.NewFromInt(int64(stats.NumberOfWinningTrades)).Mul(decimal.NewFromInt(100)).Div(count).Float64()
	stats.MaxDrawdown, _ = maxDraw.Float64()
	stats.TradeHoldingTime = holdingTime(trades)

	return stats, cumulative
}

func holdingTime(trades []types.Trade) types.TradeHoldingTime {
	minSeconds := int(trades[0].HoldingPeriod().Seconds())
	maxSeconds := minSeconds

	var sum int64

	for _, trade := range trades {
		seconds := int(trade.HoldingPeriod().Seconds())
		minSeconds = min(minSeconds, seconds)
		maxSeconds = max(maxSeconds, seconds)
		sum += int64(seconds)
	}

	return types.TradeHoldingTime{
		Min: minSeconds,
		Max: maxSeconds,
		Avg: int(sum / int64(len(trades))),
	}
}
