package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type TradeHoldingTime struct {
	// Minimum holding time of a trade in seconds
	Min int `yaml:"min"`
	// Maximum holding time of a trade in seconds
	Max int `yaml:"max"`
	// Average holding time of a trade in seconds
	Avg int `yaml:"avg"`
}

// TradeStats are the aggregates derived from a list of trades.
// With zero trades every field is zero.
type TradeStats struct {
	// Count of all trades.
	NumberOfTrades int `yaml:"number_of_trades"`
	// Count of trades with profit > 0.
	NumberOfWinningTrades int `yaml:"number_of_winning_trades"`
	// Count of trades with profit < 0.
	NumberOfLosingTrades int `yaml:"number_of_losing_trades"`
	// Win rate in percent: 100 * winning / total.
	WinRate float64 `yaml:"win_rate"`
	// Mean profit per trade.
	AverageProfit float64 `yaml:"average_profit"`
	// Sum of all trade profits.
	TotalProfit float64 `yaml:"total_profit"`
	// Best single trade.
	MaximumProfit float64 `yaml:"maximum_profit"`
	// Worst single trade.
	MaximumLoss float64 `yaml:"maximum_loss"`
	// Largest peak to trough fall of the cumulative profit curve.
	MaxDrawdown float64 `yaml:"max_drawdown"`
	// Holding time of all trades.
	TradeHoldingTime TradeHoldingTime `yaml:"trade_holding_time"`
	// Price change over the evaluated bars, for comparison.
	BuyAndHoldProfit float64 `yaml:"buy_and_hold_profit"`
}

// BacktestResult is the structured outcome of simulating one signal series.
type BacktestResult struct {
	Symbol   string
	Strategy StrategyType
	// Trades in closing order.
	Trades []Trade
	Stats  TradeStats
	// CumulativeProfit[i] is the sum of Trades[0..i].Profit.
	CumulativeProfit []float64
	// Marks records every buy/sell transition and what was done with it.
	Marks []Mark
}

// HasTrades reports whether the run produced at least one trade.
func (r BacktestResult) HasTrades() bool {
	return len(r.Trades) > 0
}

// RunSummary is the persisted description of one backtest run.
type RunSummary struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Symbol of the instrument.
	Symbol string `yaml:"symbol" json:"symbol"`
	// Strategy that generated the signals.
	Strategy StrategyType `yaml:"strategy" json:"strategy"`
	// ConfigName is the name of the strategy entry in the run configuration.
	ConfigName string `yaml:"config_name" json:"config_name"`
	// DataPath is the path to the price data used for this run.
	DataPath string `yaml:"data_path" json:"data_path"`
	// Params used by the strategy.
	Params StrategyParams `yaml:"params" json:"params"`
	// Bars is the number of price bars loaded.
	Bars int `yaml:"bars" json:"bars"`
	// SignalBars is the number of bars left after the warm-up window.
	SignalBars int `yaml:"signal_bars" json:"signal_bars"`
	// Stats of all trades.
	Stats TradeStats `yaml:"stats" json:"stats"`
}

func WriteRunSummary(path string, summary RunSummary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run summary to file: %w", err)
	}

	return nil
}

// ReadRunSummary loads a summary written by WriteRunSummary.
func ReadRunSummary(path string) (RunSummary, error) {
	var summary RunSummary

	data, err := os.ReadFile(path)
	if err != nil {
		return summary, fmt.Errorf("failed to read run summary: %w", err)
	}

	if err := yaml.Unmarshal(data, &summary); err != nil {
		return summary, fmt.Errorf("failed to parse run summary: %w", err)
	}

	return summary, nil
}
