package indicator

import (
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// ComputeSignal resolves strategy by name against the default registry, applies params
// and computes the signal series for prices.
//
// params is used as given: zero windows and spans are rejected, not defaulted.
// Start from types.DefaultParams() and override the fields you need.
func ComputeSignal(prices types.PriceSeries, strategy string, params types.StrategyParams) (types.SignalSeries, error) {
	return ComputeSignalWithRegistry(NewDefaultRegistry(), prices, strategy, params)
}

// ComputeSignalWithRegistry is ComputeSignal with a caller supplied registry.
func ComputeSignalWithRegistry(registry IndicatorRegistry, prices types.PriceSeries, strategy string, params types.StrategyParams) (types.SignalSeries, error) {
	strategyType, err := types.ParseStrategyType(strategy)
	if err != nil {
		return types.SignalSeries{}, err
	}

	ind, err := registry.GetIndicator(strategyType)
	if err != nil {
		return types.SignalSeries{}, err
	}

	if err := ind.Config(params); err != nil {
		return types.SignalSeries{}, err
	}

	return ind.Compute(prices)
}
