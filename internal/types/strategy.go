package types

import (
	"strings"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"gopkg.in/yaml.v3"
)

// StrategyType identifies one of the supported signal generators.
type StrategyType string

const (
	// StrategyTypeSMA is the short/long simple moving average crossover.
	StrategyTypeSMA StrategyType = "sma"
	// StrategyTypeRSI is the momentum oscillator with oversold/overbought thresholds.
	StrategyTypeRSI StrategyType = "rsi"
	// StrategyTypeBollinger is the volatility band breakout.
	StrategyTypeBollinger StrategyType = "bollinger"
	// StrategyTypeMACD is the MACD line / signal line crossover.
	StrategyTypeMACD StrategyType = "macd"
)

// AllStrategyTypes lists every supported strategy in a stable order.
var AllStrategyTypes = []StrategyType{
	StrategyTypeSMA,
	StrategyTypeRSI,
	StrategyTypeBollinger,
	StrategyTypeMACD,
}

var strategyAliases = map[string]StrategyType{
	"sma":             StrategyTypeSMA,
	"ma":              StrategyTypeSMA,
	"ma_crossover":    StrategyTypeSMA,
	"sma_crossover":   StrategyTypeSMA,
	"rsi":             StrategyTypeRSI,
	"bollinger":       StrategyTypeBollinger,
	"bollinger_bands": StrategyTypeBollinger,
	"bb":              StrategyTypeBollinger,
	"macd":            StrategyTypeMACD,
}

// ParseStrategyType resolves a user supplied strategy name. Matching is case insensitive.
// Unknown names are rejected with ErrCodeUnknownStrategy rather than defaulted.
func ParseStrategyType(name string) (StrategyType, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "-", "_")

	if strategy, ok := strategyAliases[key]; ok {
		return strategy, nil
	}

	return "", errors.Newf(errors.ErrCodeUnknownStrategy, "unknown strategy %q, expected one of sma, rsi, bollinger, macd", name)
}

// StrategyParams holds the tunable options of every strategy.
// Each strategy only reads the fields it owns. The zero value is not usable; build on DefaultParams.
type StrategyParams struct {
	// SMA crossover
	ShortWindow int `yaml:"short_window" json:"short_window" jsonschema:"title=Short Window,description=Window of the fast simple moving average,minimum=1,default=20" validate:"gte=1"`
	LongWindow  int `yaml:"long_window" json:"long_window" jsonschema:"title=Long Window,description=Window of the slow simple moving average,minimum=1,default=50" validate:"gte=1"`

	// RSI
	RSIWindow      int     `yaml:"rsi_window" json:"rsi_window" jsonschema:"title=RSI Window,description=Averaging window of gains and losses,minimum=1,default=14" validate:"gte=1"`
	LowerThreshold float64 `yaml:"lower_threshold" json:"lower_threshold" jsonschema:"title=Lower Threshold,description=Oversold level that produces a bullish signal,minimum=0,maximum=100,default=30" validate:"gte=0,lte=100"`
	UpperThreshold float64 `yaml:"upper_threshold" json:"upper_threshold" jsonschema:"title=Upper Threshold,description=Overbought level that produces a bearish signal,minimum=0,maximum=100,default=70" validate:"gte=0,lte=100,gtefield=LowerThreshold"`

	// Bollinger bands
	BandWindow     int     `yaml:"band_window" json:"band_window" jsonschema:"title=Band Window,description=Rolling window of the band mean and standard deviation,minimum=2,default=20" validate:"gte=2"`
	BandMultiplier float64 `yaml:"band_multiplier" json:"band_multiplier" jsonschema:"title=Band Multiplier,description=Number of standard deviations between the mean and each band,minimum=0,default=2" validate:"gte=0"`

	// MACD
	FastSpan   int `yaml:"fast_span" json:"fast_span" jsonschema:"title=Fast Span,description=Span of the fast exponential moving average,minimum=1,default=12" validate:"gte=1"`
	SlowSpan   int `yaml:"slow_span" json:"slow_span" jsonschema:"title=Slow Span,description=Span of the slow exponential moving average,minimum=1,default=26" validate:"gte=1"`
	SignalSpan int `yaml:"signal_span" json:"signal_span" jsonschema:"title=Signal Span,description=Span of the signal line EMA,minimum=1,default=9" validate:"gte=1"`
}

// DefaultParams returns the conventional defaults for every strategy.
func DefaultParams() StrategyParams {
	return StrategyParams{
		ShortWindow:    20,
		LongWindow:     50,
		RSIWindow:      14,
		LowerThreshold: 30,
		UpperThreshold: 70,
		BandWindow:     20,
		BandMultiplier: 2,
		FastSpan:       12,
		SlowSpan:       26,
		SignalSpan:     9,
	}
}

// UnmarshalYAML decodes on top of DefaultParams so omitted keys keep their defaults.
func (p *StrategyParams) UnmarshalYAML(value *yaml.Node) error {
	type rawParams StrategyParams

	decoded := rawParams(DefaultParams())
	if err := value.Decode(&decoded); err != nil {
		return err
	}

	*p = StrategyParams(decoded)

	return nil
}
