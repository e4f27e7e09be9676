package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// DataGenerator generates realistic daily price series for testing.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how price data is generated.
type GeneratorConfig struct {
	// Symbol is the trading symbol (e.g., "AAPL", "SPY")
	Symbol string
	// StartTime is the timestamp of the first bar
	StartTime time.Time
	// Interval is the duration between each bar
	Interval time.Duration
	// Count is the number of bars to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% typical daily volatility)
	Volatility float64
	// Trend is the total drift over the series (-0.5 to 0.5 for bearish to bullish)
	Trend float64
}

// DefaultConfig returns one trading year of daily bars.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:       "TEST",
		StartTime:    time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Interval:     24 * time.Hour,
		Count:        252,
		InitialPrice: 100.0,
		Volatility:   0.015,
		Trend:        0.0,
	}
}

// GenerateBars creates closing prices following a geometric Brownian motion.
func (g *DataGenerator) GenerateBars(config GeneratorConfig) []types.PriceBar {
	bars := make([]types.PriceBar, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	drift := 0.0
	if config.Count > 0 {
		drift = config.Trend / float64(config.Count)
	}

	for i := 0; i < config.Count; i++ {
		bars[i] = types.PriceBar{
			Time:  currentTime,
			Price: roundToDecimals(currentPrice, 4),
		}

		// Box-Muller transform for a standard normal sample
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		next := currentPrice * (1 + config.Volatility*z + drift)
		if next <= 0 {
			next = currentPrice * 0.99
		}

		currentPrice = next
		currentTime = currentTime.Add(config.Interval)
	}

	return bars
}

// Generate creates a validated price series from the configuration.
func (g *DataGenerator) Generate(config GeneratorConfig) (types.PriceSeries, error) {
	return types.NewPriceSeries(config.Symbol, g.GenerateBars(config))
}

// GenerateMultiSymbol generates one series per symbol, varying the initial price
// and volatility slightly per symbol.
func (g *DataGenerator) GenerateMultiSymbol(symbols []string, baseConfig GeneratorConfig) (map[string]types.PriceSeries, error) {
	series := make(map[string]types.PriceSeries, len(symbols))

	for _, symbol := range symbols {
		config := baseConfig
		config.Symbol = symbol
		config.InitialPrice = baseConfig.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		config.Volatility = baseConfig.Volatility * (0.8 + g.rng.Float64()*0.4)

		s, err := g.Generate(config)
		if err != nil {
			return nil, err
		}

		series[symbol] = s
	}

	return series, nil
}

// GenerateDaily is a convenience function generating count daily bars
// with default settings and a fixed seed.
func GenerateDaily(symbol string, count int) (types.PriceSeries, error) {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Symbol = symbol
	config.Count = count

	return gen.Generate(config)
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
