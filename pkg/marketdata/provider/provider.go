package provider

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

type Provider interface {
	// Fetch downloads the daily closing prices for the given ticker and date range.
	// The context can be used to cancel the download operation.
	// example:
	// Fetch(ctx, "AAPL", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC))
	Fetch(ctx context.Context, ticker string, startDate time.Time, endDate time.Time) (types.PriceSeries, error)
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
// The API key is only used by providers that require authentication.
func NewMarketDataProvider(providerType ProviderType, apiKey string) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceClient()
	case ProviderPolygon:
		return NewPolygonClient(apiKey)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}

// newSeries turns the downloaded bars into a price series, reporting an empty download as missing data.
func newSeries(ticker string, bars []types.PriceBar) (types.PriceSeries, error) {
	if len(bars) == 0 {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeDataNotFound, "no market data returned for %s", ticker)
	}

	series, err := types.NewPriceSeries(ticker, bars)
	if err != nil {
		return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "invalid market data for %s", ticker)
	}

	return series, nil
}
