package provider

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

const polygonPageLimit = 50000

// PolygonAggsIterator is the subset of the polygon aggregates iterator used by PolygonClient.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the subset of the polygon REST client used by PolygonClient.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonClientWrapper struct {
	client *polygon.Client
}

func (w *polygonClientWrapper) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return w.client.ListAggs(ctx, params, options...)
}

type PolygonClient struct {
	apiClient PolygonAPIClient
}

func NewPolygonClient(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "apiKey is required")
	}

	return &PolygonClient{
		apiClient: &polygonClientWrapper{client: polygon.New(apiKey)},
	}, nil
}

// NewPolygonClientWithAPI creates a PolygonClient on top of the given API client.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiClient: apiClient,
	}
}

// Fetch downloads the daily aggregates of ticker and keeps their closing prices.
func (c *PolygonClient) Fetch(ctx context.Context, ticker string, startDate time.Time, endDate time.Time) (types.PriceSeries, error) {
	if !endDate.After(startDate) {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeInvalidParameter, "end date %s must be after start date %s",
			endDate.Format(time.DateOnly), startDate.Format(time.DateOnly))
	}

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithLimit(polygonPageLimit)

	iter := c.apiClient.ListAggs(ctx, params)

	bars := make([]types.PriceBar, 0)

	for iter.Next() {
		agg := iter.Item()
		bars = append(bars, types.PriceBar{
			Time:  time.Time(agg.Timestamp).UTC(),
			Price: agg.Close,
		})
	}

	if iter.Err() != nil {
		return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, iter.Err(), "error iterating polygon aggregates for %s", ticker)
	}

	return newSeries(ticker, bars)
}
