package provider

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

const (
	binanceDailyInterval = "1d"
	// binancePageSize is the number of klines Binance returns per request by default.
	binancePageSize = 500
)

// BinanceKlinesService is the subset of the binance klines service used by BinanceClient.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient is the subset of the binance client used by BinanceClient.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceClientWrapper struct {
	client *binance.Client
}

func (w *binanceClientWrapper) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesServiceWrapper{service: w.client.NewKlinesService()}
}

type binanceKlinesServiceWrapper struct {
	service *binance.KlinesService
}

func (w *binanceKlinesServiceWrapper) Symbol(symbol string) BinanceKlinesService {
	w.service.Symbol(symbol)

	return w
}

func (w *binanceKlinesServiceWrapper) Interval(interval string) BinanceKlinesService {
	w.service.Interval(interval)

	return w
}

func (w *binanceKlinesServiceWrapper) StartTime(startTime int64) BinanceKlinesService {
	w.service.StartTime(startTime)

	return w
}

func (w *binanceKlinesServiceWrapper) EndTime(endTime int64) BinanceKlinesService {
	w.service.EndTime(endTime)

	return w
}

func (w *binanceKlinesServiceWrapper) Do(ctx context.Context) ([]*binance.Kline, error) {
	return w.service.Do(ctx)
}

type BinanceClient struct {
	apiClient BinanceAPIClient
}

// NewBinanceClient creates a client for the public Binance market data API, which needs no credentials.
func NewBinanceClient() (Provider, error) {
	return &BinanceClient{
		apiClient: &binanceClientWrapper{client: binance.NewClient("", "")},
	}, nil
}

// NewBinanceClientWithAPI creates a BinanceClient on top of the given API client.
func NewBinanceClientWithAPI(apiClient BinanceAPIClient) *BinanceClient {
	return &BinanceClient{
		apiClient: apiClient,
	}
}

// Fetch downloads the daily klines of ticker page by page and keeps their closing prices.
// Each bar is stamped with the kline open time.
func (c *BinanceClient) Fetch(ctx context.Context, ticker string, startDate time.Time, endDate time.Time) (types.PriceSeries, error) {
	if !endDate.After(startDate) {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeInvalidParameter, "end date %s must be after start date %s",
			endDate.Format(time.DateOnly), startDate.Format(time.DateOnly))
	}

	// Binance API uses milliseconds for timestamps
	currentStartTime := startDate.UnixMilli()
	endTimeMillis := endDate.UnixMilli()

	bars := make([]types.PriceBar, 0)

	for {
		if err := ctx.Err(); err != nil {
			return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "download of %s cancelled", ticker)
		}

		klines, err := c.apiClient.NewKlinesService().
			Symbol(ticker).
			Interval(binanceDailyInterval).
			StartTime(currentStartTime).
			EndTime(endTimeMillis).
			Do(ctx)
		if err != nil {
			return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines for %s from Binance", ticker)
		}

		page, err := klinesToBars(klines)
		if err != nil {
			return types.PriceSeries{}, err
		}

		bars = append(bars, page...)

		// a short page is the last one
		if len(klines) < binancePageSize {
			break
		}

		// continue after the close time of the last kline to avoid duplicates
		currentStartTime = klines[len(klines)-1].CloseTime + 1
		if currentStartTime >= endTimeMillis {
			break
		}
	}

	return newSeries(ticker, bars)
}

// klinesToBars converts Binance klines to price bars.
func klinesToBars(klines []*binance.Kline) ([]types.PriceBar, error) {
	bars := make([]types.PriceBar, 0, len(klines))

	for _, k := range klines {
		closePrice, err := strconv.ParseFloat(k.Close, 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "invalid close price %q at %s", k.Close,
				time.UnixMilli(k.OpenTime).UTC().Format(time.RFC3339))
		}

		bars = append(bars, types.PriceBar{
			Time:  time.UnixMilli(k.OpenTime).UTC(),
			Price: closePrice,
		})
	}

	return bars, nil
}
