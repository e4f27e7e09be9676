package provider

import (
	"context"
	stdErrors "errors"
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// mockPolygonAPIClient implements PolygonAPIClient for testing.
type mockPolygonAPIClient struct {
	iterator   PolygonAggsIterator
	lastParams *models.ListAggsParams
}

func (m *mockPolygonAPIClient) ListAggs(_ context.Context, params *models.ListAggsParams, _ ...models.RequestOption) PolygonAggsIterator {
	m.lastParams = params

	return m.iterator
}

// mockPolygonIterator implements PolygonAggsIterator for testing.
type mockPolygonIterator struct {
	aggs  []models.Agg
	index int
	err   error
}

func (m *mockPolygonIterator) Next() bool {
	if m.index < len(m.aggs) {
		m.index++

		return true
	}

	return false
}

func (m *mockPolygonIterator) Item() models.Agg {
	if m.index > 0 && m.index <= len(m.aggs) {
		return m.aggs[m.index-1]
	}

	return models.Agg{}
}

func (m *mockPolygonIterator) Err() error {
	return m.err
}

type PolygonClientTestSuite struct {
	suite.Suite
	start time.Time
	end   time.Time
}

func TestPolygonClientSuite(t *testing.T) {
	suite.Run(t, new(PolygonClientTestSuite))
}

func (suite *PolygonClientTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.end = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
}

func (suite *PolygonClientTestSuite) agg(day int, closePrice float64) models.Agg {
	return models.Agg{
		Timestamp: models.Millis(suite.start.AddDate(0, 0, day)),
		Close:     closePrice,
	}
}

func (suite *PolygonClientTestSuite) TestNewPolygonClient_ValidApiKey() {
	client, err := NewPolygonClient("test-api-key")
	suite.NoError(err)
	suite.NotNil(client)

	polygonClient, ok := client.(*PolygonClient)
	suite.True(ok)
	suite.NotNil(polygonClient.apiClient)
}

func (suite *PolygonClientTestSuite) TestNewPolygonClient_EmptyApiKey() {
	client, err := NewPolygonClient("")
	suite.Error(err)
	suite.Nil(client)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))
}

func (suite *PolygonClientTestSuite) TestFetch() {
	mockAPI := &mockPolygonAPIClient{
		iterator: &mockPolygonIterator{
			aggs: []models.Agg{suite.agg(1, 100), suite.agg(2, 101.5), suite.agg(3, 99.25)},
		},
	}
	client := NewPolygonClientWithAPI(mockAPI)

	series, err := client.Fetch(context.Background(), "SPY", suite.start, suite.end)
	suite.Require().NoError(err)

	suite.Equal("SPY", series.Symbol())
	suite.Equal([]float64{100, 101.5, 99.25}, series.Prices())
	suite.True(suite.start.AddDate(0, 0, 1).Equal(series.At(0).Time))

	suite.Require().NotNil(mockAPI.lastParams)
	suite.Equal("SPY", mockAPI.lastParams.Ticker)
	suite.Equal(1, mockAPI.lastParams.Multiplier)
	suite.Equal(models.Day, mockAPI.lastParams.Timespan)
}

func (suite *PolygonClientTestSuite) TestFetchIteratorError() {
	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{
		iterator: &mockPolygonIterator{
			aggs: []models.Agg{suite.agg(1, 100)},
			err:  stdErrors.New("rate limited"),
		},
	})

	_, err := client.Fetch(context.Background(), "SPY", suite.start, suite.end)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
	suite.Contains(err.Error(), "rate limited")
}

func (suite *PolygonClientTestSuite) TestFetchNoData() {
	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{}})

	_, err := client.Fetch(context.Background(), "SPY", suite.start, suite.end)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}

func (suite *PolygonClientTestSuite) TestFetchInvalidRange() {
	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{}})

	_, err := client.Fetch(context.Background(), "SPY", suite.end, suite.start)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *PolygonClientTestSuite) TestFetchUnorderedData() {
	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{
		iterator: &mockPolygonIterator{
			aggs: []models.Agg{suite.agg(2, 100), suite.agg(1, 101)},
		},
	})

	_, err := client.Fetch(context.Background(), "SPY", suite.start, suite.end)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
}

func (suite *PolygonClientTestSuite) TestNewMarketDataProvider() {
	p, err := NewMarketDataProvider(ProviderPolygon, "key")
	suite.NoError(err)
	suite.IsType(&PolygonClient{}, p)

	p, err = NewMarketDataProvider(ProviderBinance, "")
	suite.NoError(err)
	suite.IsType(&BinanceClient{}, p)

	_, err = NewMarketDataProvider(ProviderPolygon, "")
	suite.Error(err)

	_, err = NewMarketDataProvider(ProviderType("yahoo"), "")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))
}
