package marketdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/mocks"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// ClientTestSuite is a test suite for the Client implementation
type ClientTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockProvider *mocks.MockProvider
	tempDir      string
	start        time.Time
	end          time.Time
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

// SetupTest runs before each test
func (suite *ClientTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockProvider = mocks.NewMockProvider(suite.ctrl)
	suite.tempDir = suite.T().TempDir()
	suite.start = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.end = time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC)
}

// TearDownTest runs after each test
func (suite *ClientTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *ClientTestSuite) newClient(onProgress OnDownloadProgress) *Client {
	client, err := NewClientWithProvider(ClientConfig{
		ProviderType: ProviderBinance,
		WriterType:   WriterDuckDB,
		DataPath:     suite.tempDir,
	}, suite.mockProvider, onProgress, logger.NewNopLogger())
	suite.Require().NoError(err)

	return client
}

func (suite *ClientTestSuite) series(symbol string, prices ...float64) types.PriceSeries {
	bars := make([]types.PriceBar, len(prices))
	for i, p := range prices {
		bars[i] = types.PriceBar{Time: suite.start.AddDate(0, 0, i+1), Price: p}
	}

	series, err := types.NewPriceSeries(symbol, bars)
	suite.Require().NoError(err)

	return series
}

// TestClientDownload writes the fetched series and reads it back through the DuckDB data source.
func (suite *ClientTestSuite) TestClientDownload() {
	suite.mockProvider.EXPECT().
		Fetch(gomock.Any(), "BTCUSDT", suite.start, suite.end).
		Return(suite.series("BTCUSDT", 100, 102, 101), nil).
		Times(1)

	var progress []float64

	client := suite.newClient(func(current, total float64, _ string) {
		suite.Equal(3.0, total)
		progress = append(progress, current)
	})

	path, err := client.Download(context.Background(), DownloadParams{
		Ticker:    "BTCUSDT",
		StartDate: suite.start,
		EndDate:   suite.end,
	})
	suite.Require().NoError(err)
	suite.Equal(filepath.Join(suite.tempDir, "BTCUSDT_2023-01-01_2023-01-31.parquet"), path)
	suite.Equal([]float64{1, 2, 3}, progress)

	source, err := datasource.NewDataSource(":memory:", logger.NewNopLogger())
	suite.Require().NoError(err)
	defer source.Close()

	loaded, err := source.Load(path, optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal("BTCUSDT", loaded.Symbol())
	suite.Equal([]float64{100, 102, 101}, loaded.Prices())
}

func (suite *ClientTestSuite) TestClientDownloadCreatesDataFolder() {
	suite.mockProvider.EXPECT().
		Fetch(gomock.Any(), "SPY", suite.start, suite.end).
		Return(suite.series("SPY", 400, 401), nil)

	dataPath := filepath.Join(suite.tempDir, "nested", "data")
	client, err := NewClientWithProvider(ClientConfig{
		ProviderType:  ProviderPolygon,
		WriterType:    WriterDuckDB,
		DataPath:      dataPath,
		PolygonApiKey: "key",
	}, suite.mockProvider, nil, nil)
	suite.Require().NoError(err)

	path, err := client.Download(context.Background(), DownloadParams{Ticker: "SPY", StartDate: suite.start, EndDate: suite.end})
	suite.Require().NoError(err)

	_, statErr := os.Stat(path)
	suite.NoError(statErr)
}

func (suite *ClientTestSuite) TestClientDownloadFetchError() {
	suite.mockProvider.EXPECT().
		Fetch(gomock.Any(), "INVALID", suite.start, suite.end).
		Return(types.PriceSeries{}, errors.New(errors.ErrCodeDataNotFound, "no market data returned for INVALID"))

	client := suite.newClient(nil)

	_, err := client.Download(context.Background(), DownloadParams{Ticker: "INVALID", StartDate: suite.start, EndDate: suite.end})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))

	entries, readErr := os.ReadDir(suite.tempDir)
	suite.NoError(readErr)
	suite.Empty(entries)
}

// TestDownloadParamsValidation tests the validation of the DownloadParams struct
func (suite *ClientTestSuite) TestDownloadParamsValidation() {
	testCases := []struct {
		name   string
		params DownloadParams
	}{
		{
			name:   "missing ticker",
			params: DownloadParams{StartDate: suite.start, EndDate: suite.end},
		},
		{
			name:   "missing start date",
			params: DownloadParams{Ticker: "AAPL", EndDate: suite.end},
		},
		{
			name:   "end date before start date",
			params: DownloadParams{Ticker: "AAPL", StartDate: suite.end, EndDate: suite.start},
		},
	}

	client := suite.newClient(nil)

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := client.Download(context.Background(), tc.params)
			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
		})
	}
}

// TestClientConfigValidation tests the validation of the ClientConfig struct
func (suite *ClientTestSuite) TestClientConfigValidation() {
	testCases := []struct {
		name        string
		config      ClientConfig
		expectError bool
	}{
		{
			name: "valid polygon config",
			config: ClientConfig{
				ProviderType:  ProviderPolygon,
				WriterType:    WriterDuckDB,
				DataPath:      suite.tempDir,
				PolygonApiKey: "test-api-key",
			},
		},
		{
			name: "valid binance config",
			config: ClientConfig{
				ProviderType: ProviderBinance,
				WriterType:   WriterDuckDB,
				DataPath:     suite.tempDir,
			},
		},
		{
			name: "missing provider type",
			config: ClientConfig{
				WriterType: WriterDuckDB,
				DataPath:   suite.tempDir,
			},
			expectError: true,
		},
		{
			name: "invalid provider type",
			config: ClientConfig{
				ProviderType: "invalid",
				WriterType:   WriterDuckDB,
				DataPath:     suite.tempDir,
			},
			expectError: true,
		},
		{
			name: "invalid writer type",
			config: ClientConfig{
				ProviderType: ProviderBinance,
				WriterType:   "csv",
				DataPath:     suite.tempDir,
			},
			expectError: true,
		},
		{
			name: "missing data path",
			config: ClientConfig{
				ProviderType: ProviderBinance,
				WriterType:   WriterDuckDB,
			},
			expectError: true,
		},
		{
			name: "polygon without api key",
			config: ClientConfig{
				ProviderType: ProviderPolygon,
				WriterType:   WriterDuckDB,
				DataPath:     suite.tempDir,
			},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			client, err := NewClient(tc.config, nil, nil)

			if tc.expectError {
				suite.Error(err)
				suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
				suite.Nil(client)
			} else {
				suite.NoError(err)
				suite.NotNil(client)
			}
		})
	}
}

func (suite *ClientTestSuite) TestNewClientWithNilProvider() {
	_, err := NewClientWithProvider(ClientConfig{
		ProviderType: ProviderBinance,
		WriterType:   WriterDuckDB,
		DataPath:     suite.tempDir,
	}, nil, nil, nil)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))
}
