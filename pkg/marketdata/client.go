package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/rxtech-lab/argo-backtest/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-backtest/pkg/marketdata/writer"
)

// ProviderType defines the type of market data provider.
type ProviderType = provider.ProviderType

const (
	ProviderPolygon = provider.ProviderPolygon
	ProviderBinance = provider.ProviderBinance
)

// WriterType defines the type of market data writer.
type WriterType string

const (
	WriterDuckDB WriterType = "duckdb"
)

// OnDownloadProgress reports how many of total steps of a download are done.
type OnDownloadProgress = func(current float64, total float64, message string)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  ProviderType `validate:"required,oneof=polygon binance"`
	WriterType    WriterType   `validate:"required,oneof=duckdb"`
	DataPath      string       `validate:"required"`
	PolygonApiKey string       `validate:"required_if=ProviderType polygon"`
}

// DownloadParams holds the parameters for a market data download request.
type DownloadParams struct {
	Ticker    string    `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtfield=StartDate"`
}

// Client is the market data client responsible for downloading data from providers and storing it using writers.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	validate   *validator.Validate
	onProgress OnDownloadProgress
	log        *logger.Logger
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, onProgress OnDownloadProgress, log *logger.Logger) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	marketProvider, err := provider.NewMarketDataProvider(config.ProviderType, config.PolygonApiKey)
	if err != nil {
		return nil, err
	}

	return NewClientWithProvider(config, marketProvider, onProgress, log)
}

// NewClientWithProvider creates a client that downloads from the given provider.
func NewClientWithProvider(config ClientConfig, marketProvider provider.Provider, onProgress OnDownloadProgress, log *logger.Logger) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	if marketProvider == nil {
		return nil, errors.New(errors.ErrCodeInvalidProvider, "market data provider is nil")
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Client{
		provider:   marketProvider,
		config:     config,
		validate:   validate,
		onProgress: onProgress,
		log:        log,
	}, nil
}

// Download fetches the daily series described by params and stores it.
// It returns the path of the written file.
// The context can be used to cancel the download operation.
func (c *Client) Download(ctx context.Context, params DownloadParams) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	c.log.Info("Downloading market data",
		zap.String("ticker", params.Ticker),
		zap.String("provider", string(c.config.ProviderType)),
		zap.Time("start", params.StartDate),
		zap.Time("end", params.EndDate),
	)

	series, err := c.provider.Fetch(ctx, params.Ticker, params.StartDate, params.EndDate)
	if err != nil {
		return "", err
	}

	marketWriter, err := c.setupWriter(params)
	if err != nil {
		return "", err
	}

	defer func() {
		if cerr := marketWriter.Close(); cerr != nil {
			c.log.Warn("Failed to close market data writer", zap.Error(cerr))
		}
	}()

	total := float64(series.Len())

	for i, bar := range series.Bars() {
		if err := marketWriter.Write(series.Symbol(), bar); err != nil {
			return "", err
		}

		c.reportProgress(float64(i+1), total, fmt.Sprintf("Writing %s", params.Ticker))
	}

	outputPath, err := marketWriter.Finalize()
	if err != nil {
		return "", err
	}

	c.log.Info("Finished downloading market data",
		zap.String("ticker", params.Ticker),
		zap.Int("bars", series.Len()),
		zap.String("path", outputPath),
	)

	return outputPath, nil
}

func (c *Client) reportProgress(current, total float64, message string) {
	if c.onProgress != nil {
		c.onProgress(current, total, message)
	}
}

// OutputFileName returns the file name a download is stored under: TICKER_START_END.parquet.
func OutputFileName(params DownloadParams) string {
	ticker := strings.NewReplacer(":", "_", "/", "_", " ", "_").Replace(params.Ticker)

	return fmt.Sprintf("%s_%s_%s.parquet",
		ticker,
		params.StartDate.Format(time.DateOnly),
		params.EndDate.Format(time.DateOnly))
}

// setupWriter initializes the appropriate market data writer based on configuration.
func (c *Client) setupWriter(params DownloadParams) (writer.MarketDataWriter, error) {
	switch c.config.WriterType {
	case WriterDuckDB:
		if err := os.MkdirAll(c.config.DataPath, 0755); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to create data folder %s", c.config.DataPath)
		}

		duckdbWriter := writer.NewDuckDBWriter(filepath.Join(c.config.DataPath, OutputFileName(params)))
		if err := duckdbWriter.Initialize(); err != nil {
			return nil, err
		}

		return duckdbWriter, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported writer type: %s", c.config.WriterType)
	}
}
