package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-backtest/pkg/marketdata"
)

func (a *app) downloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Download daily closing prices into a parquet file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ticker",
				Aliases:  []string{"t"},
				Usage:    "Ticker symbol",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:     "start",
				Aliases:  []string{"s"},
				Usage:    "Start date in `YYYY-MM-DD` format",
				Config:   cli.TimestampConfig{Layouts: []string{time.DateOnly}},
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config:  cli.TimestampConfig{Layouts: []string{time.DateOnly}},
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider to use (%s)", strings.Join(marketdata.GetSupportedProviders(), ", ")),
				Value:   string(marketdata.ProviderPolygon),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the data output directory",
				Value:   "data",
			},
		},
		Action: a.downloadAction,
	}
}

func (a *app) downloadAction(ctx context.Context, cmd *cli.Command) error {
	providerName := cmd.String("provider")

	info, err := marketdata.GetProviderInfo(providerName)
	if err != nil {
		return err
	}

	apiKey := os.Getenv("POLYGON_API_KEY")
	if info.RequiresAuth && apiKey == "" {
		return fmt.Errorf("POLYGON_API_KEY is required for the %s provider", info.DisplayName)
	}

	var bar *progressbar.ProgressBar

	onProgress := func(current float64, total float64, message string) {
		if bar == nil {
			bar = progressbar.NewOptions(int(total),
				progressbar.OptionSetDescription(message),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWriter(os.Stderr),
			)
		}

		_ = bar.Set(int(current))
	}

	client, err := marketdata.NewClient(marketdata.ClientConfig{
		ProviderType:  marketdata.ProviderType(providerName),
		WriterType:    marketdata.WriterDuckDB,
		DataPath:      cmd.String("data"),
		PolygonApiKey: apiKey,
	}, onProgress, a.log)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	path, err := client.Download(ctx, marketdata.DownloadParams{
		Ticker:    cmd.String("ticker"),
		StartDate: cmd.Timestamp("start"),
		EndDate:   cmd.Timestamp("end"),
	})
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	if bar != nil {
		_ = bar.Finish()
	}

	fmt.Fprintf(output(cmd), "Downloaded data to %s\n", path)

	return nil
}
