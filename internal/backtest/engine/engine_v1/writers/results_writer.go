package writers

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

const (
	StatsFileName      = "stats.yaml"
	TradesFileName     = "trades.parquet"
	SignalsFileName    = "signals.parquet"
	IndicatorsFileName = "indicators.parquet"
	MarksFileName      = "marks.parquet"
)

var tableSchemas = []string{
	`CREATE TABLE trades (
		entry_time TIMESTAMP,
		entry_price DOUBLE,
		exit_time TIMESTAMP,
		exit_price DOUBLE,
		profit DOUBLE,
		cumulative_profit DOUBLE,
		forced BOOLEAN
	)`,
	`CREATE TABLE signals (
		time TIMESTAMP,
		price DOUBLE,
		signal TINYINT
	)`,
	`CREATE TABLE indicators (
		time TIMESTAMP,
		name TEXT,
		value DOUBLE
	)`,
	`CREATE TABLE marks (
		time TIMESTAMP,
		price DOUBLE,
		signal TEXT,
		action TEXT,
		color TEXT,
		shape TEXT,
		reason TEXT
	)`,
}

// ResultsWriter persists the outcome of one backtest run into a folder:
// stats.yaml plus one parquet file each for trades, signals, indicator values and marks.
type ResultsWriter struct {
	outputFolder string
	mu           sync.Mutex
}

// NewResultsWriter creates a writer for outputFolder. The folder is created on Write.
func NewResultsWriter(outputFolder string) *ResultsWriter {
	return &ResultsWriter{
		outputFolder: outputFolder,
		mu:           sync.Mutex{},
	}
}

// GetOutputFolder returns the folder results are written to.
func (w *ResultsWriter) GetOutputFolder() string {
	return w.outputFolder
}

// Write stores summary, signals and result. Existing files are overwritten.
func (w *ResultsWriter) Write(summary types.RunSummary, signals types.SignalSeries, result types.BacktestResult) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(w.outputFolder, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to create results folder", err)
	}

	if err := types.WriteRunSummary(filepath.Join(w.outputFolder, StatsFileName), summary); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to write stats", err)
	}

	// Open DuckDB connection (in-memory)
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to open DuckDB connection", err)
	}
	defer db.Close()

	for _, schema := range tableSchemas {
		if _, err := db.Exec(schema); err != nil {
			return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to create table", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to begin transaction", err)
	}

	if err := insertRows(tx, signals, result); err != nil {
		_ = tx.Rollback()

		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to insert results", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to commit results", err)
	}

	exports := []struct {
		query string
		file  string
	}{
		{"SELECT * FROM trades ORDER BY exit_time ASC", TradesFileName},
		{"SELECT * FROM signals ORDER BY time ASC", SignalsFileName},
		{"SELECT * FROM indicators ORDER BY time ASC, name ASC", IndicatorsFileName},
		{"SELECT * FROM marks ORDER BY time ASC", MarksFileName},
	}

	for _, export := range exports {
		if err := exportToParquet(db, export.query, filepath.Join(w.outputFolder, export.file)); err != nil {
			return errors.Wrapf(errors.ErrCodeResultWriteFailed, err, "failed to export %s", export.file)
		}
	}

	return nil
}

func insertRows(tx *sql.Tx, signals types.SignalSeries, result types.BacktestResult) error {
	tradeStmt, err := tx.Prepare(`INSERT INTO trades VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare trade statement: %w", err)
	}
	defer tradeStmt.Close()

	for i, trade := range result.Trades {
		cumulative := 0.0
		if i < len(result.CumulativeProfit) {
			cumulative = result.CumulativeProfit[i]
		}

		if _, err := tradeStmt.Exec(trade.EntryTime, trade.EntryPrice, trade.ExitTime, trade.ExitPrice, trade.Profit, cumulative, trade.Forced); err != nil {
			return fmt.Errorf("failed to insert trade: %w", err)
		}
	}

	signalStmt, err := tx.Prepare(`INSERT INTO signals VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare signal statement: %w", err)
	}
	defer signalStmt.Close()

	indicatorStmt, err := tx.Prepare(`INSERT INTO indicators VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare indicator statement: %w", err)
	}
	defer indicatorStmt.Close()

	for _, point := range signals.Points {
		if _, err := signalStmt.Exec(point.Time, point.Price, int8(point.Value)); err != nil {
			return fmt.Errorf("failed to insert signal: %w", err)
		}

		names := make([]string, 0, len(point.Indicators))
		for name := range point.Indicators {
			names = append(names, name)
		}

		sort.Strings(names)

		for _, name := range names {
			if _, err := indicatorStmt.Exec(point.Time, name, point.Indicators[name]); err != nil {
				return fmt.Errorf("failed to insert indicator value: %w", err)
			}
		}
	}

	markStmt, err := tx.Prepare(`INSERT INTO marks VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare mark statement: %w", err)
	}
	defer markStmt.Close()

	for _, mark := range result.Marks {
		if _, err := markStmt.Exec(mark.Time, mark.Price, string(mark.Signal), string(mark.Action), string(mark.Color), string(mark.Shape), mark.Reason); err != nil {
			return fmt.Errorf("failed to insert mark: %w", err)
		}
	}

	return nil
}

func exportToParquet(db *sql.DB, query string, path string) error {
	escaped := strings.ReplaceAll(path, "'", "''")

	_, err := db.Exec(fmt.Sprintf(`COPY (%s) TO '%s' (FORMAT PARQUET)`, query, escaped))
	if err != nil {
		return fmt.Errorf("failed to export to parquet: %w", err)
	}

	return nil
}
