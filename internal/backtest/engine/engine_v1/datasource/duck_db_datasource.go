package datasource

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

const (
	columnTime     = "time"
	columnSymbol   = "symbol"
	columnAdjClose = "adj_close"
	columnClose    = "close"
)

type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDataSource creates a new DuckDB data source. path is the DuckDB database location,
// use ":memory:" for an in-memory database. Price files are queried in place and never imported.
func NewDataSource(path string, logger *logger.Logger) (DataSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &DuckDBDataSource{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Load implements DataSource.
// Parquet and CSV files are supported. The price is taken from adj_close when present, else close.
// The symbol comes from a symbol column, or the file name up to the first underscore.
func (d *DuckDBDataSource) Load(path string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.PriceSeries, error) {
	d.logger.Debug("Loading price series", zap.String("path", path))

	if _, err := os.Stat(path); err != nil {
		return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeDataNotFound, err, "price data %s not found", path)
	}

	source, err := tableFunction(path)
	if err != nil {
		return types.PriceSeries{}, err
	}

	columns, err := d.columns(source)
	if err != nil {
		return types.PriceSeries{}, err
	}

	timeColumn, ok := columns[columnTime]
	if !ok {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeInvalidInput, "time column not found in %s", path)
	}

	priceColumn, ok := columns[columnAdjClose]
	if !ok {
		priceColumn, ok = columns[columnClose]
	}

	if !ok {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodePriceColumnNotFound, "price column not found in %s: expected %s or %s", path, columnAdjClose, columnClose)
	}

	symbolColumn, hasSymbol := columns[columnSymbol]

	timeExpr := fmt.Sprintf("CAST(%s AS TIMESTAMP)", quoteIdentifier(timeColumn))

	selectColumns := []string{
		timeExpr + " AS time",
		fmt.Sprintf("CAST(%s AS DOUBLE) AS price", quoteIdentifier(priceColumn)),
	}
	if hasSymbol {
		selectColumns = append(selectColumns, fmt.Sprintf("CAST(%s AS VARCHAR) AS symbol", quoteIdentifier(symbolColumn)))
	}

	builder := d.sq.Select(selectColumns...).From(source).OrderBy(timeExpr + " ASC")
	if start.IsSome() {
		builder = builder.Where(squirrel.Expr(timeExpr+" >= ?", start.Unwrap()))
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.Expr(timeExpr+" <= ?", end.Unwrap()))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build price query", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query %s", path)
	}
	defer rows.Close()

	symbol := symbolFromPath(path)
	bars := make([]types.PriceBar, 0, 256)

	for rows.Next() {
		var (
			timestamp time.Time
			price     sql.NullFloat64
			rowSymbol sql.NullString
		)

		dest := []any{&timestamp, &price}
		if hasSymbol {
			dest = append(dest, &rowSymbol)
		}

		if err := rows.Scan(dest...); err != nil {
			return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		if !price.Valid {
			return types.PriceSeries{}, errors.Newf(errors.ErrCodeInvalidInput, "missing price at %s in %s", timestamp.Format(time.DateOnly), path)
		}

		if len(bars) == 0 && rowSymbol.Valid && rowSymbol.String != "" {
			symbol = rowSymbol.String
		}

		bars = append(bars, types.PriceBar{Time: timestamp, Price: price.Float64})
	}

	if err := rows.Err(); err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err)
	}

	d.logger.Debug("Price series loaded",
		zap.String("path", path),
		zap.String("symbol", symbol),
		zap.String("price_column", priceColumn),
		zap.Int("bars", len(bars)),
	)

	return types.NewPriceSeries(symbol, bars)
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}

// columns maps the normalized column names of source to their original spelling.
func (d *DuckDBDataSource) columns(source string) (map[string]string, error) {
	query, _, err := d.sq.Select("*").From(source).Limit(0).ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build column query", err)
	}

	rows, err := d.db.Query(query)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read columns", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read columns", err)
	}

	columns := make(map[string]string, len(names))
	for _, name := range names {
		columns[normalizeColumn(name)] = name
	}

	return columns, nil
}

func tableFunction(path string) (string, error) {
	escaped := strings.ReplaceAll(path, "'", "''")

	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return fmt.Sprintf("read_parquet('%s')", escaped), nil
	case ".csv":
		return fmt.Sprintf("read_csv_auto('%s')", escaped), nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidInput, "unsupported price file %s: expected .parquet or .csv", path)
	}
}

// normalizeColumn lower cases name and turns spaces into underscores, so "Adj Close" matches adj_close.
func normalizeColumn(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func symbolFromPath(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if idx := strings.Index(name, "_"); idx > 0 {
		return name[:idx]
	}

	return name
}
