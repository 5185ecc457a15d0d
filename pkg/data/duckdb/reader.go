package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/multierr"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/data"
)

const readerComponentName = "data.duckdb.reader"

// Reader loads bars from duckdb tables or from csv files through read_csv_auto.
// An empty data source name opens an in memory database.
type Reader struct {
	dataSourceName string
	db             *sql.DB
}

func NewReader(dataSourceName string) *Reader {
	return &Reader{
		dataSourceName: dataSourceName,
	}
}

func (r *Reader) Connect() error {
	db, err := sql.Open("duckdb", r.dataSourceName)
	if err != nil {
		return fmt.Errorf("unable to open duckdb %q: %w", r.dataSourceName, err)
	}
	r.db = db
	return nil
}

func (r *Reader) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// LoadBars reads (ts, open, high, low, close, volume) rows of one symbol from a table
func (r *Reader) LoadBars(ctx context.Context, table string, asset common.Asset, period time.Duration, from, to time.Time) (bars []common.Bar, err error) {
	if err := data.ValidateIdentifier(table); err != nil {
		return nil, err
	}

	// #nosec G201
	query := fmt.Sprintf(`SELECT ts, open, high, low, close, volume FROM %s WHERE symbol = ? AND ts BETWEEN ? AND ? ORDER BY ts`, table)

	rows, err := r.db.QueryContext(ctx, query, asset.Symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("error preparing query: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(rows))

	return data.ScanBars(rows, data.ScanTimeRow, asset, period, readerComponentName)
}

// LoadCSV reads a csv file with a header of ts, open, high, low, close, volume
func (r *Reader) LoadCSV(ctx context.Context, path string, asset common.Asset, period time.Duration) (bars []common.Bar, err error) {
	quoted := "'" + strings.ReplaceAll(path, "'", "''") + "'"

	// #nosec G201
	query := fmt.Sprintf(`SELECT CAST(ts AS TIMESTAMP), CAST(open AS DOUBLE), CAST(high AS DOUBLE), CAST(low AS DOUBLE), CAST(close AS DOUBLE), CAST(volume AS DOUBLE) FROM read_csv_auto(%s, header = true) ORDER BY ts`, quoted)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("unable to read %q: %w", path, err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(rows))

	return data.ScanBars(rows, data.ScanTimeRow, asset, period, readerComponentName)
}
