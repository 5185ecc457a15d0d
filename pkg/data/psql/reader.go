package psql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/multierr"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/data"
)

const readerComponentName = "data.psql.reader"

type Reader struct {
	db *sql.DB
}

func Connect(ctx context.Context, host, port, user, pass, db string) (*Reader, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, pass, db)
	dbConn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := dbConn.PingContext(ctx); err != nil {
		return nil, multierr.Append(err, dbConn.Close())
	}

	return &Reader{db: dbConn}, nil
}

func (r *Reader) Close() error {
	return r.db.Close()
}

// LoadBars reads (ts, open, high, low, close, volume) rows of one symbol from a table
func (r *Reader) LoadBars(ctx context.Context, table string, asset common.Asset, period time.Duration, from, to time.Time) (bars []common.Bar, err error) {
	if err := data.ValidateIdentifier(table); err != nil {
		return nil, err
	}

	// #nosec G201
	query := fmt.Sprintf(`SELECT ts, open::float8, high::float8, low::float8, close::float8, volume::float8
		FROM %s WHERE symbol = $1 AND ts BETWEEN $2 AND $3 ORDER BY ts`, table)

	rows, err := r.db.QueryContext(ctx, query, asset.Symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("error preparing query: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(rows))

	return data.ScanBars(rows, data.ScanTimeRow, asset, period, readerComponentName)
}
