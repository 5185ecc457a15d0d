package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/multierr"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/data"
)

const readerComponentName = "data.clickhouse.reader"

// Reader loads candles from a table keyed by (symbol, interval, open_time_ms)
type Reader struct {
	dsn   string
	table string
	conn  driver.Conn
}

func NewReader(dsn, table string) *Reader {
	return &Reader{dsn: dsn, table: table}
}

func (r *Reader) Connect(ctx context.Context) error {
	if err := data.ValidateIdentifier(r.table); err != nil {
		return err
	}
	opts, err := clickhouse.ParseDSN(r.dsn)
	if err != nil {
		return fmt.Errorf("unable to parse dsn: %w", err)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return fmt.Errorf("unable to open clickhouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return multierr.Append(fmt.Errorf("clickhouse ping: %w", err), conn.Close())
	}
	r.conn = conn
	return nil
}

func (r *Reader) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

func (r *Reader) LoadBars(ctx context.Context, asset common.Asset, interval string, from, to time.Time) (bars []common.Bar, err error) {
	period, err := data.ParseInterval(interval)
	if err != nil {
		return nil, err
	}

	// #nosec G201
	query := fmt.Sprintf(`SELECT open_time_ms, toFloat64(open), toFloat64(high), toFloat64(low), toFloat64(close), toFloat64(volume)
		FROM %s WHERE symbol = ? AND interval = ? AND open_time_ms BETWEEN ? AND ? ORDER BY open_time_ms`, r.table)

	rows, err := r.conn.Query(ctx, query, asset.Symbol, interval, uint64(from.UnixMilli()), uint64(to.UnixMilli())) // #nosec G115
	if err != nil {
		return nil, fmt.Errorf("error preparing query: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(rows))

	return data.ScanBars(rows, scanMillisRow, asset, period, readerComponentName)
}

func scanMillisRow(rows data.Rows, row *data.BarRow) error {
	var openTimeMs uint64
	if err := rows.Scan(&openTimeMs, &row.Open, &row.High, &row.Low, &row.Close, &row.Volume); err != nil {
		return err
	}
	row.TimeStamp = time.UnixMilli(int64(openTimeMs)) // #nosec G115
	return nil
}
