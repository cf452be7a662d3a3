package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"stocklens/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// Reader provides read-only access to the bars table.
type Reader struct {
	db *sql.DB
}

// NewReader opens a SQLite connection for reading.
func NewReader(dbPath string) (*Reader, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open reader: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)

	log.Printf("[sqlite-reader] opened %s", dbPath)
	return &Reader{db: db}, nil
}

// DB returns the underlying sql.DB for health checks.
func (r *Reader) DB() *sql.DB { return r.db }

// LoadBars reads bars for the given tickers in date order. An empty ticker
// list loads every ticker. The zero time disables the respective bound.
func (r *Reader) LoadBars(ctx context.Context, tickers []string, from, to time.Time) ([]model.PriceBar, error) {
	query := `SELECT ticker, date, open, high, low, close, volume FROM bars`
	var (
		conds []string
		args  []interface{}
	)
	if len(tickers) > 0 {
		placeholders := ""
		for i, tk := range tickers {
			if i > 0 {
				placeholders += ","
			}
			placeholders += "?"
			args = append(args, tk)
		}
		conds = append(conds, "ticker IN ("+placeholders+")")
	}
	if !from.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, from.Unix())
	}
	if !to.IsZero() {
		conds = append(conds, "date <= ?")
		args = append(args, to.Unix())
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY ticker, date ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite query bars: %w", err)
	}
	defer rows.Close()

	var bars []model.PriceBar
	for rows.Next() {
		var b model.PriceBar
		var ts int64
		if err := rows.Scan(&b.Ticker, &ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("sqlite scan bars: %w", err)
		}
		b.Date = time.Unix(ts, 0).UTC()
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// Tickers lists every distinct ticker in the store, sorted.
func (r *Reader) Tickers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT ticker FROM bars ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("sqlite query tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var tk string
		if err := rows.Scan(&tk); err != nil {
			return nil, fmt.Errorf("sqlite scan ticker: %w", err)
		}
		tickers = append(tickers, tk)
	}
	return tickers, rows.Err()
}

// BarCount returns the number of stored bars for one ticker.
func (r *Reader) BarCount(ctx context.Context, ticker string) (int, error) {
	var n sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bars WHERE ticker = ?`, ticker).Scan(&n)
	if err != nil {
		return 0, err
	}
	return int(n.Int64), nil
}

// Close closes the database.
func (r *Reader) Close() error { return r.db.Close() }
