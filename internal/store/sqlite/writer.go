// Package sqlite persists daily price bars. The writer upserts ingested
// bars in batched transactions; the reader loads per-ticker ranges for
// table construction.
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

const defaultBatchSize = 500

// WriterConfig configures the SQLite writer.
type WriterConfig struct {
	DBPath string // path to SQLite database file, e.g. "data/bars.db"
}

// Writer is a single-writer SQLite handle with transaction batching.
type Writer struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (w *Writer) DB() *sql.DB { return w.db }

// New creates a new SQLite Writer, initializes the database with WAL mode
// and the bars schema.
func New(cfg WriterConfig) (*Writer, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened database at %s", cfg.DBPath)
	return &Writer{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bars (
			ticker TEXT    NOT NULL,
			date   INTEGER NOT NULL,
			open   REAL    NOT NULL,
			high   REAL    NOT NULL,
			low    REAL    NOT NULL,
			close  REAL    NOT NULL,
			volume INTEGER NOT NULL,
			PRIMARY KEY (ticker, date)
		);
	`)
	return err
}

// UpsertBars writes bars in batched transactions, replacing rows that
// already exist for the same (ticker, date). Returns the number written.
func (w *Writer) UpsertBars(ctx context.Context, bars []model.PriceBar) (int, error) {
	written := 0
	for lo := 0; lo < len(bars); lo += defaultBatchSize {
		hi := lo + defaultBatchSize
		if hi > len(bars) {
			hi = len(bars)
		}
		if err := w.upsertBatch(ctx, bars[lo:hi]); err != nil {
			return written, err
		}
		written += hi - lo
	}
	return written, nil
}

func (w *Writer) upsertBatch(ctx context.Context, bars []model.PriceBar) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO bars (ticker, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite prepare: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		ticker := b.Ticker
		if ticker == "" {
			ticker = model.UnknownTicker
		}
		_, err := stmt.Exec(ticker, b.Date.Unix(), b.Open, b.High, b.Low, b.Close, b.Volume)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite insert: %w", err)
		}
	}
	return tx.Commit()
}

// LastDate returns the date of the most recent stored bar for a ticker.
// The zero time means no bars exist.
func (w *Writer) LastDate(ctx context.Context, ticker string) (time.Time, error) {
	var ts sql.NullInt64
	err := w.db.QueryRowContext(ctx,
		`SELECT MAX(date) FROM bars WHERE ticker = ?`, ticker,
	).Scan(&ts)
	if err != nil {
		return time.Time{}, err
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return time.Unix(ts.Int64, 0).UTC(), nil
}

// Close closes the database.
func (w *Writer) Close() error { return w.db.Close() }
