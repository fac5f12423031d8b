package cache

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"DriftSentinel/internal/marketdata"
	"DriftSentinel/internal/model"
)

// SQLiteCache stores fetched bars in a local SQLite database.
type SQLiteCache struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteCache opens (or creates) the database and runs migrations.
func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &SQLiteCache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite bar cache opened: %s", dbPath)
	return c, nil
}

func (c *SQLiteCache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bars (
			ticker    TEXT NOT NULL,
			timeframe TEXT NOT NULL,
			ts        INTEGER NOT NULL,
			open      REAL,
			high      REAL,
			low       REAL,
			close     REAL,
			volume    INTEGER,
			PRIMARY KEY (ticker, timeframe, ts)
		)`,
		`CREATE TABLE IF NOT EXISTS fetched_ranges (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker    TEXT NOT NULL,
			timeframe TEXT NOT NULL,
			start_ts  INTEGER NOT NULL,
			end_ts    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ranges ON fetched_ranges(ticker, timeframe)`,
	}
	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// Load returns cached bars if a previously fetched range covers [start, end).
func (c *SQLiteCache) Load(ticker string, tf marketdata.Timeframe, start, end time.Time) ([]model.Bar, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var covered int
	err := c.db.QueryRow(
		`SELECT COUNT(*) FROM fetched_ranges
		 WHERE ticker = ? AND timeframe = ? AND start_ts <= ? AND end_ts >= ?`,
		ticker, tf.String(), start.Unix(), end.Unix(),
	).Scan(&covered)
	if err != nil {
		return nil, false, fmt.Errorf("check coverage: %w", err)
	}
	if covered == 0 {
		return nil, false, nil
	}

	rows, err := c.db.Query(
		`SELECT ts, open, high, low, close, volume FROM bars
		 WHERE ticker = ? AND timeframe = ? AND ts >= ? AND ts < ?
		 ORDER BY ts`,
		ticker, tf.String(), start.Unix(), end.Unix(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("select bars: %w", err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var ts int64
		var b model.Bar
		if err := rows.Scan(&ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, false, fmt.Errorf("scan bar: %w", err)
		}
		b.Timestamp = time.Unix(ts, 0).UTC()
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return bars, true, nil
}

// Store saves the bars and marks the range as fetched.
func (c *SQLiteCache) Store(ticker string, tf marketdata.Timeframe, start, end time.Time, bars []model.Bar) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, b := range bars {
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO bars (ticker, timeframe, ts, open, high, low, close, volume)
			 VALUES (?,?,?,?,?,?,?,?)`,
			ticker, tf.String(), b.Timestamp.Unix(), b.Open, b.High, b.Low, b.Close, b.Volume,
		); err != nil {
			return fmt.Errorf("insert bar: %w", err)
		}
	}
	if _, err := tx.Exec(
		`INSERT INTO fetched_ranges (ticker, timeframe, start_ts, end_ts) VALUES (?,?,?,?)`,
		ticker, tf.String(), start.Unix(), end.Unix(),
	); err != nil {
		return fmt.Errorf("insert range: %w", err)
	}
	return tx.Commit()
}

func (c *SQLiteCache) Close() error {
	log.Println("[INFO] closing sqlite bar cache")
	return c.db.Close()
}
