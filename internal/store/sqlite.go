package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"stocksim/internal/market"
)

// schema keeps the stored order in pos so LoadAll preserves universe order.
const schema = `
CREATE TABLE IF NOT EXISTS instruments (
	pos              INTEGER PRIMARY KEY,
	symbol           TEXT NOT NULL UNIQUE,
	open_price       REAL NOT NULL,
	refresh_interval INTEGER NOT NULL,
	last_update      INTEGER NOT NULL,
	current_price    REAL NOT NULL
);`

// SQLiteStore keeps the record set in a single-table SQLite database.
// SaveAll replaces the table contents inside one transaction.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) LoadAll(ctx context.Context) ([]market.Instrument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, open_price, refresh_interval, last_update, current_price
		FROM instruments ORDER BY pos`)
	if err != nil {
		return nil, fmt.Errorf("query instruments: %w", err)
	}
	defer rows.Close()

	var out []market.Instrument
	for rows.Next() {
		var in market.Instrument
		if err := rows.Scan(&in.Symbol, &in.OpenPrice, &in.RefreshInterval, &in.LastUpdate, &in.CurrentPrice); err != nil {
			return nil, fmt.Errorf("scan instrument: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate instruments: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) SaveAll(ctx context.Context, instruments []market.Instrument) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM instruments`); err != nil {
		return fmt.Errorf("clear instruments: %w", err)
	}
	for i, in := range instruments {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO instruments
			(pos, symbol, open_price, refresh_interval, last_update, current_price)
			VALUES (?, ?, ?, ?, ?, ?)`,
			i, in.Symbol, in.OpenPrice, in.RefreshInterval, in.LastUpdate, in.CurrentPrice,
		)
		if err != nil {
			return fmt.Errorf("insert %s: %w", in.Symbol, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Exists(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM instruments`).Scan(&n); err != nil {
		return false, fmt.Errorf("count instruments: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
