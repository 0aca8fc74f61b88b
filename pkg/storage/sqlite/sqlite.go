// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/farmergpt/farmergpt/pkg/llm"
	"github.com/farmergpt/farmergpt/pkg/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL DEFAULT '',
	question   TEXT NOT NULL,
	answer     TEXT NOT NULL,
	language   TEXT NOT NULL DEFAULT 'auto',
	source     TEXT NOT NULL DEFAULT 'text',
	model      TEXT NOT NULL DEFAULT '',
	failed     BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS conversations_session_created
	ON conversations (session_id, created_at);
`

// Driver implements storage.Driver using SQLite.
type Driver struct {
	db *sql.DB
}

var _ storage.Driver = (*Driver)(nil)

// NewDriver opens (or creates) the database at dbPath and applies the schema.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(ctx context.Context, dbPath string) (*Driver, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Driver{db: db}, nil
}

// Insert stores ex and assigns its row id.
func (d *Driver) Insert(ctx context.Context, ex *llm.Exchange) error {
	if err := storage.Prepare(ex); err != nil {
		return err
	}

	query, args, err := storage.InsertBuilder(ex, squirrel.Question).ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}

	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("inserting exchange: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading exchange id: %w", err)
	}
	ex.ID = id
	return nil
}

// List returns the newest exchanges first.
func (d *Driver) List(ctx context.Context, opts storage.ListOptions) ([]*llm.Exchange, error) {
	query, args, err := storage.SelectBuilder(opts, squirrel.Question).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing exchanges: %w", err)
	}
	defer rows.Close()

	var result []*llm.Exchange
	for rows.Next() {
		var (
			row       storage.Row
			createdAt time.Time
		)
		if err := rows.Scan(row.Dest(&createdAt)...); err != nil {
			return nil, fmt.Errorf("scanning exchange: %w", err)
		}
		result = append(result, row.Exchange(createdAt))
	}

	return result, rows.Err()
}

// Close closes the database.
func (d *Driver) Close() error {
	return d.db.Close()
}
