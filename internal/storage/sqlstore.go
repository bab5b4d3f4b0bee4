package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Schema for JSON-encoded collection snapshots.
// Compatible with both SQLite and PostgreSQL.
const schemaSnapshots = `
CREATE TABLE IF NOT EXISTS snapshots (
    collection TEXT NOT NULL,
    ord INTEGER NOT NULL,
    body TEXT NOT NULL,
    PRIMARY KEY (collection, ord)
);
`

// SQLStore persists a collection snapshot in a relational database, one
// JSON-encoded row per entity. Works with both SQLite and PostgreSQL
// drivers.
type SQLStore[T any] struct {
	db     *sql.DB
	driver string
	name   string
}

// NewSQLStore creates a SQL snapshot store for the named collection,
// ensuring the snapshots table exists.
func NewSQLStore[T any](db *sql.DB, driver, name string) (*SQLStore[T], error) {
	if _, err := db.Exec(schemaSnapshots); err != nil {
		return nil, fmt.Errorf("failed to create snapshots table: %w", err)
	}
	return &SQLStore[T]{db: db, driver: driver, name: name}, nil
}

// Load reads the snapshot rows in insertion order. No rows means no prior
// snapshot.
func (s *SQLStore[T]) Load(ctx context.Context) ([]T, error) {
	query := s.rebind(`SELECT body FROM snapshots WHERE collection = ? ORDER BY ord`)

	rows, err := s.db.QueryContext(ctx, query, s.name)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		var item T
		if err := json.Unmarshal([]byte(body), &item); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Save overwrites the whole snapshot in a single transaction: delete all
// rows for the collection, then insert the current state.
func (s *SQLStore[T]) Save(ctx context.Context, items []T) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM snapshots WHERE collection = ?`), s.name); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	insert := s.rebind(`INSERT INTO snapshots (collection, ord, body) VALUES (?, ?, ?)`)
	for i, item := range items {
		body, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to encode snapshot row: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insert, s.name, i, string(body)); err != nil {
			return fmt.Errorf("failed to insert snapshot row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// rebind converts ? placeholders to $n for the postgres driver.
func (s *SQLStore[T]) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
