package prefcache

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // cgo-free sqlite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS preference_items (
	namespace TEXT NOT NULL,
	item_id   TEXT NOT NULL,
	PRIMARY KEY (namespace, item_id)
);`

// SQLite is a durable Cache backed by a single-file SQLite database. It is
// the production cache on devices: survives restarts, works offline, and
// tolerates concurrent readers from one process.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path and ensures the
// schema exists.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("prefcache: open %s: %w", path, err)
	}
	// Single connection: the sqlite driver serializes writes anyway, and one
	// connection keeps transactions from deadlocking on the file lock.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prefcache: init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// ReadAll implements Cache.
func (s *SQLite) ReadAll(ctx context.Context, namespace string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id FROM preference_items WHERE namespace = ?`, namespace)
	if err != nil {
		return nil, fmt.Errorf("prefcache: read %s: %w", namespace, err)
	}
	defer func() { _ = rows.Close() }()

	items := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("prefcache: read %s: %w", namespace, err)
		}
		items[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("prefcache: read %s: %w", namespace, err)
	}
	return items, nil
}

// WriteAll implements Cache. The replace is transactional: readers never see
// a half-written set.
func (s *SQLite) WriteAll(ctx context.Context, namespace string, items map[string]struct{}) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("prefcache: write %s: %w", namespace, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM preference_items WHERE namespace = ?`, namespace); err != nil {
		return fmt.Errorf("prefcache: write %s: %w", namespace, err)
	}
	for id := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO preference_items (namespace, item_id) VALUES (?, ?)`, namespace, id); err != nil {
			return fmt.Errorf("prefcache: write %s: %w", namespace, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("prefcache: write %s: %w", namespace, err)
	}
	return nil
}
