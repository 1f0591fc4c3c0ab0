// Package store persists extracted tables as a named key-value table in
// SQLite, keyed by placeholder id.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// nameRe keeps namespace names safe to splice into SQL identifiers.
var nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Entry is one key/value pair for Replace. Values are JSON-encoded at rest.
type Entry struct {
	Key   string
	Value any
}

// Store is a named, durable key-value table. Mutating operations are
// serialized through an internal mutex; reads run concurrently and, because
// Replace commits in a single transaction, never observe a half-replaced
// generation.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	name string
}

// Open opens the key-value table called name inside the SQLite database at
// path, creating both as needed. When destructiveInit is true every existing
// entry for name is dropped before use.
func Open(path, name string, destructiveInit bool) (*Store, error) {
	if !nameRe.MatchString(name) {
		return nil, fmt.Errorf("invalid table name %q", name)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db, name: name}
	if destructiveInit {
		if _, err := db.Exec(`DROP TABLE IF EXISTS ` + name); err != nil {
			db.Close()
			return nil, fmt.Errorf("dropping table %s: %w", name, err)
		}
	}
	if _, err := db.Exec(fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value TEXT NOT NULL)`, name)); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table %s: %w", name, err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores value under key, overwriting any previous value.
func (s *Store) Put(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding value for %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`, s.name),
		key, string(data))
	if err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	return nil
}

// Get decodes the value stored under key into out. A missing key is not an
// error: it reports (false, nil).
func (s *Store) Get(ctx context.Context, key string, out any) (bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT value FROM %s WHERE key = ?`, s.name), key).Scan(&data)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading %s: %w", key, err)
	}
	if out != nil {
		if err := json.Unmarshal([]byte(data), out); err != nil {
			return false, fmt.Errorf("decoding %s: %w", key, err)
		}
	}
	return true, nil
}

// Delete removes key and reports whether it existed.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE key = ?`, s.name), key)
	if err != nil {
		return false, fmt.Errorf("deleting %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting %s: %w", key, err)
	}
	return n > 0, nil
}

// Keys returns every stored key in no defined order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT key FROM %s`, s.name))
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("listing keys: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Replace deletes every current entry and stores the given ones, all inside
// one transaction, so readers see either the old generation or the new one.
func (s *Store) Replace(ctx context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, s.name)); err != nil {
		return fmt.Errorf("clearing table: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (key, value) VALUES (?, ?)`, s.name))
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()
	for _, e := range entries {
		data, err := json.Marshal(e.Value)
		if err != nil {
			return fmt.Errorf("encoding value for %s: %w", e.Key, err)
		}
		if _, err := stmt.ExecContext(ctx, e.Key, string(data)); err != nil {
			return fmt.Errorf("storing %s: %w", e.Key, err)
		}
	}
	return tx.Commit()
}
