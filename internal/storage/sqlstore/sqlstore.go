// Package sqlstore keeps registry values in the SQLite table created by the
// registry_values migration. Each row holds one parameter's type name and its
// encoded bytes; a save runs as a single transaction.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-registry/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-registry/internal/registry"
	"github.com/nerrad567/gray-logic-registry/internal/storage"
	"github.com/nerrad567/gray-logic-registry/migrations"
)

var (
	// ErrSaveInProgress is returned by SaveStart when a save is already open.
	ErrSaveInProgress = errors.New("sqlstore: save already in progress")

	// ErrInvalidRow is returned for rows that do not decode to a value.
	ErrInvalidRow = errors.New("sqlstore: invalid row")
)

const upsertSQL = `
	INSERT INTO registry_values (path, type, value, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(path) DO UPDATE SET
		type = excluded.type,
		value = excluded.value,
		updated_at = excluded.updated_at`

// querier is the subset of *sql.DB and *sql.Tx used by the store.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a SQLite-backed storage facility.
type Store struct {
	db *database.DB

	mu sync.Mutex
	tx *sql.Tx // open between SaveStart and SaveEnd

	now func() time.Time
}

// New applies pending migrations and returns a store over db.
func New(ctx context.Context, db *database.DB) (*Store, error) {
	if err := db.Migrate(ctx, migrations.FS()); err != nil {
		return nil, fmt.Errorf("migrating registry store: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// conn returns the open save transaction, or the database. The database
// allows a single connection, so statements issued during a save must go
// through the transaction.
func (s *Store) conn() querier {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

type row struct {
	path  registry.Path
	value registry.Value
}

// Load calls fn for every row under p in path order. Undecodable rows are
// skipped and the first such error is returned.
func (s *Store) Load(ctx context.Context, p registry.Path, fn registry.LoadFunc) error {
	query := "SELECT path, type, value FROM registry_values"
	var args []any
	if !p.IsRoot() {
		query += " WHERE path = ? OR substr(path, 1, ?) = ?"
		prefix := p.String() + "/"
		args = append(args, p.String(), len(prefix), prefix)
	}

	rows, err := s.conn().QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("querying values: %w", err)
	}

	var (
		loaded   []row
		firstErr error
	)
	for rows.Next() {
		var key, typeName string
		var buf []byte
		if err := rows.Scan(&key, &typeName, &buf); err != nil {
			rows.Close()
			return fmt.Errorf("scanning value row: %w", err)
		}
		r, err := decodeRow(key, typeName, buf)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		loaded = append(loaded, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterating values: %w", err)
	}
	rows.Close()

	paths := make([]registry.Path, len(loaded))
	byPath := make(map[string]registry.Value, len(loaded))
	for i, r := range loaded {
		paths[i] = r.path
		byPath[r.path.String()] = r.value
	}
	storage.SortPaths(paths)

	for _, ip := range paths {
		_ = fn(ip, byPath[ip.String()])
	}
	return firstErr
}

func decodeRow(key, typeName string, buf []byte) (row, error) {
	p, err := registry.ParsePath(key)
	if err != nil {
		return row{}, fmt.Errorf("%w: %w", ErrInvalidRow, err)
	}
	t, err := storage.ParseType(typeName)
	if err != nil {
		return row{}, fmt.Errorf("%w: %s: %w", ErrInvalidRow, key, err)
	}
	return row{path: p, value: registry.Value{Type: t, Buf: buf}}, nil
}

// SaveStart opens the transaction that the following saves write into.
func (s *Store) SaveStart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx != nil {
		return ErrSaveInProgress
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting save transaction: %w", err)
	}
	s.tx = tx
	return nil
}

// Save upserts v at p.
func (s *Store) Save(ctx context.Context, p registry.Path, v registry.Value) error {
	buf := v.Buf
	if buf == nil {
		// A nil slice would bind as NULL.
		buf = []byte{}
	}
	_, err := s.conn().ExecContext(ctx, upsertSQL,
		p.String(), v.Type.String(), buf, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving %s: %w", p, err)
	}
	return nil
}

// SaveEnd commits the save transaction.
func (s *Store) SaveEnd(context.Context) error {
	s.mu.Lock()
	tx := s.tx
	s.tx = nil
	s.mu.Unlock()

	if tx == nil {
		return nil
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save: %w", err)
	}
	return nil
}

// Lookup returns the value stored at p.
func (s *Store) Lookup(ctx context.Context, p registry.Path) (registry.Value, bool, error) {
	var typeName string
	var buf []byte
	err := s.conn().QueryRowContext(ctx,
		"SELECT type, value FROM registry_values WHERE path = ?", p.String()).Scan(&typeName, &buf)
	if errors.Is(err, sql.ErrNoRows) {
		return registry.Value{}, false, nil
	}
	if err != nil {
		return registry.Value{}, false, fmt.Errorf("looking up %s: %w", p, err)
	}
	r, err := decodeRow(p.String(), typeName, buf)
	if err != nil {
		return registry.Value{}, false, err
	}
	return r.value, true, nil
}

// Count returns the number of stored rows whose path starts with prefix.
func (s *Store) Count(ctx context.Context, prefix string) (int, error) {
	prefix = strings.Trim(prefix, "/")
	var n int
	var err error
	if prefix == "" {
		err = s.conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM registry_values").Scan(&n)
	} else {
		err = s.conn().QueryRowContext(ctx,
			"SELECT COUNT(*) FROM registry_values WHERE path = ? OR substr(path, 1, ?) = ?",
			prefix, len(prefix)+1, prefix+"/").Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("counting values: %w", err)
	}
	return n, nil
}
