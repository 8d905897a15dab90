// Package store persists resolved lookups in SQLite so cache entries
// survive process restarts.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// ErrUnavailable signals that the store itself cannot be reached, as
// opposed to a key simply not being present. Callers degrade to
// memory-only operation on this error.
var ErrUnavailable = errors.New("lookup cache store unavailable")

// ErrNotFound signals that no entry exists for the requested hash.
var ErrNotFound = errors.New("lookup cache entry not found")

// CacheEntry is a persisted lookup resolution keyed by the canonical
// payload hash. TmdbID and Confidence are nil for a stored "no confident
// match" outcome.
type CacheEntry struct {
	LookupHash string
	Payload    string
	TmdbID     *int
	Confidence *float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Store wraps the SQLite-backed lookup cache.
type Store struct {
	conn *sql.DB
	path string
}

// New opens (creating if necessary) the lookup cache database and runs
// pending migrations.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)", path)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.PingContext(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(s.conn, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Get returns the cache entry for a payload hash, ErrNotFound when absent,
// or ErrUnavailable when the store cannot be queried.
func (s *Store) Get(ctx context.Context, hash string) (*CacheEntry, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT lookup_hash, payload, tmdb_id, confidence, created_at, updated_at
		FROM lookup_cache
		WHERE lookup_hash = ?`, hash)

	var entry CacheEntry
	var tmdbID sql.NullInt64
	var confidence sql.NullFloat64
	err := row.Scan(&entry.LookupHash, &entry.Payload, &tmdbID, &confidence, &entry.CreatedAt, &entry.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if tmdbID.Valid {
		id := int(tmdbID.Int64)
		entry.TmdbID = &id
	}
	if confidence.Valid {
		c := confidence.Float64
		entry.Confidence = &c
	}
	return &entry, nil
}

// Upsert inserts or overwrites the entry for its (hash, payload) pair.
// A concurrent duplicate insert resolves to an update, never an error.
func (s *Store) Upsert(ctx context.Context, entry CacheEntry) error {
	now := time.Now().UTC()

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO lookup_cache (lookup_hash, payload, tmdb_id, confidence, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(lookup_hash, payload) DO UPDATE SET
			tmdb_id = excluded.tmdb_id,
			confidence = excluded.confidence,
			updated_at = excluded.updated_at`,
		entry.LookupHash, entry.Payload, nullableInt(entry.TmdbID), nullableFloat(entry.Confidence), now, now)
	if err == nil {
		return nil
	}

	// Belt and braces: a constraint race that slipped past the upsert is
	// retried once as a plain update.
	if isConstraintError(err) {
		_, updateErr := s.conn.ExecContext(ctx, `
			UPDATE lookup_cache
			SET tmdb_id = ?, confidence = ?, updated_at = ?
			WHERE lookup_hash = ? AND payload = ?`,
			nullableInt(entry.TmdbID), nullableFloat(entry.Confidence), now, entry.LookupHash, entry.Payload)
		if updateErr == nil {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, updateErr)
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func isConstraintError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "constraint")
}
