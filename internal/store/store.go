// Package store persists built heightfield grids in a SQLite database so
// repeated runs can skip decoding and smoothing.
package store

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Faultbox/midgard-heightfield/internal/logger"
	"github.com/Faultbox/midgard-heightfield/pkg/formats"
	"github.com/Faultbox/midgard-heightfield/pkg/heightfield"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrCorruptEntry is returned when a stored blob cannot be decoded.
var ErrCorruptEntry = errors.New("corrupt cache entry")

// Entry describes one stored grid without its samples.
type Entry struct {
	ID         uuid.UUID
	Key        string
	Resolution int
	Size       int // compressed bytes
	CreatedAt  time.Time
}

// Store is a grid cache backed by SQLite.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens (or creates) the database at path and applies pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, log: logger.Named("store")}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}

	s.log.Debug("cache database ready", zap.String("path", path))
	return s, nil
}

func (s *Store) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{s.log.Sugar()}
	// m is not closed: closing it would close the shared *sql.DB.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Put stores grid under key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key string, grid *heightfield.Grid) (uuid.UUID, error) {
	blob, err := compress(formats.EncodeHFGFormat(grid, formats.HFGFloat64))
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO grids (id, cache_key, resolution, data, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			id = excluded.id,
			resolution = excluded.resolution,
			data = excluded.data,
			created_at = excluded.created_at
	`, id.String(), key, grid.Resolution(), blob, time.Now().UnixNano())
	if err != nil {
		return uuid.Nil, fmt.Errorf("storing grid %s: %w", key, err)
	}

	s.log.Debug("stored grid", zap.String("key", key), zap.Int("bytes", len(blob)))
	return id, nil
}

// Get returns the grid stored under key. The boolean is false when no entry exists.
func (s *Store) Get(ctx context.Context, key string) (*heightfield.Grid, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM grids WHERE cache_key = ?`, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading grid %s: %w", key, err)
	}

	raw, err := decompress(blob)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", ErrCorruptEntry, key, err)
	}
	grid, err := formats.ParseHFG(raw)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", ErrCorruptEntry, key, err)
	}
	return grid, true, nil
}

// List returns all entries, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cache_key, resolution, length(data), created_at
		FROM grids
		ORDER BY created_at DESC, cache_key
	`)
	if err != nil {
		return nil, fmt.Errorf("listing grids: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			id      string
			created int64
		)
		if err := rows.Scan(&id, &e.Key, &e.Resolution, &e.Size, &created); err != nil {
			return nil, fmt.Errorf("scanning grid row: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: bad id %q", ErrCorruptEntry, id)
		}
		e.CreatedAt = time.Unix(0, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes the entry under key and reports whether one existed.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM grids WHERE cache_key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("deleting grid %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("compressing grid: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compressing grid: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(blob []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// migrateLogger routes migration output through zap.
type migrateLogger struct {
	sugar *zap.SugaredLogger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

func (l migrateLogger) Verbose() bool {
	return false
}
