// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	sqldriver "database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	driver "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/wanderlist/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// connPragmas apply to every pooled connection. Write transactions take the
// database lock up front so a read-then-write never fails on lock upgrade.
const connPragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"

// Options tunes the connection pool.
type Options struct {
	// MaxOpenConns caps open connections. Zero leaves the database/sql default.
	MaxOpenConns int
}

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithOptions(context.Background(), dbPath, Options{})
}

// NewWithOptions is New with an explicit context and pool options.
func NewWithOptions(ctx context.Context, dbPath string, opts Options) (*SQLiteStore, error) {
	store, err := Open(dbPath, opts)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(ctx, store.db); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Open connects to the database without running migrations.
func Open(dbPath string, opts Options) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func dsn(dbPath string) string {
	if strings.Contains(dbPath, "?") {
		return dbPath + "&" + connPragmas
	}
	return dbPath + "?" + connPragmas
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// count runs a COUNT query built by squirrel.
func (s *SQLiteStore) count(ctx context.Context, query squirrel.SelectBuilder) (int64, error) {
	q, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}

	return n, nil
}

// foldFunc is the SQL name of the Unicode case fold used by name matching.
// SQLite's own LIKE and NOCASE only fold ASCII letters.
const foldFunc = "wl_fold"

func init() {
	driver.MustRegisterDeterministicScalarFunction(foldFunc, 1, fold)
}

func fold(_ *driver.FunctionContext, args []sqldriver.Value) (sqldriver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return nil, fmt.Errorf("%s: unsupported argument type %T", foldFunc, v)
	}
}
