package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matthieukhl/storefront/internal/config"
	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
	path string
}

// NewConnection opens (creating if needed) the session database described
// by cfg and applies the schema.
func NewConnection(cfg *config.SessionConfig) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single writer keeps sqlite from returning SQLITE_BUSY inside the process
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	wrapped := &DB{DB: db, path: cfg.Path}
	if err := wrapped.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return wrapped, nil
}

// Wrap adapts an already opened handle, used with sqlmock in tests.
func Wrap(db *sql.DB) *DB {
	return &DB{DB: db}
}

// Path returns the file backing the database, empty for wrapped handles.
func (db *DB) Path() string {
	return db.path
}

// Migrate applies the key/value schema.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, KVSchemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
