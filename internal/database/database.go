// Package database is the sqlite persistence layer for watched accounts and
// fetched messages.
package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// dsnOptions enables WAL, foreign keys and a busy timeout for concurrent
// access from the bot and the IMAP callbacks.
const dsnOptions = "?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"

// DB wraps sqlx.DB with the application's queries.
type DB struct {
	*sqlx.DB
}

// New opens (creating if needed) the sqlite database at path.
func New(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", path+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{db}, nil
}

// Migrate applies the schema. All statements are idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
