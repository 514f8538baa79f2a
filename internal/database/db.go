// Package database manages the local sqlite database used for the
// submitted-order audit log and the cached order-type registry.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
	path string
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL mode for better concurrency
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)

	return &DB{
		conn: conn,
		path: dbPath,
	}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Migrate creates the schema when it does not exist yet.
func (db *DB) Migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS submitted_orders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_ref TEXT NOT NULL UNIQUE,
			order_type TEXT NOT NULL,
			symbol TEXT NOT NULL,
			side TEXT NOT NULL,
			quantity REAL NOT NULL,
			payload TEXT NOT NULL,
			backend_order_id TEXT,
			submitted_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_submitted_orders_symbol
			ON submitted_orders(symbol)`,
		`CREATE TABLE IF NOT EXISTS order_type_cache (
			type TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			parameters TEXT NOT NULL DEFAULT '[]',
			use_case TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL
		)`,
	}

	for _, stmt := range schema {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
