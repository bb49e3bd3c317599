package roulette

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

var (
	dbOnce sync.Once
	dbConn *sql.DB
	dbErr  error
)

// GetDB returns the shared connection for DATABASE_URL, creating the schema on
// first use. It returns (nil, nil) when DATABASE_URL is unset so callers can fall
// back to file storage.
func GetDB() (*sql.DB, error) {
	dbOnce.Do(func() {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return
		}
		dbConn, dbErr = OpenDB(dsn)
		if dbErr != nil {
			return
		}
		dbErr = Migrate(dbConn)
	})
	if dbErr != nil {
		return nil, dbErr
	}
	return dbConn, nil
}

// OpenDB opens a Postgres DSN through pgx, or a SQLite file for "sqlite:<path>".
func OpenDB(dsn string) (*sql.DB, error) {
	if path, ok := strings.CutPrefix(dsn, "sqlite:"); ok {
		return openSQLite(path)
	}
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	// Avoid "prepared statement already exists" behind PgBouncer: use simple protocol.
	config.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	db := stdlib.OpenDB(*config)
	db.SetConnMaxIdleTime(4 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func openSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty sqlite path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// single writer; WAL keeps readers unblocked
	db.SetMaxOpenConns(1)
	for _, p := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA synchronous=NORMAL;", "PRAGMA busy_timeout=5000;"} {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite %s: %w", p, err)
		}
	}
	return db, nil
}

// Migrate creates the tables. Safe to call repeatedly.
func Migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS wheel_items (
		id TEXT PRIMARY KEY,
		items TEXT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS spin_results (
		spin_id TEXT PRIMARY KEY,
		selected_index INTEGER NOT NULL,
		item_name TEXT NOT NULL,
		item_weight INTEGER NOT NULL,
		total_weight INTEGER NOT NULL,
		target_angle DOUBLE PRECISION NOT NULL,
		rotation DOUBLE PRECISION NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		started_at BIGINT NOT NULL,
		revealed_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_spin_results_revealed_at ON spin_results(revealed_at)`,
	`CREATE TABLE IF NOT EXISTS wheel_presets (
		name TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at BIGINT NOT NULL
	)`,
}
