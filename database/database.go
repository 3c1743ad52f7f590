package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"discord-lists/models"

	_ "github.com/jackc/pgx/v5/stdlib" // Registers the "pgx" driver
	_ "github.com/mattn/go-sqlite3"    // Registers the "sqlite3" driver
	"github.com/samber/oops"
)

// Store persists shared lists and channel bindings in a SQL database.
type Store struct {
	db     *sql.DB
	driver string
}

// InitDB opens the configured database, verifies the connection and makes
// sure the schema exists.
func InitDB(ctx context.Context, cfg models.DatabaseConfig) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Driver {
	case "sqlite3":
		db, err = openSQLite(cfg.DSN)
	case "postgres":
		db, err = sql.Open("pgx", cfg.DSN)
	default:
		return nil, oops.In("database").With("driver", cfg.Driver).Errorf("unsupported driver")
	}
	if err != nil {
		return nil, oops.In("database").With("driver", cfg.Driver).Wrapf(err, "open database")
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, oops.In("database").With("driver", cfg.Driver).Wrapf(err, "connect to database")
	}

	s := &Store{db: db, driver: cfg.Driver}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, oops.In("database").With("driver", cfg.Driver).Wrapf(err, "migrate schema")
	}
	return s, nil
}

func openSQLite(dsn string) (*sql.DB, error) {
	if !strings.HasPrefix(dsn, "file:") && !strings.HasPrefix(dsn, ":memory:") {
		// Ensure the directory for the database file exists.
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite3", dsn+sep+"_busy_timeout=5000&_txlock=immediate&_fk=on")
	if err != nil {
		return nil, err
	}
	// A single connection serialises writers; sqlite only allows one anyway.
	db.SetMaxOpenConns(1)
	return db, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	schema := sqliteSchema
	if s.driver == "postgres" {
		schema = postgresSchema
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS shared_lists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		creator TEXT NOT NULL,
		created_when INTEGER NOT NULL,
		updated_when INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_shared_lists_creator ON shared_lists(creator)`,
	`CREATE TABLE IF NOT EXISTS channel_bindings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		channel_name TEXT NOT NULL,
		shared_list INTEGER NOT NULL REFERENCES shared_lists(id),
		enabled BOOLEAN NOT NULL DEFAULT 0,
		UNIQUE (guild_id, channel_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_channel_bindings_enabled ON channel_bindings(enabled, id)`,
	`CREATE INDEX IF NOT EXISTS idx_channel_bindings_shared_list ON channel_bindings(shared_list)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS shared_lists (
		id BIGSERIAL PRIMARY KEY,
		creator TEXT NOT NULL,
		created_when BIGINT NOT NULL,
		updated_when BIGINT NOT NULL,
		title TEXT NOT NULL,
		description TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_shared_lists_creator ON shared_lists(creator)`,
	`CREATE TABLE IF NOT EXISTS channel_bindings (
		id BIGSERIAL PRIMARY KEY,
		guild_id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		channel_name TEXT NOT NULL,
		shared_list BIGINT NOT NULL REFERENCES shared_lists(id),
		enabled BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE (guild_id, channel_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_channel_bindings_enabled ON channel_bindings(enabled, id)`,
	`CREATE INDEX IF NOT EXISTS idx_channel_bindings_shared_list ON channel_bindings(shared_list)`,
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
