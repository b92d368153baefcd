/*
Package store is the adapter to the managed backend's database: saved
quotes, broker leads, renewals and the churn report.

Two drivers are supported behind database/sql:

	postgres://...   hosted Postgres through pgx (schema owned by the backend)
	sqlite://path    local development and tests, schema migrated on open

Row ownership is recorded (owner and broker ids) but access rules stay with
the backend. Amounts are stored as decimal strings, timestamps as RFC 3339
UTC and calendar dates as YYYY-MM-DD so both dialects compare them the same way.
*/
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a row does not exist
var ErrNotFound = errors.New("not found")

// ErrInvalidTransition is returned when a lead cannot move to the requested status
var ErrInvalidTransition = errors.New("invalid status transition")

// Dialect selects placeholder syntax and driver
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "pgx"
)

// Store persists quotes and leads
type Store struct {
	db      *sql.DB
	dialect Dialect
	// sqlite allows a single writer
	mu sync.RWMutex
}

// ParseDSN maps a database URL to a driver and its data source name
func ParseDSN(url string) (Dialect, string, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DialectPostgres, url, nil
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite URL has no path")
		}
		return DialectSQLite, path, nil
	case url == ":memory:":
		return DialectSQLite, url, nil
	}
	return "", "", fmt.Errorf("unsupported database URL %q", url)
}

// Open connects to the database named by url. SQLite databases are migrated.
func Open(ctx context.Context, url string) (*Store, error) {
	dialect, dsn, err := ParseDSN(url)
	if err != nil {
		return nil, err
	}
	if dialect == DialectSQLite {
		dsn += "?_foreign_keys=on&_journal_mode=WAL"
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.HasPrefix(dsn, ":memory:") {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	s, err := New(ctx, db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database. SQLite schemas are created when missing.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	s := &Store{db: db, dialect: dialect}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	if dialect == DialectSQLite {
		if err := s.migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS quotes (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		product TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		total TEXT NOT NULL,
		final_capital TEXT NOT NULL DEFAULT '0',
		quote_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quotes_owner_created ON quotes(owner_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id TEXT PRIMARY KEY,
		broker_id TEXT NOT NULL,
		client_name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		product TEXT NOT NULL,
		status TEXT NOT NULL,
		churn_reason TEXT NOT NULL DEFAULT '',
		quote_id TEXT REFERENCES quotes(id),
		renewal_date TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_broker_status ON leads(broker_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_renewal ON leads(renewal_date) WHERE renewal_date IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS lead_events (
		id TEXT PRIMARY KEY,
		lead_id TEXT NOT NULL REFERENCES leads(id),
		from_status TEXT NOT NULL,
		to_status TEXT NOT NULL,
		churn_reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lead_events_lead ON lead_events(lead_id, created_at)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders for the store's dialect
func (s *Store) rebind(query string) string {
	return sqlx.Rebind(sqlx.BindType(string(s.dialect)), query)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
