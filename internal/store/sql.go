package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// schema is portable between sqlite and postgres: times are unix milliseconds,
// skills are a JSON array in TEXT.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id             TEXT PRIMARY KEY,
		title          TEXT NOT NULL,
		company        TEXT NOT NULL DEFAULT '',
		location       TEXT NOT NULL DEFAULT '',
		description    TEXT NOT NULL DEFAULT '',
		link           TEXT NOT NULL,
		source         TEXT NOT NULL,
		posted_at      BIGINT,
		fetched_at     BIGINT NOT NULL,
		score          DOUBLE PRECISION NOT NULL DEFAULT 0,
		skills         TEXT NOT NULL DEFAULT '[]',
		role_relevance DOUBLE PRECISION NOT NULL DEFAULT 0,
		similarity     DOUBLE PRECISION,
		status         TEXT NOT NULL DEFAULT 'new'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_rank ON jobs (score DESC, posted_at DESC)`,
	`CREATE TABLE IF NOT EXISTS seen_jobs (
		job_id     TEXT PRIMARY KEY,
		title      TEXT NOT NULL DEFAULT '',
		link       TEXT NOT NULL DEFAULT '',
		source     TEXT NOT NULL DEFAULT '',
		first_seen BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS runs (
		id             TEXT PRIMARY KEY,
		started_at     BIGINT NOT NULL,
		finished_at    BIGINT NOT NULL,
		fetched        INTEGER NOT NULL DEFAULT 0,
		persisted      INTEGER NOT NULL DEFAULT 0,
		sources_ok     INTEGER NOT NULL DEFAULT 0,
		sources_failed INTEGER NOT NULL DEFAULT 0
	)`,
}

// SQLStore is the SQL-backed persistence gateway and seen-set. One instance
// serves both roles over the same connection pool.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore wraps an open database. It does not create tables; see Migrate.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Open connects to driver/dsn, verifies the connection and creates the schema.
// For sqlite the dsn is a file path; WAL mode and a busy timeout are enabled so
// readers can query while a run is writing.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	switch driver {
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s db: %w", driver, err)
	}
	if driver == DriverSQLite && strings.Contains(dsn, ":memory:") {
		// every connection would get its own empty in-memory database
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s db: %w", driver, err)
	}

	s := NewSQLStore(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "_pragma=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Migrate creates missing tables and indexes.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
