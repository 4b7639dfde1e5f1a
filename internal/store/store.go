package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/voightp/esofile-storage/internal/blob"
	"github.com/voightp/esofile-storage/internal/querysql"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - no schema (fresh or dropped database)
// 1 - files + variables with descriptor indexes
const currentSchemaVersion = 1

// Supported database/sql driver names.
const (
	DriverCGo  = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPure = "sqlite"  // modernc.org/sqlite
)

// MemoryPath selects an in-memory database.
const MemoryPath = ":memory:"

// DefaultBusyTimeout is how long SQLite waits on a locked database.
const DefaultBusyTimeout = 5 * time.Second

// Config configures a Store.
type Config struct {
	// Path is the database file. Empty or MemoryPath keeps the database in
	// memory for the lifetime of the Store.
	Path string

	// Echo logs every SQL statement at info level.
	Echo bool

	// Driver is DriverCGo (default) or DriverPure.
	Driver string

	// BusyTimeout is applied as PRAGMA busy_timeout. Zero means DefaultBusyTimeout.
	BusyTimeout time.Duration

	// Separator joins samples inside a blob. Empty means blob.DefaultSeparator.
	Separator string

	// Logger receives diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// InMemory reports whether the config selects an in-memory database.
func (c Config) InMemory() bool {
	return c.Path == "" || c.Path == MemoryPath
}

func (c Config) withDefaults() Config {
	if c.Path == "" {
		c.Path = MemoryPath
	}
	if c.Driver == "" {
		c.Driver = DriverCGo
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = DefaultBusyTimeout
	}
	if c.Separator == "" {
		c.Separator = blob.DefaultSeparator
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Validate checks the config for unsupported values.
func (c Config) Validate() error {
	switch c.Driver {
	case "", DriverCGo, DriverPure:
	default:
		return fmt.Errorf("unsupported driver %q: must be %q or %q", c.Driver, DriverCGo, DriverPure)
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("busy timeout must not be negative: %s", c.BusyTimeout)
	}
	return nil
}

// Store is the result store. It owns the only handle to the database.
// A Store is not safe for concurrent use.
type Store struct {
	db       *sql.DB
	cfg      Config
	log      *slog.Logger
	compiler *querysql.SQLCompiler
}

// Open creates or opens the database described by cfg.
// Applies required pragmas and creates the schema automatically.
//
// This function is idempotent - safe to call multiple times on one path.
func Open(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg = cfg.withDefaults()

	// Open database (creates file if doesn't exist)
	db, err := sql.Open(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One connection: SQLite has a single writer, and every connection to
	// :memory: is a separate database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{
		db:       db,
		cfg:      cfg,
		log:      cfg.Logger.With("component", "store"),
		compiler: querysql.NewSQLCompiler(),
	}

	if err := s.applyPragmas(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := s.CreateTables(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s.log.Debug("store opened", "path", cfg.Path, "driver", cfg.Driver)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, MemoryPath for in-memory stores.
func (s *Store) Path() string {
	return s.cfg.Path
}

// applyPragmas sets required SQLite configuration.
func (s *Store) applyPragmas(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", s.cfg.BusyTimeout.Milliseconds()),
	}
	if !s.cfg.InMemory() {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}

	for _, pragma := range pragmas {
		if _, err := s.exec(ctx, s.db, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// exec runs a statement, echoing it when configured.
func (s *Store) exec(ctx context.Context, e execer, query string, args ...any) (sql.Result, error) {
	s.echo(ctx, query, args)
	return e.ExecContext(ctx, query, args...)
}

// query runs a query, echoing it when configured.
func (s *Store) query(ctx context.Context, e execer, query string, args ...any) (*sql.Rows, error) {
	s.echo(ctx, query, args)
	return e.QueryContext(ctx, query, args...)
}

// queryRow runs a single-row query, echoing it when configured.
func (s *Store) queryRow(ctx context.Context, e execer, query string, args ...any) *sql.Row {
	s.echo(ctx, query, args)
	return e.QueryRowContext(ctx, query, args...)
}

func (s *Store) echo(ctx context.Context, query string, args []any) {
	if !s.cfg.Echo {
		return
	}
	s.log.InfoContext(ctx, "sql", "statement", query, "args", args)
}
