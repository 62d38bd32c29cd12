package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/sqlitejson/internal/codec"
	"github.com/roach88/sqlitejson/internal/sqlfunc"
)

const (
	// DefaultTable and DefaultColumn name the document table when the
	// config leaves them empty.
	DefaultTable  = "docs"
	DefaultColumn = "body"

	// MemoryPath opens a private in-memory database.
	MemoryPath = ":memory:"

	// minVersionNumber is SQLite 3.38.0, the first release with the JSON
	// functions built in by default.
	minVersionNumber = 3038000
	minVersionText   = "3.38.0"
)

var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config describes the store to open. The zero value opens an in-memory
// store with table "docs", column "body", the table created and the
// extension functions installed.
type Config struct {
	// Path is the database file. "" and ":memory:" both mean in-memory.
	Path string

	// Table and Column name the document table and its body column.
	Table  string
	Column string

	// CreateTable runs CREATE TABLE IF NOT EXISTS at open. Defaults to true.
	CreateTable *bool

	// InstallExtensions installs the json_array_* functions on the
	// connection. Defaults to true.
	InstallExtensions *bool

	// Rand drives json_array_randelem. Defaults to sqlfunc.SystemRand.
	Rand sqlfunc.Rand

	// Logger receives load progress and lifecycle events. Defaults to a
	// discarding logger.
	Logger *slog.Logger

	// IDGenerator produces load ids. Defaults to UUIDv7Generator.
	IDGenerator IDGenerator

	// Codec serializes documents on write.
	Codec codec.Encoder
}

// Bool returns a pointer to b, for the optional Config fields.
func Bool(b bool) *bool {
	return &b
}

func (c Config) withDefaults() Config {
	if c.Path == "" {
		c.Path = MemoryPath
	}
	if c.Table == "" {
		c.Table = DefaultTable
	}
	if c.Column == "" {
		c.Column = DefaultColumn
	}
	if c.CreateTable == nil {
		c.CreateTable = Bool(true)
	}
	if c.InstallExtensions == nil {
		c.InstallExtensions = Bool(true)
	}
	if c.Rand == nil {
		c.Rand = sqlfunc.SystemRand()
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.IDGenerator == nil {
		c.IDGenerator = UUIDv7Generator{}
	}
	return c
}

func (c Config) validate() error {
	if !identifierRE.MatchString(c.Table) {
		return &ConfigurationError{Field: "table", Value: c.Table, Message: "must match " + identifierRE.String()}
	}
	if !identifierRE.MatchString(c.Column) {
		return &ConfigurationError{Field: "column", Value: c.Column, Message: "must match " + identifierRE.String()}
	}
	return nil
}

// Store is a document table in one SQLite database.
type Store struct {
	db     *sql.DB
	conn   *sql.Conn
	cfg    Config
	logger *slog.Logger

	table  string // quoted
	column string // quoted

	closed bool
}

// connector opens connections for a single Store. Going through a
// driver.Connector instead of sql.Register keeps the ConnectHook, and the
// random source it captures, private to that Store.
type connector struct {
	drv  *sqlite3.SQLiteDriver
	path string
}

func (c *connector) Connect(context.Context) (driver.Conn, error) {
	return c.drv.Open(c.path)
}

func (c *connector) Driver() driver.Driver {
	return c.drv
}

// Open opens or creates the store described by cfg.
//
// The database is configured with:
//   - 5-second busy timeout for lock contention
//   - WAL journal mode for file databases
//
// Open fails with a *ConfigurationError for invalid identifiers or a SQLite
// older than 3.38.0. Nothing is left open when Open fails.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	drv := &sqlite3.SQLiteDriver{}
	if *cfg.InstallExtensions {
		rnd := cfg.Rand
		drv.ConnectHook = func(conn *sqlite3.SQLiteConn) error {
			return sqlfunc.Register(conn, rnd)
		}
	}

	db := sql.OpenDB(&connector{drv: drv, path: cfg.Path})
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", cfg.Path, err)
	}

	s := &Store{
		db:     db,
		conn:   conn,
		cfg:    cfg,
		logger: cfg.Logger,
		table:  quoteIdent(cfg.Table),
		column: quoteIdent(cfg.Column),
	}

	if err := s.init(ctx); err != nil {
		s.release()
		return nil, err
	}

	s.logger.Debug("store opened",
		"path", cfg.Path,
		"table", cfg.Table,
		"column", cfg.Column,
		"extensions", *cfg.InstallExtensions,
	)
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	var version string
	if err := s.conn.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return fmt.Errorf("read sqlite version: %w", err)
	}
	_, number, _ := sqlite3.Version()
	if err := checkVersion(version, number); err != nil {
		return err
	}

	if err := s.applyPragmas(ctx); err != nil {
		return fmt.Errorf("apply pragmas: %w", err)
	}

	if *s.cfg.CreateTable {
		if err := s.createTable(ctx); err != nil {
			return err
		}
	}
	return nil
}

func checkVersion(version string, number int) error {
	if number < minVersionNumber {
		return &ConfigurationError{
			Field:   "sqlite_version",
			Value:   version,
			Message: "SQLite " + minVersionText + " or newer is required",
		}
	}
	return nil
}

func (s *Store) applyPragmas(ctx context.Context) error {
	pragmas := []string{"PRAGMA busy_timeout = 5000"}
	if !s.InMemory() {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}

	for _, pragma := range pragmas {
		if _, err := s.conn.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// CreateTable creates the document table if it does not exist.
func (s *Store) CreateTable(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	return s.createTable(ctx)
}

func (s *Store) createTable(ctx context.Context) error {
	ddl := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY AUTOINCREMENT, %s JSON)",
		s.table, s.column,
	)
	if _, err := s.conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", s.cfg.Table, err)
	}
	return nil
}

// Table returns the unquoted table name.
func (s *Store) Table() string { return s.cfg.Table }

// Column returns the unquoted body column name.
func (s *Store) Column() string { return s.cfg.Column }

// Path returns the database path the store was opened with.
func (s *Store) Path() string { return s.cfg.Path }

// InMemory reports whether the database lives only as long as the Store.
func (s *Store) InMemory() bool {
	return s.cfg.Path == MemoryPath
}

// Close releases the connection. Calling Close more than once is a no-op.
func (s *Store) Close() error {
	if s == nil || s.closed {
		return nil
	}
	err := s.release()
	s.logger.Debug("store closed", "path", s.cfg.Path)
	return err
}

func (s *Store) release() error {
	s.closed = true
	connErr := s.conn.Close()
	dbErr := s.db.Close()
	if connErr != nil {
		return fmt.Errorf("close connection: %w", connErr)
	}
	if dbErr != nil {
		return fmt.Errorf("close database: %w", dbErr)
	}
	return nil
}

func quoteIdent(name string) string {
	return "[" + name + "]"
}
