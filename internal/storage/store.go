// Package storage opens the relational store and owns its one-time
// initialization: schema migrations followed by the default categories.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/filex"
	"github.com/dmitrijs2005/fintrack/internal/models"
	"github.com/dmitrijs2005/fintrack/internal/repositories/categories"
	"github.com/dmitrijs2005/fintrack/internal/repositories/metadata"
	"github.com/dmitrijs2005/fintrack/internal/repositories/repomanager"
	"github.com/dmitrijs2005/fintrack/internal/repositories/transactions"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// Store bundles the connection pool with the repositories built on it.
type Store struct {
	DB      *sql.DB
	Dialect dbx.Dialect
	Repos   repomanager.RepositoryManager

	mu          sync.Mutex
	initialized bool
}

// sqlOpen is a seam for testing sql.Open.
var sqlOpen = sql.Open

// Open connects to the database behind driver and dsn. It does not touch
// the schema; call Init for that.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	dialect, err := dbx.ParseDialect(driver)
	if err != nil {
		return nil, err
	}

	if dialect == dbx.DialectSQLite {
		dsn, err = prepareSQLite(dsn)
		if err != nil {
			return nil, err
		}
	}

	db, err := sqlOpen(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if dialect == dbx.DialectSQLite {
		// A single connection keeps :memory: databases coherent and
		// serializes writers on file databases.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	return New(db, dialect), nil
}

// New wraps an already opened pool.
func New(db *sql.DB, dialect dbx.Dialect) *Store {
	return &Store{
		DB:      db,
		Dialect: dialect,
		Repos:   repomanager.NewSQLRepositoryManager(dialect),
	}
}

func isMemoryDSN(dsn string) bool {
	return dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// prepareSQLite makes sure a file database exists with owner-only
// permissions and turns on foreign keys and a busy timeout unless the DSN sets pragmas.
func prepareSQLite(dsn string) (string, error) {
	if isMemoryDSN(dsn) {
		if dsn == "" {
			return ":memory:", nil
		}
		return dsn, nil
	}

	path, query, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if err := filex.EnsureParentDir(path); err != nil {
		return "", fmt.Errorf("db directory: %w", err)
	}
	if err := filex.EnsurePrivateFile(path); err != nil {
		return "", fmt.Errorf("db file: %w", err)
	}

	if strings.Contains(query, "_pragma") {
		return dsn, nil
	}
	if query == "" {
		return dsn + "?" + sqlitePragmas, nil
	}
	return dsn + "&" + sqlitePragmas, nil
}

// Init creates the schema and inserts the default categories. Only the
// first successful call does any work.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	if err := s.Repos.RunMigrations(ctx, s.DB); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	if _, err := s.Repos.Categories(s.DB).EnsureDefaults(ctx, models.DefaultCategories); err != nil {
		return fmt.Errorf("default categories: %w", err)
	}

	s.initialized = true
	return nil
}

// Initialized reports whether Init has completed.
func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *Store) Categories() categories.Repository {
	return s.Repos.Categories(s.DB)
}

func (s *Store) Transactions() transactions.Repository {
	return s.Repos.Transactions(s.DB)
}

func (s *Store) Metadata() metadata.Repository {
	return s.Repos.Metadata(s.DB)
}

// WithTx runs fn with repositories bound to one transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.WithTx(ctx, s.DB, nil, fn)
}

func (s *Store) Close() error {
	return s.DB.Close()
}
