// Package repomanager vends repository implementations bound to either a
// *sql.DB or a *sql.Tx, and runs the embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/migrations"
	"github.com/dmitrijs2005/fintrack/internal/repositories/categories"
	"github.com/dmitrijs2005/fintrack/internal/repositories/metadata"
	"github.com/dmitrijs2005/fintrack/internal/repositories/transactions"
)

// SQLRepositoryManager vends SQL repositories for one dialect.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

// Categories returns a categories.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Categories(db dbx.DBTX) categories.Repository {
	return categories.NewSQLRepository(db, m.dialect)
}

// Transactions returns a transactions.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Transactions(db dbx.DBTX) transactions.Repository {
	return transactions.NewSQLRepository(db, m.dialect)
}

// Metadata returns a metadata.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Metadata(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLRepository(db, m.dialect)
}

// migrateUp is a seam for testing migrations.Up.
var migrateUp = migrations.Up

// RunMigrations applies the embedded migrations of the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrateUp(ctx, db, m.dialect)
}

// Dialect reports the SQL flavour the manager was built for.
func (m *SQLRepositoryManager) Dialect() dbx.Dialect {
	return m.dialect
}

// NewSQLRepositoryManager constructs a RepositoryManager for the dialect.
func NewSQLRepositoryManager(dialect dbx.Dialect) *SQLRepositoryManager {
	return &SQLRepositoryManager{dialect: dialect}
}
