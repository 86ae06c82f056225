package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/repositories/categories"
	"github.com/dmitrijs2005/fintrack/internal/repositories/metadata"
	"github.com/dmitrijs2005/fintrack/internal/repositories/transactions"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Categories(db dbx.DBTX) categories.Repository
	Transactions(db dbx.DBTX) transactions.Repository
	Metadata(db dbx.DBTX) metadata.Repository
}
