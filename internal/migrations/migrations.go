// Package migrations embeds the goose SQL migrations, one directory per
// supported dialect.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/pressly/goose/v3"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// FS returns the migration files for the dialect, rooted at the directory
// that holds them.
func FS(d dbx.Dialect) (fs.FS, error) {
	if d == dbx.DialectPostgres {
		return fs.Sub(files, "postgres")
	}
	return fs.Sub(files, "sqlite")
}

// Up applies every pending migration for the dialect. It is a no-op when the
// schema is current.
func Up(ctx context.Context, db *sql.DB, d dbx.Dialect) error {
	fsys, err := FS(d)
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}

	provider, err := goose.NewProvider(goose.Dialect(d.GooseDialect()), db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
