package migrations

import (
	"context"
	"database/sql"
	"io/fs"
	"testing"

	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func indexExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestUp_CreatesSchema(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	require.NoError(t, Up(context.Background(), db, dbx.DialectSQLite))

	for _, table := range []string{"categories", "transactions", "metadata", "goose_db_version"} {
		assert.True(t, tableExists(t, db, table), table)
	}
	for _, idx := range []string{"idx_transactions_date", "idx_transactions_category", "idx_transactions_account"} {
		assert.True(t, indexExists(t, db, idx), idx)
	}
}

func TestUp_AddsDescriptionFold(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	require.NoError(t, Up(context.Background(), db, dbx.DialectSQLite))

	var n int
	err = db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('transactions') WHERE name = 'description_fold'`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUp_IsIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Up(ctx, db, dbx.DialectSQLite))
	require.NoError(t, Up(ctx, db, dbx.DialectSQLite))
}

func TestFS_BothDialectsHaveMigrations(t *testing.T) {
	for _, d := range []dbx.Dialect{dbx.DialectSQLite, dbx.DialectPostgres} {
		fsys, err := FS(d)
		require.NoError(t, err)

		matches, err := fs.Glob(fsys, "*.sql")
		require.NoError(t, err)
		assert.NotEmpty(t, matches, string(d))
	}
}
