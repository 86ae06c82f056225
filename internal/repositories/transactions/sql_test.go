package transactions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/migrations"
	"github.com/dmitrijs2005/fintrack/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(context.Background(), db, dbx.DialectSQLite))
	return db
}

func day(s string) time.Time {
	d, err := time.Parse(common.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTx(desc, date, amount string, dir models.Direction) models.Transaction {
	return models.Transaction{
		AccountID:       "acc-1",
		Type:            dir,
		TransactionType: "CardPurchase",
		Status:          "POSTED",
		Description:     desc,
		TransactionDate: day(date),
		Amount:          dec(amount),
	}
}

func createCategory(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(`INSERT INTO categories (name, color) VALUES (?, '#fff') RETURNING id`, name).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestUpsert_SameKeyCollapsesToOneRow(t *testing.T) {
	r := NewSQLRepository(setupDB(t), dbx.DialectSQLite)
	ctx := context.Background()

	first := newTx("Coffee", "2024-03-01", "3.50", models.DirectionDebit)
	first.Status = "PENDING"
	require.NoError(t, r.Upsert(ctx, &first))

	second := newTx("Coffee", "2024-03-01", "3.50", models.DirectionDebit)
	second.Status = "POSTED"
	second.RunningBalance = dec("96.50")
	require.NoError(t, r.Upsert(ctx, &second))

	assert.Equal(t, first.ID, second.ID, "same key must resolve to the same row")

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := r.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "POSTED", got.Status, "later upsert wins")
	assert.True(t, got.RunningBalance.Equal(dec("96.5")))
	assert.True(t, got.Amount.Equal(dec("3.5")))
	assert.Equal(t, day("2024-03-01"), got.TransactionDate)
}

func TestUpsert_PreservesExistingCategory(t *testing.T) {
	db := setupDB(t)
	r := NewSQLRepository(db, dbx.DialectSQLite)
	ctx := context.Background()
	cat := createCategory(t, db, "Dining")

	tx := newTx("Lunch", "2024-03-02", "12.00", models.DirectionDebit)
	require.NoError(t, r.Upsert(ctx, &tx))
	require.NoError(t, r.SetCategory(ctx, tx.ID, &cat))

	again := newTx("Lunch", "2024-03-02", "12.00", models.DirectionDebit)
	require.NoError(t, r.Upsert(ctx, &again))

	got, err := r.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, cat, *got.CategoryID)
	assert.Equal(t, "Dining", got.CategoryName)
	assert.Equal(t, "#fff", got.CategoryColor)
}

func TestUpsert_DifferentKeyFieldsAreDistinct(t *testing.T) {
	r := NewSQLRepository(setupDB(t), dbx.DialectSQLite)
	ctx := context.Background()

	base := newTx("Coffee", "2024-03-01", "3.50", models.DirectionDebit)
	otherAccount := base
	otherAccount.AccountID = "acc-2"
	otherDate := newTx("Coffee", "2024-03-02", "3.50", models.DirectionDebit)
	otherAmount := newTx("Coffee", "2024-03-01", "3.51", models.DirectionDebit)
	otherDesc := newTx("Tea", "2024-03-01", "3.50", models.DirectionDebit)

	res := r.BatchUpsert(ctx, []models.Transaction{base, otherAccount, otherDate, otherAmount, otherDesc})
	assert.Equal(t, 5, res.Applied)
	assert.Empty(t, res.Failed)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

func TestBatchUpsert_FailingRowDoesNotStopOthers(t *testing.T) {
	r := NewSQLRepository(setupDB(t), dbx.DialectSQLite)
	ctx := context.Background()

	bad := newTx("Broken", "2024-03-01", "-1", models.DirectionDebit)
	batch := []models.Transaction{
		newTx("A", "2024-03-01", "1", models.DirectionDebit),
		bad,
		newTx("B", "2024-03-02", "2", models.DirectionCredit),
	}

	res := r.BatchUpsert(ctx, batch)
	assert.Equal(t, 2, res.Applied)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, 1, res.Failed[0].Index)
	assert.Error(t, res.Failed[0].Err)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.NotZero(t, batch[0].ID)
	assert.NotZero(t, batch[2].ID)
}

func TestSetCategory_ClearAndNotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLRepository(db, dbx.DialectSQLite)
	ctx := context.Background()
	cat := createCategory(t, db, "Bills")

	tx := newTx("Power", "2024-03-03", "40", models.DirectionDebit)
	require.NoError(t, r.Upsert(ctx, &tx))
	require.NoError(t, r.SetCategory(ctx, tx.ID, &cat))
	require.NoError(t, r.SetCategory(ctx, tx.ID, nil))

	got, err := r.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
	assert.Empty(t, got.CategoryName)

	require.ErrorIs(t, r.SetCategory(ctx, 9999, &cat), common.ErrNotFound)
}

func TestGetByID_NotFound(t *testing.T) {
	r := NewSQLRepository(setupDB(t), dbx.DialectSQLite)

	_, err := r.GetByID(context.Background(), 1)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func seed(t *testing.T, r *SQLRepository, txs ...models.Transaction) []models.Transaction {
	t.Helper()
	res := r.BatchUpsert(context.Background(), txs)
	require.Empty(t, res.Failed)
	return txs
}

func TestList_OrderingPagingAndFilters(t *testing.T) {
	db := setupDB(t)
	r := NewSQLRepository(db, dbx.DialectSQLite)
	ctx := context.Background()
	cat := createCategory(t, db, "Groceries")

	txs := seed(t, r,
		newTx("Supermarket", "2024-03-01", "20", models.DirectionDebit),
		newTx("SALARY ACME", "2024-03-05", "1000", models.DirectionCredit),
		newTx("super 50%_off", "2024-03-10", "5", models.DirectionDebit),
		newTx("Bus", "2024-02-20", "2", models.DirectionDebit),
	)
	require.NoError(t, r.SetCategory(ctx, txs[0].ID, &cat))

	all, err := r.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "super 50%_off", all[0].Description)
	assert.Equal(t, "Bus", all[3].Description)

	page, err := r.List(ctx, Filter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "SALARY ACME", page[0].Description)

	found, err := r.List(ctx, Filter{Search: "SUPER"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	literal, err := r.List(ctx, Filter{Search: "50%_"})
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "super 50%_off", literal[0].Description)

	byCat, err := r.List(ctx, Filter{CategoryID: &cat})
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, "Supermarket", byCat[0].Description)

	uncategorized, err := r.List(ctx, Filter{Uncategorized: true})
	require.NoError(t, err)
	assert.Len(t, uncategorized, 3)

	credits, err := r.List(ctx, Filter{Direction: models.DirectionCredit})
	require.NoError(t, err)
	require.Len(t, credits, 1)

	march, err := r.List(ctx, Filter{Range: models.DateRange{From: day("2024-03-01"), To: day("2024-03-05")}})
	require.NoError(t, err)
	assert.Len(t, march, 2)
}

func TestClearAll(t *testing.T) {
	r := NewSQLRepository(setupDB(t), dbx.DialectSQLite)
	ctx := context.Background()
	seed(t, r,
		newTx("A", "2024-03-01", "1", models.DirectionDebit),
		newTx("B", "2024-03-02", "1", models.DirectionDebit),
	)

	n, err := r.ClearAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	count, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestList_Postgres_RebindsPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`t.description_fold LIKE \$1 ESCAPE '\\' AND t.type = \$2 ORDER BY .* LIMIT \$3 OFFSET \$4`).
		WithArgs("%coffee%", "DEBIT", 10, 0).
		WillReturnRows(sqlmock.NewRows(nil))

	_, err = NewSQLRepository(db, dbx.DialectPostgres).List(context.Background(), Filter{
		Limit:     10,
		Search:    "Coffee",
		Direction: models.DirectionDebit,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_WrapsDriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("boom")
	mock.ExpectQuery(`INSERT INTO transactions`).WillReturnError(boom)

	tx := newTx("A", "2024-03-01", "1", models.DirectionDebit)
	err = NewSQLRepository(db, dbx.DialectSQLite).Upsert(context.Background(), &tx)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to upsert transaction")
}

func TestList_SearchFoldsNonASCII(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLRepository(db, dbx.DialectSQLite)
	ctx := context.Background()

	tx := newTx("CAFÉ NOIR", "2024-03-01", "4.50", models.DirectionDebit)
	require.NoError(t, repo.Upsert(ctx, &tx))
	other := newTx("Bakery", "2024-03-01", "2", models.DirectionDebit)
	require.NoError(t, repo.Upsert(ctx, &other))

	for _, term := range []string{"CAFÉ", "café", "Café Noir", "noir"} {
		got, err := repo.List(ctx, Filter{Search: term})
		require.NoError(t, err, term)
		require.Len(t, got, 1, term)
		assert.Equal(t, "CAFÉ NOIR", got[0].Description)
	}
}

func TestUpsert_RejectsAmountsThatAreNotWholeCents(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLRepository(db, dbx.DialectSQLite)
	ctx := context.Background()

	for _, amount := range []string{"10.001", "10.004", "100000000000000000000"} {
		tx := newTx("COFFEE", "2024-03-01", amount, models.DirectionDebit)
		err := repo.Upsert(ctx, &tx)
		require.ErrorIs(t, err, common.ErrValidation, amount)
	}

	overdrawn := newTx("COFFEE", "2024-03-01", "1", models.DirectionDebit)
	overdrawn.RunningBalance = dec("-0.001")
	require.ErrorIs(t, repo.Upsert(ctx, &overdrawn), common.ErrValidation)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing is stored for refused amounts")
}

func TestUpsert_LargestStorableAmountRoundTrips(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLRepository(db, dbx.DialectSQLite)
	ctx := context.Background()

	tx := newTx("Windfall", "2024-03-01", "92233720368547758.07", models.DirectionCredit)
	require.NoError(t, repo.Upsert(ctx, &tx))

	got, err := repo.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(dec("92233720368547758.07")), got.Amount.String())
}
