// Package transactions is the system of record for synchronized bank
// transactions and the aggregate queries computed over them.
package transactions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/models"
)

// Filter narrows List. Zero values disable the corresponding condition;
// Limit <= 0 returns every matching row.
type Filter struct {
	Limit         int
	Offset        int
	CategoryID    *int64
	Uncategorized bool
	Search        string
	Direction     models.Direction
	Range         models.DateRange
}

// RowError records a row BatchUpsert could not apply.
type RowError struct {
	Index int
	Err   error
}

// BatchResult summarizes a BatchUpsert call.
type BatchResult struct {
	Applied int
	Failed  []RowError
}

// Repository describes the transaction table.
type Repository interface {
	// Upsert inserts t or overwrites the row sharing its de-duplication key,
	// keeping that row's category. t.ID is set to the stored row's id.
	Upsert(ctx context.Context, t *models.Transaction) error

	// BatchUpsert applies every row independently. A failing row does not
	// undo or stop the others.
	BatchUpsert(ctx context.Context, txs []models.Transaction) BatchResult

	// SetCategory replaces the category reference; nil clears it.
	SetCategory(ctx context.Context, id int64, categoryID *int64) error

	GetByID(ctx context.Context, id int64) (*models.Transaction, error)
	List(ctx context.Context, f Filter) ([]models.Transaction, error)
	Count(ctx context.Context) (int64, error)

	// ClearAll deletes every transaction and reports how many were removed.
	ClearAll(ctx context.Context) (int64, error)

	CategoryTotals(ctx context.Context, r models.DateRange) ([]models.CategoryTotal, error)
	IncomeAndSpending(ctx context.Context, r models.DateRange) (models.IncomeAndSpending, error)
	SpendingByCategory(ctx context.Context, r models.DateRange) ([]models.CategorySpend, error)
	MonthlySpending(ctx context.Context, since time.Time) ([]models.MonthlyTotal, error)
}
