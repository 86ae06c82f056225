// Package categories persists user-defined transaction categories.
package categories

import (
	"context"

	"github.com/dmitrijs2005/fintrack/internal/models"
)

// Repository describes the category table.
type Repository interface {
	// Create inserts a category and fills its ID and CreatedAt. A duplicate
	// name yields common.ErrAlreadyExists.
	Create(ctx context.Context, c *models.Category) error

	// EnsureDefaults inserts every category whose name is not taken yet and
	// reports how many rows were added.
	EnsureDefaults(ctx context.Context, defaults []models.Category) (int, error)

	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)

	// Delete clears the reference on every transaction pointing at the
	// category, then removes it. Callers run it inside a transaction.
	Delete(ctx context.Context, id int64) error
}
