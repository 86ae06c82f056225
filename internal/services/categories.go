package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/models"
	"github.com/dmitrijs2005/fintrack/internal/repositories/categories"
	"github.com/dmitrijs2005/fintrack/internal/repositories/repomanager"
)

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#607D8B"

type CategoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, name, color, icon string) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
}

type categoryService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewCategoryService(db *sql.DB, repos repomanager.RepositoryManager) CategoryService {
	return &categoryService{db: db, repos: repos}
}

func (s *categoryService) repo() categories.Repository {
	return s.repos.Categories(s.db)
}

func (s *categoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.repo().List(ctx)
}

func (s *categoryService) Create(ctx context.Context, name, color, icon string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name is empty: %w", common.ErrValidation)
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = DefaultCategoryColor
	}

	c := &models.Category{Name: name, Color: color, Icon: strings.TrimSpace(icon)}
	if err := s.repo().Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete detaches the category from its transactions and removes it in one
// transaction, so no reader sees a reference to a deleted category.
func (s *categoryService) Delete(ctx context.Context, id int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Categories(tx).Delete(ctx, id)
	})
}
