package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/models"
	"github.com/dmitrijs2005/fintrack/internal/repositories/categories"
	"github.com/dmitrijs2005/fintrack/internal/repositories/transactions"
)

type TransactionService interface {
	List(ctx context.Context, limit, offset int) ([]models.Transaction, error)
	Get(ctx context.Context, id int64) (*models.Transaction, error)
	Search(ctx context.Context, query string, limit int) ([]models.Transaction, error)

	// ByCategory lists transactions of one category; nil selects the
	// uncategorized ones.
	ByCategory(ctx context.Context, categoryID *int64, limit int) ([]models.Transaction, error)

	// SetCategory assigns a category, or clears it when categoryID is nil.
	SetCategory(ctx context.Context, id int64, categoryID *int64) error

	ClearAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type transactionService struct {
	txs  transactions.Repository
	cats categories.Repository
}

func NewTransactionService(txs transactions.Repository, cats categories.Repository) TransactionService {
	return &transactionService{txs: txs, cats: cats}
}

func checkLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d: %w", limit, common.ErrValidation)
	}
	return nil
}

func (s *transactionService) List(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, fmt.Errorf("offset must not be negative: %w", common.ErrValidation)
	}
	return s.txs.List(ctx, transactions.Filter{Limit: limit, Offset: offset})
}

func (s *transactionService) Get(ctx context.Context, id int64) (*models.Transaction, error) {
	return s.txs.GetByID(ctx, id)
}

func (s *transactionService) Search(ctx context.Context, query string, limit int) ([]models.Transaction, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search: %w", common.ErrValidation)
	}
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	return s.txs.List(ctx, transactions.Filter{Limit: limit, Search: query})
}

func (s *transactionService) ByCategory(ctx context.Context, categoryID *int64, limit int) ([]models.Transaction, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	f := transactions.Filter{Limit: limit, CategoryID: categoryID, Uncategorized: categoryID == nil}
	return s.txs.List(ctx, f)
}

func (s *transactionService) SetCategory(ctx context.Context, id int64, categoryID *int64) error {
	if categoryID != nil {
		if _, err := s.cats.GetByID(ctx, *categoryID); err != nil {
			return fmt.Errorf("category %d: %w", *categoryID, err)
		}
	}
	if err := s.txs.SetCategory(ctx, id, categoryID); err != nil {
		return fmt.Errorf("transaction %d: %w", id, err)
	}
	return nil
}

func (s *transactionService) ClearAll(ctx context.Context) (int64, error) {
	return s.txs.ClearAll(ctx)
}

func (s *transactionService) Count(ctx context.Context) (int64, error) {
	return s.txs.Count(ctx)
}
