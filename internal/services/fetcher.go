package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/models"
	"github.com/sethvargo/go-retry"
)

// PageRetries is how many times a page request failing with
// common.ErrUnavailable is repeated.
const PageRetries = 3

// BankAPI is the part of the bank client the fetcher needs.
type BankAPI interface {
	Accounts(ctx context.Context) ([]models.Account, error)
	TransactionsPage(ctx context.Context, accountID string, window models.DateRange, page int) (models.TransactionPage, error)
}

// Fetcher retrieves raw transactions page by page.
type Fetcher struct {
	api     BankAPI
	logger  logging.Logger
	backoff func() retry.Backoff
}

func NewFetcher(api BankAPI, logger logging.Logger) *Fetcher {
	return &Fetcher{api: api, logger: logger, backoff: defaultBackoff}
}

func defaultBackoff() retry.Backoff {
	b := retry.NewExponential(500 * time.Millisecond)
	b = retry.WithJitterPercent(20, b)
	return retry.WithMaxRetries(PageRetries, b)
}

// page requests one page, retrying while the bank reports itself unavailable.
func (f *Fetcher) page(ctx context.Context, accountID string, window models.DateRange, n int) (models.TransactionPage, error) {
	var p models.TransactionPage
	err := retry.Do(ctx, f.backoff(), func(ctx context.Context) error {
		var err error
		p, err = f.api.TransactionsPage(ctx, accountID, window, n)
		if errors.Is(err, common.ErrUnavailable) {
			f.logger.Debug(ctx, "page request failed, retrying", "account_id", accountID, "page", n, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	return p, err
}

// Fetch returns every transaction of one account in the window, in page
// order. The page count starts at one and is updated from each response
// that reports it. A page that keeps failing aborts the account.
func (f *Fetcher) Fetch(ctx context.Context, accountID string, window models.DateRange) ([]models.RawTransaction, error) {
	var out []models.RawTransaction

	totalPages := 1
	for page := 1; page <= totalPages; page++ {
		p, err := f.page(ctx, accountID, window, page)
		if err != nil {
			return nil, fmt.Errorf("account %s page %d: %w", accountID, page, err)
		}
		out = append(out, p.Transactions...)
		if p.TotalPages > 0 {
			totalPages = p.TotalPages
		}
	}

	f.logger.Debug(ctx, "fetched account transactions", "account_id", accountID, "pages", totalPages, "count", len(out))
	return out, nil
}

// FetchAll fetches every account in turn. An account that fails is logged
// and skipped, so the result may be partial; only a failure to list the
// accounts is returned.
func (f *Fetcher) FetchAll(ctx context.Context, window models.DateRange) ([]models.RawTransaction, error) {
	accounts, err := f.api.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	var out []models.RawTransaction
	for _, acc := range accounts {
		txs, err := f.Fetch(ctx, acc.AccountID, window)
		if err != nil {
			f.logger.Warn(ctx, "skipping account after fetch failure", "account_id", acc.AccountID, "error", err)
			continue
		}
		out = append(out, txs...)
	}
	return out, nil
}
