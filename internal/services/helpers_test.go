package services

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/models"
	"github.com/dmitrijs2005/fintrack/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *storage.Store {
	t.Helper()
	ctx := context.Background()
	s, err := storage.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Init(ctx))
	return s
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

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func rawTx(desc, date, amount, dir string) models.RawTransaction {
	return models.RawTransaction{
		AccountID:       "acc-1",
		Type:            dir,
		TransactionType: "CardPurchases",
		Status:          "POSTED",
		Description:     desc,
		TransactionDate: date,
		Amount:          decPtr(amount),
	}
}

func storedTx(desc, date, amount string, dir models.Direction) models.Transaction {
	return models.Transaction{
		AccountID:       "acc-1",
		Type:            dir,
		TransactionType: "CardPurchases",
		Status:          "POSTED",
		Description:     desc,
		TransactionDate: day(date),
		Amount:          dec(amount),
	}
}

// memSecrets is a SecretStore keeping JSON in memory.
type memSecrets struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMemSecrets() *memSecrets {
	return &memSecrets{data: map[string][]byte{}}
}

func (m *memSecrets) Put(_ context.Context, name string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[name] = b
	return nil
}

func (m *memSecrets) Get(_ context.Context, name string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	b, ok := m.data[name]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (m *memSecrets) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, name)
	return nil
}

func (m *memSecrets) has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[name]
	return ok
}

// fakeBank serves canned pages per account.
type fakeBank struct {
	mu          sync.Mutex
	accounts    []models.Account
	accountsErr error
	pages       map[string][]models.TransactionPage
	failFor     map[string]error
	calls       []string
}

func (f *fakeBank) Accounts(context.Context) ([]models.Account, error) {
	return f.accounts, f.accountsErr
}

func (f *fakeBank) TransactionsPage(_ context.Context, accountID string, _ models.DateRange, page int) (models.TransactionPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, accountID+"#"+strconv.Itoa(page))
	if err := f.failFor[accountID]; err != nil {
		return models.TransactionPage{}, err
	}
	pages := f.pages[accountID]
	if page < 1 || page > len(pages) {
		return models.TransactionPage{}, nil
	}
	return pages[page-1], nil
}
