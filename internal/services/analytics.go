package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/models"
	"github.com/dmitrijs2005/fintrack/internal/repositories/transactions"
	"github.com/shopspring/decimal"
)

// DefaultPayDay is the day of month salaries are assumed to land on.
const DefaultPayDay = 25

// AnalyticsService derives summaries from the stored transactions. All
// windows are inclusive calendar dates; a zero window means all time.
type AnalyticsService interface {
	CategoryTotals(ctx context.Context, window models.DateRange) ([]models.CategoryTotal, error)
	IncomeAndSpending(ctx context.Context, window models.DateRange) (models.IncomeAndSpending, error)
	SpendingByCategory(ctx context.Context, window models.DateRange) ([]models.CategorySpend, error)
	MonthlySpending(ctx context.Context, months int) ([]models.MonthlyTotal, error)
	DebitAverage(ctx context.Context, window models.DateRange) (decimal.Decimal, error)

	// CurrentPayPeriod is the default window for category analytics.
	CurrentPayPeriod() models.DateRange
}

type analyticsService struct {
	txs    transactions.Repository
	payDay int
	now    func() time.Time
}

func NewAnalyticsService(txs transactions.Repository, payDay int) AnalyticsService {
	if payDay <= 0 {
		payDay = DefaultPayDay
	}
	return &analyticsService{txs: txs, payDay: payDay, now: time.Now}
}

func (a *analyticsService) CategoryTotals(ctx context.Context, window models.DateRange) ([]models.CategoryTotal, error) {
	return a.txs.CategoryTotals(ctx, window)
}

func (a *analyticsService) IncomeAndSpending(ctx context.Context, window models.DateRange) (models.IncomeAndSpending, error) {
	return a.txs.IncomeAndSpending(ctx, window)
}

func (a *analyticsService) SpendingByCategory(ctx context.Context, window models.DateRange) ([]models.CategorySpend, error) {
	return a.txs.SpendingByCategory(ctx, window)
}

// MonthlySpending returns debit totals for the last months calendar months,
// the current one included, oldest first. Months without debits are
// reported as zero.
func (a *analyticsService) MonthlySpending(ctx context.Context, months int) ([]models.MonthlyTotal, error) {
	if months <= 0 {
		months = 1
	}

	now := a.now()
	first := time.Date(now.Year(), now.Month()-time.Month(months-1), 1, 0, 0, 0, 0, now.Location())

	rows, err := a.txs.MonthlySpending(ctx, first)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		byMonth[r.Month] = r.Spending
	}

	out := make([]models.MonthlyTotal, 0, months)
	for i := 0; i < months; i++ {
		key := first.AddDate(0, i, 0).Format("2006-01")
		out = append(out, models.MonthlyTotal{Month: key, Spending: byMonth[key]})
	}
	return out, nil
}

func (a *analyticsService) DebitAverage(ctx context.Context, window models.DateRange) (decimal.Decimal, error) {
	is, err := a.txs.IncomeAndSpending(ctx, window)
	if err != nil {
		return decimal.Zero, err
	}
	if is.DebitCount == 0 {
		return decimal.Zero, nil
	}
	return is.Spending.Div(decimal.NewFromInt(is.DebitCount)).Round(2), nil
}

func (a *analyticsService) CurrentPayPeriod() models.DateRange {
	return PayPeriodWindow(a.now(), a.payDay)
}

// PayPeriodWindow returns the window from the most recent payday up to now.
//
// The payday of a month is payDay clamped to the month's length and moved
// back to Friday when it falls on a weekend. If this month's payday is still
// ahead of now, the previous month's payday starts the window.
func PayPeriodWindow(now time.Time, payDay int) models.DateRange {
	if payDay < 1 {
		payDay = 1
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := paydayIn(now.Year(), now.Month(), payDay, now.Location())
	if today.Before(start) {
		start = paydayIn(now.Year(), now.Month()-1, payDay, now.Location())
	}
	return models.DateRange{From: start, To: now}
}

func paydayIn(year int, month time.Month, payDay int, loc *time.Location) time.Time {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := firstOfMonth.AddDate(0, 1, -1).Day()
	if payDay > last {
		payDay = last
	}

	d := firstOfMonth.AddDate(0, 0, payDay-1)
	switch d.Weekday() {
	case time.Saturday:
		d = d.AddDate(0, 0, -1)
	case time.Sunday:
		d = d.AddDate(0, 0, -2)
	}
	return d
}
