package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateRange is an optional calendar window. A zero From or To leaves that
// side open. Both bounds are inclusive and compared by calendar date.
type DateRange struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// LastDays returns the window covering the days calendar days before now.
func LastDays(now time.Time, days int) DateRange {
	return DateRange{From: now.AddDate(0, 0, -days), To: now}
}

// CategoryTotal is the signed sum of a category's transactions: credits
// count positive, debits negative.
type CategoryTotal struct {
	CategoryID int64
	Name       string
	Color      string
	Total      decimal.Decimal
	Count      int64
}

// IncomeAndSpending splits activity by direction. Both sums are positive.
type IncomeAndSpending struct {
	Income      decimal.Decimal
	Spending    decimal.Decimal
	CreditCount int64
	DebitCount  int64
}

// UncategorizedName labels the bucket of transactions without a category.
const UncategorizedName = "Uncategorized"

// CategorySpend is the debit total of one category. CategoryID is nil for
// the uncategorized bucket.
type CategorySpend struct {
	CategoryID *int64
	Name       string
	Spending   decimal.Decimal
	Count      int64
}

// MonthlyTotal is the debit total of a calendar month, Month being "YYYY-MM".
type MonthlyTotal struct {
	Month    string
	Spending decimal.Decimal
}
