package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/models"
	"github.com/dmitrijs2005/fintrack/internal/repositories/transactions"
)

const (
	insightTrendMonths  = 6
	insightRecentDebits = 20
	insightRecentDays   = 30
)

// ContextBuilder renders the grounding text handed to the chat model.
type ContextBuilder interface {
	Build(ctx context.Context) (string, error)
}

// InsightBuilder formats the store's aggregates as plain text. It performs
// no network I/O.
type InsightBuilder struct {
	analytics AnalyticsService
	txs       transactions.Repository
	now       func() time.Time
}

func NewInsightBuilder(analytics AnalyticsService, txs transactions.Repository) *InsightBuilder {
	return &InsightBuilder{analytics: analytics, txs: txs, now: time.Now}
}

func (b *InsightBuilder) Build(ctx context.Context) (string, error) {
	now := b.now()

	totals, err := b.analytics.IncomeAndSpending(ctx, models.DateRange{})
	if err != nil {
		return "", fmt.Errorf("totals: %w", err)
	}
	recent, err := b.analytics.IncomeAndSpending(ctx, models.LastDays(now, insightRecentDays))
	if err != nil {
		return "", fmt.Errorf("recent totals: %w", err)
	}
	avg, err := b.analytics.DebitAverage(ctx, models.DateRange{})
	if err != nil {
		return "", fmt.Errorf("debit average: %w", err)
	}
	byCategory, err := b.analytics.SpendingByCategory(ctx, models.DateRange{})
	if err != nil {
		return "", fmt.Errorf("category spending: %w", err)
	}
	trend, err := b.analytics.MonthlySpending(ctx, insightTrendMonths)
	if err != nil {
		return "", fmt.Errorf("monthly trend: %w", err)
	}
	debits, err := b.txs.List(ctx, transactions.Filter{Limit: insightRecentDebits, Direction: models.DirectionDebit})
	if err != nil {
		return "", fmt.Errorf("recent debits: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Personal finance summary as of %s.\n\n", now.Format(common.DateLayout))
	fmt.Fprintf(&sb, "Total spending: %s\n", totals.Spending.StringFixed(2))
	fmt.Fprintf(&sb, "Spending in the last %d days: %s\n", insightRecentDays, recent.Spending.StringFixed(2))
	fmt.Fprintf(&sb, "Total income: %s\n", totals.Income.StringFixed(2))
	fmt.Fprintf(&sb, "Average debit: %s over %d debits\n", avg.StringFixed(2), totals.DebitCount)

	sb.WriteString("\nSpending by category:\n")
	if len(byCategory) == 0 {
		sb.WriteString("- none\n")
	}
	for _, c := range byCategory {
		fmt.Fprintf(&sb, "- %s: %s (%d transactions)\n", c.Name, c.Spending.StringFixed(2), c.Count)
	}

	fmt.Fprintf(&sb, "\nMonthly spending, last %d months:\n", insightTrendMonths)
	for _, m := range trend {
		fmt.Fprintf(&sb, "- %s: %s\n", m.Month, m.Spending.StringFixed(2))
	}

	fmt.Fprintf(&sb, "\nMost recent debits (up to %d):\n", insightRecentDebits)
	if len(debits) == 0 {
		sb.WriteString("- none\n")
	}
	for _, t := range debits {
		category := t.CategoryName
		if category == "" {
			category = models.UncategorizedName
		}
		fmt.Fprintf(&sb, "- %s %s: %s [%s]\n",
			t.TransactionDate.Format(common.DateLayout), t.Description, t.Amount.StringFixed(2), category)
	}

	return sb.String(), nil
}
