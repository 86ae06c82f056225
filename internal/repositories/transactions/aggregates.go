package transactions

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/models"
)

func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// CategoryTotals returns every category with the signed sum of its
// transactions in the window. Categories without activity report zero.
// The date bounds sit in the join condition so they cannot drop empty
// categories.
func (r *SQLRepository) CategoryTotals(ctx context.Context, dr models.DateRange) ([]models.CategoryTotal, error) {
	args := []any{string(models.DirectionDebit)}
	join := "t.category_id = c.id"
	var conds []string
	conds, args = rangeConds("t.transaction_date", dr, conds, args)
	if len(conds) > 0 {
		join += " AND " + strings.Join(conds, " AND ")
	}

	query := `
		SELECT c.id, c.name, c.color,
			CAST(COALESCE(SUM(CASE WHEN t.type = ? THEN -t.amount_minor ELSE t.amount_minor END), 0) AS BIGINT) AS total,
			COUNT(t.id)
		FROM categories c
		LEFT JOIN transactions t ON ` + join + `
		GROUP BY c.id, c.name, c.color
		ORDER BY total DESC, c.name`

	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select category totals: %w", err)
	}
	defer rows.Close()

	result := []models.CategoryTotal{}
	for rows.Next() {
		var (
			ct    models.CategoryTotal
			total int64
		)
		if err := rows.Scan(&ct.CategoryID, &ct.Name, &ct.Color, &total, &ct.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		ct.Total = fromMinor(total)
		result = append(result, ct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category totals: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) IncomeAndSpending(ctx context.Context, dr models.DateRange) (models.IncomeAndSpending, error) {
	credit, debit := string(models.DirectionCredit), string(models.DirectionDebit)
	args := []any{credit, debit, credit, debit}
	conds, args := rangeConds("transaction_date", dr, nil, args)

	query := `
		SELECT
			CAST(COALESCE(SUM(CASE WHEN type = ? THEN amount_minor ELSE 0 END), 0) AS BIGINT),
			CAST(COALESCE(SUM(CASE WHEN type = ? THEN amount_minor ELSE 0 END), 0) AS BIGINT),
			COUNT(CASE WHEN type = ? THEN 1 END),
			COUNT(CASE WHEN type = ? THEN 1 END)
		FROM transactions` + where(conds)

	var (
		res              models.IncomeAndSpending
		income, spending int64
	)
	err := r.db.QueryRowContext(ctx, r.q(query), args...).Scan(&income, &spending, &res.CreditCount, &res.DebitCount)
	if err != nil {
		return res, fmt.Errorf("failed to select income and spending: %w", err)
	}

	res.Income = fromMinor(income)
	res.Spending = fromMinor(spending)
	return res, nil
}

// SpendingByCategory sums debits per category, largest first. Transactions
// without a category form one bucket with a nil CategoryID.
func (r *SQLRepository) SpendingByCategory(ctx context.Context, dr models.DateRange) ([]models.CategorySpend, error) {
	conds := []string{"t.type = ?"}
	args := []any{string(models.DirectionDebit)}
	conds, args = rangeConds("t.transaction_date", dr, conds, args)

	query := `
		SELECT t.category_id, c.name, CAST(SUM(t.amount_minor) AS BIGINT) AS spending, COUNT(*)
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id` + where(conds) + `
		GROUP BY t.category_id, c.name
		ORDER BY spending DESC`

	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select spending by category: %w", err)
	}
	defer rows.Close()

	result := []models.CategorySpend{}
	for rows.Next() {
		var (
			cs       models.CategorySpend
			id       sql.NullInt64
			name     sql.NullString
			spending int64
		)
		if err := rows.Scan(&id, &name, &spending, &cs.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category spending: %w", err)
		}
		if id.Valid {
			v := id.Int64
			cs.CategoryID = &v
			cs.Name = name.String
		} else {
			cs.Name = models.UncategorizedName
		}
		cs.Spending = fromMinor(spending)
		result = append(result, cs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category spending: %w", err)
	}
	return result, nil
}

// MonthlySpending sums debits per calendar month from since onward, oldest
// month first.
func (r *SQLRepository) MonthlySpending(ctx context.Context, since time.Time) ([]models.MonthlyTotal, error) {
	query := `
		SELECT SUBSTR(transaction_date, 1, 7) AS month, CAST(SUM(amount_minor) AS BIGINT)
		FROM transactions
		WHERE type = ? AND transaction_date >= ?
		GROUP BY month
		ORDER BY month`

	rows, err := r.db.QueryContext(ctx, r.q(query), string(models.DirectionDebit), formatDate(since))
	if err != nil {
		return nil, fmt.Errorf("failed to select monthly spending: %w", err)
	}
	defer rows.Close()

	result := []models.MonthlyTotal{}
	for rows.Next() {
		var (
			mt    models.MonthlyTotal
			total int64
		)
		if err := rows.Scan(&mt.Month, &total); err != nil {
			return nil, fmt.Errorf("failed to scan monthly spending: %w", err)
		}
		mt.Spending = fromMinor(total)
		result = append(result, mt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly spending: %w", err)
	}
	return result, nil
}
