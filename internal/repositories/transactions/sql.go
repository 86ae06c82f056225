package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/models"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) q(query string) string {
	return dbx.Rebind(r.dialect, query)
}

const upsertQuery = `
	INSERT INTO transactions (
		account_id, type, transaction_type, status, description, description_fold,
		card_number, posted_order, posting_date, value_date, action_date,
		transaction_date, amount_minor, running_balance_minor, category_id
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (account_id, transaction_date, amount_minor, description) DO UPDATE SET
		type = excluded.type,
		transaction_type = excluded.transaction_type,
		status = excluded.status,
		description_fold = excluded.description_fold,
		card_number = excluded.card_number,
		posted_order = excluded.posted_order,
		posting_date = excluded.posting_date,
		value_date = excluded.value_date,
		action_date = excluded.action_date,
		running_balance_minor = excluded.running_balance_minor,
		category_id = COALESCE(transactions.category_id, excluded.category_id)
	RETURNING id
`

// Upsert inserts t or overwrites the row with the same dedup key, keeping
// that row's category. Amounts that are not whole cents are refused.
func (r *SQLRepository) Upsert(ctx context.Context, t *models.Transaction) error {
	amount, err := toMinor("amount", t.Amount)
	if err != nil {
		return err
	}
	balance, err := toMinor("running balance", t.RunningBalance)
	if err != nil {
		return err
	}

	var category sql.NullInt64
	if t.CategoryID != nil {
		category = sql.NullInt64{Int64: *t.CategoryID, Valid: true}
	}

	err = r.db.QueryRowContext(ctx, r.q(upsertQuery),
		t.AccountID, string(t.Type), t.TransactionType, t.Status, t.Description, foldCase(t.Description),
		t.CardNumber, t.PostedOrder, t.PostingDate, t.ValueDate, t.ActionDate,
		formatDate(t.TransactionDate), amount, balance, category,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert transaction: %w", err)
	}
	return nil
}

func (r *SQLRepository) BatchUpsert(ctx context.Context, txs []models.Transaction) BatchResult {
	var res BatchResult
	for i := range txs {
		if err := r.Upsert(ctx, &txs[i]); err != nil {
			res.Failed = append(res.Failed, RowError{Index: i, Err: err})
			continue
		}
		res.Applied++
	}
	return res
}

func (r *SQLRepository) SetCategory(ctx context.Context, id int64, categoryID *int64) error {
	var category sql.NullInt64
	if categoryID != nil {
		category = sql.NullInt64{Int64: *categoryID, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, r.q(`UPDATE transactions SET category_id = ? WHERE id = ?`), category, id)
	if err != nil {
		return fmt.Errorf("failed to set transaction category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

const selectJoined = `
	SELECT t.id, t.account_id, t.type, t.transaction_type, t.status, t.description,
		t.card_number, t.posted_order, t.posting_date, t.value_date, t.action_date,
		t.transaction_date, t.amount_minor, t.running_balance_minor, t.category_id,
		t.created_at, c.name, c.color
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id
`

func scanTransaction(sc interface{ Scan(...any) error }) (models.Transaction, error) {
	var (
		t                 models.Transaction
		direction, date   string
		amount, balance   int64
		category          sql.NullInt64
		created           dbx.Timestamp
		catName, catColor sql.NullString
	)

	err := sc.Scan(&t.ID, &t.AccountID, &direction, &t.TransactionType, &t.Status, &t.Description,
		&t.CardNumber, &t.PostedOrder, &t.PostingDate, &t.ValueDate, &t.ActionDate,
		&date, &amount, &balance, &category, &created, &catName, &catColor)
	if err != nil {
		return t, err
	}

	parsed, err := time.Parse(common.DateLayout, date)
	if err != nil {
		return t, fmt.Errorf("bad transaction_date %q: %w", date, err)
	}

	t.Type = models.Direction(direction)
	t.TransactionDate = parsed
	t.Amount = fromMinor(amount)
	t.RunningBalance = fromMinor(balance)
	if category.Valid {
		id := category.Int64
		t.CategoryID = &id
	}
	t.CreatedAt = created.Time
	t.CategoryName = catName.String
	t.CategoryColor = catColor.String
	return t, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	row := r.db.QueryRowContext(ctx, r.q(selectJoined+` WHERE t.id = ?`), id)

	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &t, nil
}

func (r *SQLRepository) List(ctx context.Context, f Filter) ([]models.Transaction, error) {
	var (
		conds []string
		args  []any
	)

	switch {
	case f.Uncategorized:
		conds = append(conds, "t.category_id IS NULL")
	case f.CategoryID != nil:
		conds = append(conds, "t.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.Search != "" {
		conds = append(conds, `t.description_fold LIKE ? ESCAPE '\'`)
		args = append(args, containsPattern(f.Search))
	}
	if f.Direction != "" {
		conds = append(conds, "t.type = ?")
		args = append(args, string(f.Direction))
	}
	conds, args = rangeConds("t.transaction_date", f.Range, conds, args)

	query := selectJoined
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY t.transaction_date DESC, t.id DESC"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select transactions: %w", err)
	}
	defer rows.Close()

	result := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		result = append(result, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) ClearAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear transactions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
