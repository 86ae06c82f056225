package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func nullableIcon(icon string) sql.NullString {
	return sql.NullString{String: icon, Valid: icon != ""}
}

func (r *SQLRepository) Create(ctx context.Context, c *models.Category) error {
	query := r.q(`
		INSERT INTO categories (name, color, icon) VALUES (?, ?, ?)
		ON CONFLICT(name) DO NOTHING
		RETURNING id, created_at
	`)

	var created dbx.Timestamp
	err := r.db.QueryRowContext(ctx, query, c.Name, c.Color, nullableIcon(c.Icon)).Scan(&c.ID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("category %q: %w", c.Name, common.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}

	c.CreatedAt = created.Time
	return nil
}

func (r *SQLRepository) EnsureDefaults(ctx context.Context, defaults []models.Category) (int, error) {
	query := r.q(`INSERT INTO categories (name, color, icon) VALUES (?, ?, ?) ON CONFLICT(name) DO NOTHING`)

	inserted := 0
	for _, c := range defaults {
		res, err := r.db.ExecContext(ctx, query, c.Name, c.Color, nullableIcon(c.Icon))
		if err != nil {
			return inserted, fmt.Errorf("failed to insert default category %q: %w", c.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("failed to get rows affected: %w", err)
		}
		inserted += int(n)
	}
	return inserted, nil
}

func scanCategory(sc interface{ Scan(...any) error }) (models.Category, error) {
	var (
		c       models.Category
		icon    sql.NullString
		created dbx.Timestamp
	)
	if err := sc.Scan(&c.ID, &c.Name, &c.Color, &icon, &created); err != nil {
		return c, err
	}
	c.Icon = icon.String
	c.CreatedAt = created.Time
	return c, nil
}

func (r *SQLRepository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, color, icon, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}
	defer rows.Close()

	result := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) getOne(ctx context.Context, where string, arg any) (*models.Category, error) {
	row := r.db.QueryRowContext(ctx, r.q(`SELECT id, name, color, icon, created_at FROM categories WHERE `+where), arg)

	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	return r.getOne(ctx, `id = ?`, id)
}

func (r *SQLRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return r.getOne(ctx, `name = ?`, name)
}

func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.q(`UPDATE transactions SET category_id = NULL WHERE category_id = ?`), id); err != nil {
		return fmt.Errorf("failed to detach transactions from category: %w", err)
	}

	result, err := r.db.ExecContext(ctx, r.q(`DELETE FROM categories WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
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
