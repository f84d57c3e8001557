package storage

import (
	"context"
	"database/sql"
	"fmt"

	"simplewallet/internal/core"
)

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tb_categories (category, type, color, user_id) VALUES (?, ?, ?, ?)`,
		c.Category, int(c.Type), c.Color, c.UserID)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category insert id: %w", err)
	}
	c.ID = id
	return c, nil
}

// GetCategory returns nil without error when no row matches.
func (r *Repository) GetCategory(ctx context.Context, id int64) (*core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, category, type, color, user_id FROM tb_categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ListCategories returns every category owned by one of the given users.
func (r *Repository) ListCategories(ctx context.Context, userIDs []string) ([]core.Category, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query := `SELECT id, category, type, color, user_id
		 FROM tb_categories WHERE user_id IN (` + placeholders(len(userIDs)) + `) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, idArgs(userIDs)...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (r *Repository) UpdateCategory(ctx context.Context, c core.Category) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tb_categories SET category = ?, type = ?, color = ? WHERE id = ?`,
		c.Category, int(c.Type), c.Color, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tb_categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func scanCategory(row rowScanner) (*core.Category, error) {
	var (
		c        core.Category
		typeCode int
	)
	if err := row.Scan(&c.ID, &c.Category, &typeCode, &c.Color, &c.UserID); err != nil {
		return nil, err
	}
	c.Type = core.TransactionType(typeCode)
	return &c, nil
}
