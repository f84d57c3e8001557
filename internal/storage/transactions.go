package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"simplewallet/internal/core"
)

// PageRequest describes page-based retrieval of transactions.
type PageRequest struct {
	Page int
	Size int
	Sort string // one of the whitelisted sort keys
	Desc bool
}

// TransactionPage is one page of transactions plus paging metadata.
type TransactionPage struct {
	Items         []core.Transaction
	TotalElements int64
	TotalPages    int
	Page          int
	Size          int
}

// sortColumns whitelists sortable fields against injection.
var sortColumns = map[string]string{
	"id":      "id",
	"dueDate": "due_date",
	"amount":  "amount",
	"created": "created",
}

func (p PageRequest) normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = 20
	}
	if p.Size > 100 {
		p.Size = 100
	}
	if _, ok := sortColumns[p.Sort]; !ok {
		p.Sort = "dueDate"
	}
	return p
}

// CreateTransaction persists a new transaction. Creation and update
// timestamps are set here, not by callers.
func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := time.Now().UTC()
	t.Created = now
	t.Updated = now

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tb_transactions
		 (description, amount, type, due_date, effective_date, effective_amount,
		  account_id, category_id, user_id, created, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Description, t.Amount.String(), int(t.Type), t.DueDate.String(),
		nullDate(t.EffectiveDate), nullDecimal(t.EffectiveAmount),
		t.AccountID, t.CategoryID, t.UserID,
		now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}
	t.ID = id
	return t, nil
}

// GetTransaction returns nil without error when no row matches.
func (r *Repository) GetTransaction(ctx context.Context, id int64) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, selectTransaction+` WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// UpdateTransaction overwrites the full mutable field set and bumps the
// update timestamp. Owner and creation timestamp are immutable.
func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tb_transactions SET
		 description = ?, amount = ?, type = ?, due_date = ?,
		 effective_date = ?, effective_amount = ?, account_id = ?, category_id = ?,
		 updated = ?
		 WHERE id = ?`,
		t.Description, t.Amount.String(), int(t.Type), t.DueDate.String(),
		nullDate(t.EffectiveDate), nullDecimal(t.EffectiveAmount),
		t.AccountID, t.CategoryID,
		time.Now().UTC().Format(timeLayout), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tb_transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// ExistsTransactionByCategory reports whether any transaction still
// references the category. Used as the delete guard.
func (r *Repository) ExistsTransactionByCategory(ctx context.Context, categoryID int64) (bool, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM tb_transactions WHERE category_id = ?`, categoryID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count transactions by category: %w", err)
	}
	return n > 0, nil
}

// ListTransactionsPaged returns one page of transactions owned by any of
// the given users, plus the total count across all pages.
func (r *Repository) ListTransactionsPaged(ctx context.Context, userIDs []string, p PageRequest) (TransactionPage, error) {
	p = p.normalize()
	page := TransactionPage{Page: p.Page, Size: p.Size}
	if len(userIDs) == 0 {
		return page, nil
	}

	in := `(` + placeholders(len(userIDs)) + `)`
	args := idArgs(userIDs)

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM tb_transactions WHERE user_id IN `+in, args...).
		Scan(&page.TotalElements)
	if err != nil {
		return page, fmt.Errorf("count transactions: %w", err)
	}
	page.TotalPages = int((page.TotalElements + int64(p.Size) - 1) / int64(p.Size))

	direction := "ASC"
	if p.Desc {
		direction = "DESC"
	}
	query := selectTransaction +
		` WHERE user_id IN ` + in +
		` ORDER BY ` + sortColumns[p.Sort] + ` ` + direction + `, id ` + direction +
		` LIMIT ? OFFSET ?`
	args = append(args, p.Size, p.Page*p.Size)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return page, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return page, fmt.Errorf("scan transaction: %w", err)
		}
		page.Items = append(page.Items, *t)
	}
	return page, rows.Err()
}

const selectTransaction = `SELECT id, description, amount, type, due_date,
	 effective_date, effective_amount, account_id, category_id, user_id, created, updated
	 FROM tb_transactions`

func scanTransaction(row rowScanner) (*core.Transaction, error) {
	var (
		t                  core.Transaction
		typeCode           int
		amount, due        string
		effDate, effAmount sql.NullString
		created, updated   string
	)
	err := row.Scan(&t.ID, &t.Description, &amount, &typeCode, &due,
		&effDate, &effAmount, &t.AccountID, &t.CategoryID, &t.UserID, &created, &updated)
	if err != nil {
		return nil, err
	}
	t.Type = core.TransactionType(typeCode)
	if t.Amount, err = parseDecimal(amount); err != nil {
		return nil, err
	}
	if t.DueDate, err = parseDate(due); err != nil {
		return nil, err
	}
	if effDate.Valid {
		d, err := parseDate(effDate.String)
		if err != nil {
			return nil, err
		}
		t.EffectiveDate = &d
	}
	if effAmount.Valid {
		a, err := parseDecimal(effAmount.String)
		if err != nil {
			return nil, err
		}
		t.EffectiveAmount = &a
	}
	if t.Created, err = parseTimestamp(created); err != nil {
		return nil, err
	}
	if t.Updated, err = parseTimestamp(updated); err != nil {
		return nil, err
	}
	return &t, nil
}

func nullDate(d *core.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}
