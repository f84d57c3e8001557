package storage

import (
	"context"
	"database/sql"
	"fmt"

	"simplewallet/internal/core"
)

func (r *Repository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tb_accounts (description, balance, credit, due_date, user_id)
		 VALUES (?, ?, ?, ?, ?)`,
		a.Description, a.Balance.String(), a.Credit.String(), a.DueDate, a.UserID)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account insert id: %w", err)
	}
	a.ID = id
	return a, nil
}

// GetAccount returns nil without error when no row matches.
func (r *Repository) GetAccount(ctx context.Context, id int64) (*core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, description, balance, credit, due_date, user_id
		 FROM tb_accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// ListAccounts returns every account owned by one of the given users.
func (r *Repository) ListAccounts(ctx context.Context, userIDs []string) ([]core.Account, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query := `SELECT id, description, balance, credit, due_date, user_id
		 FROM tb_accounts WHERE user_id IN (` + placeholders(len(userIDs)) + `) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, idArgs(userIDs)...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// UpdateAccount overwrites the mutable fields. The owner is immutable.
func (r *Repository) UpdateAccount(ctx context.Context, a core.Account) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tb_accounts SET description = ?, balance = ?, credit = ?, due_date = ?
		 WHERE id = ?`,
		a.Description, a.Balance.String(), a.Credit.String(), a.DueDate, a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

func (r *Repository) DeleteAccount(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tb_accounts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*core.Account, error) {
	var (
		a                core.Account
		balance, creditS string
	)
	if err := row.Scan(&a.ID, &a.Description, &balance, &creditS, &a.DueDate, &a.UserID); err != nil {
		return nil, err
	}
	var err error
	if a.Balance, err = parseDecimal(balance); err != nil {
		return nil, err
	}
	if a.Credit, err = parseDecimal(creditS); err != nil {
		return nil, err
	}
	return &a, nil
}
