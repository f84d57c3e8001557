package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"simplewallet/internal/core"
)

// CreateUser persists a new user. A fresh id is assigned when the zero
// UUID is passed. The password must already be hashed by the caller.
func (r *Repository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tb_users (id, username, password, email, name, parent_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID.String(), u.Username, u.Password, u.Email, nullString(u.Name), nullUUID(u.ParentID))
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetUser returns nil without error when no row matches.
func (r *Repository) GetUser(ctx context.Context, id string) (*core.User, error) {
	return r.getUserWhere(ctx, "id = ?", id)
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	return r.getUserWhere(ctx, "username = ?", username)
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return r.getUserWhere(ctx, "email = ?", email)
}

func (r *Repository) getUserWhere(ctx context.Context, where string, arg any) (*core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password, email, name, parent_id FROM tb_users WHERE `+where, arg)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// ListUsersByParent returns the direct dependents of the given user.
func (r *Repository) ListUsersByParent(ctx context.Context, parentID string) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, password, email, name, parent_id
		 FROM tb_users WHERE parent_id = ? ORDER BY username`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list users by parent: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *Repository) UpdateUser(ctx context.Context, u core.User) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tb_users SET username = ?, password = ?, email = ?, name = ?, parent_id = ?
		 WHERE id = ?`,
		u.Username, u.Password, u.Email, nullString(u.Name), nullUUID(u.ParentID), u.ID.String())
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func scanUser(row rowScanner) (*core.User, error) {
	var (
		u              core.User
		id             string
		name, parentID sql.NullString
	)
	if err := row.Scan(&id, &u.Username, &u.Password, &u.Email, &name, &parentID); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse user id %q: %w", id, err)
	}
	u.ID = parsed
	u.Name = name.String
	if parentID.Valid {
		p, err := uuid.Parse(parentID.String)
		if err != nil {
			return nil, fmt.Errorf("parse parent id %q: %w", parentID.String, err)
		}
		u.ParentID = &p
	}
	return &u, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}
