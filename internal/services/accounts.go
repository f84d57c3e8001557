package services

import (
	"context"
	"fmt"

	"simplewallet/internal/core"
	"simplewallet/internal/storage"
)

// AccountService manages the user's accounts.
type AccountService struct {
	repo *storage.Repository
}

func NewAccountService(repo *storage.Repository) *AccountService {
	return &AccountService{repo: repo}
}

func (s *AccountService) Create(ctx context.Context, req AccountRequest, userID string) (*AccountResponse, error) {
	account, err := req.toEntity(userID)
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.CreateAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	resp := accountToResponse(saved)
	return &resp, nil
}

// FindByUser lists the accounts owned by userID alone.
func (s *AccountService) FindByUser(ctx context.Context, userID string) ([]AccountResponse, error) {
	return s.list(ctx, []string{userID})
}

// FindAllForFamily lists accounts across the user and its direct
// dependents.
func (s *AccountService) FindAllForFamily(ctx context.Context, userID string) ([]AccountResponse, error) {
	scope, err := resolveScopeIDs(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, scope)
}

func (s *AccountService) list(ctx context.Context, userIDs []string) ([]AccountResponse, error) {
	accounts, err := s.repo.ListAccounts(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	out := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountToResponse(a))
	}
	return out, nil
}

// FindByID returns the account only when it belongs to userID;
// (nil, nil) otherwise.
func (s *AccountService) FindByID(ctx context.Context, id int64, userID string) (*AccountResponse, error) {
	account, err := s.owned(ctx, id, userID)
	if err != nil || account == nil {
		return nil, err
	}
	resp := accountToResponse(*account)
	return &resp, nil
}

// Update overwrites the mutable fields of an owned account.
func (s *AccountService) Update(ctx context.Context, id int64, req AccountRequest, userID string) (*AccountResponse, error) {
	existing, err := s.owned(ctx, id, userID)
	if err != nil || existing == nil {
		return nil, err
	}
	replacement, err := req.toEntity(userID)
	if err != nil {
		return nil, err
	}
	replacement.ID = existing.ID
	if err := s.repo.UpdateAccount(ctx, replacement); err != nil {
		return nil, fmt.Errorf("update account %d: %w", id, err)
	}
	resp := accountToResponse(replacement)
	return &resp, nil
}

// Delete removes an owned account. The boolean reports whether a row
// was removed.
func (s *AccountService) Delete(ctx context.Context, id int64, userID string) (bool, error) {
	account, err := s.owned(ctx, id, userID)
	if err != nil || account == nil {
		return false, err
	}
	if err := s.repo.DeleteAccount(ctx, id); err != nil {
		return false, fmt.Errorf("delete account %d: %w", id, err)
	}
	return true, nil
}

func (s *AccountService) owned(ctx context.Context, id int64, userID string) (*core.Account, error) {
	account, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find account %d: %w", id, err)
	}
	if account == nil || account.UserID != userID {
		return nil, nil
	}
	return account, nil
}
