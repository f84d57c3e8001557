package services

import (
	"context"
	"fmt"

	"simplewallet/internal/core"
	"simplewallet/internal/storage"
)

// guardReferences asserts that the referenced account and category both
// exist and belong to userID. It runs before every transaction write so
// that a user can never book against someone else's entities. A missing
// entity fails the same way as a foreign one.
func guardReferences(ctx context.Context, repo *storage.Repository, accountID, categoryID int64, userID string) error {
	account, err := repo.GetAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("guard account %d: %w", accountID, err)
	}
	if account == nil || account.UserID != userID {
		return core.ErrAccountNotOwned
	}

	category, err := repo.GetCategory(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("guard category %d: %w", categoryID, err)
	}
	if category == nil || category.UserID != userID {
		return core.ErrCategoryNotOwned
	}
	return nil
}

// resolveScopeIDs widens a user id to the family read scope: the user
// plus every direct dependent (users whose parent reference points at
// it). One level only; a dependent's own dependents are not included.
func resolveScopeIDs(ctx context.Context, repo *storage.Repository, userID string) ([]string, error) {
	ids := []string{userID}
	children, err := repo.ListUsersByParent(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve dependents of %s: %w", userID, err)
	}
	for _, child := range children {
		ids = append(ids, child.ID.String())
	}
	return ids, nil
}
