package services

import (
	"context"
	"fmt"

	"simplewallet/internal/core"
	"simplewallet/internal/storage"
)

// CategoryService manages the user's transaction categories.
type CategoryService struct {
	repo *storage.Repository
}

func NewCategoryService(repo *storage.Repository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) Create(ctx context.Context, req CategoryRequest, userID string) (*CategoryResponse, error) {
	category, err := req.toEntity(userID)
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	resp := categoryToResponse(saved)
	return &resp, nil
}

func (s *CategoryService) FindByUser(ctx context.Context, userID string) ([]CategoryResponse, error) {
	return s.list(ctx, []string{userID})
}

func (s *CategoryService) FindAllForFamily(ctx context.Context, userID string) ([]CategoryResponse, error) {
	scope, err := resolveScopeIDs(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, scope)
}

func (s *CategoryService) list(ctx context.Context, userIDs []string) ([]CategoryResponse, error) {
	categories, err := s.repo.ListCategories(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryToResponse(c))
	}
	return out, nil
}

func (s *CategoryService) FindByID(ctx context.Context, id int64, userID string) (*CategoryResponse, error) {
	category, err := s.owned(ctx, id, userID)
	if err != nil || category == nil {
		return nil, err
	}
	resp := categoryToResponse(*category)
	return &resp, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, req CategoryRequest, userID string) (*CategoryResponse, error) {
	existing, err := s.owned(ctx, id, userID)
	if err != nil || existing == nil {
		return nil, err
	}
	replacement, err := req.toEntity(userID)
	if err != nil {
		return nil, err
	}
	replacement.ID = existing.ID
	if err := s.repo.UpdateCategory(ctx, replacement); err != nil {
		return nil, fmt.Errorf("update category %d: %w", id, err)
	}
	resp := categoryToResponse(replacement)
	return &resp, nil
}

// Delete removes an owned category unless any transaction still
// references it; a referenced category stays put and the call fails
// with ErrCategoryInUse.
func (s *CategoryService) Delete(ctx context.Context, id int64, userID string) (bool, error) {
	category, err := s.owned(ctx, id, userID)
	if err != nil || category == nil {
		return false, err
	}
	inUse, err := s.repo.ExistsTransactionByCategory(ctx, id)
	if err != nil {
		return false, fmt.Errorf("check category %d usage: %w", id, err)
	}
	if inUse {
		return false, core.ErrCategoryInUse
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return false, fmt.Errorf("delete category %d: %w", id, err)
	}
	return true, nil
}

func (s *CategoryService) owned(ctx context.Context, id int64, userID string) (*core.Category, error) {
	category, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find category %d: %w", id, err)
	}
	if category == nil || category.UserID != userID {
		return nil, nil
	}
	return category, nil
}
