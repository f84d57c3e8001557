package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"simplewallet/internal/core"
	"simplewallet/internal/storage"
)

// PasswordHasher turns a plaintext password into its stored form. It
// must pass already-hashed values through unchanged so that profile
// updates carrying the stored hash do not double-hash it.
type PasswordHasher func(string) (string, error)

// UserService manages accounts-of-record: registration, profile and
// password updates, and the parent link that forms a family.
type UserService struct {
	repo *storage.Repository
	hash PasswordHasher
}

func NewUserService(repo *storage.Repository, hash PasswordHasher) *UserService {
	return &UserService{repo: repo, hash: hash}
}

type UserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	ParentID string `json:"parentId,omitempty"`
}

func userToResponse(u core.User) UserResponse {
	resp := UserResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Email:    u.Email,
		Name:     u.Name,
	}
	if u.ParentID != nil {
		resp.ParentID = u.ParentID.String()
	}
	return resp
}

// Register creates a new user with a hashed password.
func (s *UserService) Register(ctx context.Context, req UserRequest) (*UserResponse, error) {
	u := core.User{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Name:     req.Name,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	hashed, err := s.hash(u.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.Password = hashed

	saved, err := s.repo.CreateUser(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}
	resp := userToResponse(saved)
	return &resp, nil
}

// Update overwrites the profile fields of the logged-in user. Username
// and password are untouched; they change through their own flows.
func (s *UserService) Update(ctx context.Context, userID string, email, name string) (*UserResponse, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", userID, err)
	}
	if u == nil {
		return nil, nil
	}
	u.Email = email
	u.Name = name
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateUser(ctx, *u); err != nil {
		return nil, fmt.Errorf("update user %s: %w", userID, err)
	}
	resp := userToResponse(*u)
	return &resp, nil
}

// UpdatePassword hashes and stores a new password for the user.
func (s *UserService) UpdatePassword(ctx context.Context, userID, password string) error {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user %s: %w", userID, err)
	}
	if u == nil {
		return core.ErrForbidden
	}
	if password == "" {
		return core.ErrEmptyPassword
	}
	hashed, err := s.hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Password = hashed
	if err := s.repo.UpdateUser(ctx, *u); err != nil {
		return fmt.Errorf("update password for %s: %w", userID, err)
	}
	return nil
}

// UpdateParent links the user to a parent, widening the parent's family
// read scope to include it. A nil parentID clears the link. Linking a
// user to itself is rejected.
func (s *UserService) UpdateParent(ctx context.Context, userID string, parentID *string) (*UserResponse, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", userID, err)
	}
	if u == nil {
		return nil, nil
	}
	if parentID == nil {
		u.ParentID = nil
	} else {
		parsed, err := uuid.Parse(*parentID)
		if err != nil {
			return nil, fmt.Errorf("parse parent id %q: %w", *parentID, err)
		}
		if parsed == u.ID {
			return nil, core.ErrSelfParent
		}
		parent, err := s.repo.GetUser(ctx, parsed.String())
		if err != nil {
			return nil, fmt.Errorf("find parent %s: %w", parsed, err)
		}
		if parent == nil {
			return nil, nil
		}
		u.ParentID = &parsed
	}
	if err := s.repo.UpdateUser(ctx, *u); err != nil {
		return nil, fmt.Errorf("update parent for %s: %w", userID, err)
	}
	resp := userToResponse(*u)
	return &resp, nil
}

func (s *UserService) FindByID(ctx context.Context, userID string) (*UserResponse, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil || u == nil {
		return nil, err
	}
	resp := userToResponse(*u)
	return &resp, nil
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*core.User, error) {
	return s.repo.GetUserByUsername(ctx, username)
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*UserResponse, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, err
	}
	resp := userToResponse(*u)
	return &resp, nil
}

// Children lists the direct dependents of the user.
func (s *UserService) Children(ctx context.Context, userID string) ([]UserResponse, error) {
	children, err := s.repo.ListUsersByParent(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list dependents of %s: %w", userID, err)
	}
	out := make([]UserResponse, 0, len(children))
	for _, c := range children {
		out = append(out, userToResponse(c))
	}
	return out, nil
}
