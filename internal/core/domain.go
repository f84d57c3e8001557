package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Credit   TransactionType = 0
	Debit    TransactionType = 1
	Transfer TransactionType = 2

	// MaxDescriptionLen bounds transaction descriptions (mirrors the column size).
	MaxDescriptionLen = 500
)

type (
	// TransactionType is the closed set of ledger entry kinds, persisted by code.
	TransactionType int

	Account struct {
		ID          int64
		Description string
		Balance     decimal.Decimal
		Credit      decimal.Decimal
		DueDate     int // day of month the account bill is due
		UserID      string
	}

	Category struct {
		ID       int64
		Category string
		Type     TransactionType
		Color    string
		UserID   string
	}

	Transaction struct {
		ID              int64
		Description     string
		Amount          decimal.Decimal
		Type            TransactionType
		DueDate         Date
		EffectiveDate   *Date
		EffectiveAmount *decimal.Decimal
		AccountID       int64
		CategoryID      int64
		UserID          string
		Created         time.Time
		Updated         time.Time
	}

	User struct {
		ID       uuid.UUID
		Username string
		Password string // bcrypt hash at rest, never plaintext
		Email    string
		Name     string
		ParentID *uuid.UUID
	}
)

var (
	ErrForbidden        = errors.New("forbidden")
	ErrAccountNotOwned  = errors.New("account does not belong to the logged-in user")
	ErrCategoryNotOwned = errors.New("category does not belong to the logged-in user")
	ErrCategoryInUse    = errors.New("category has linked transactions and cannot be removed")
	ErrSelfParent       = errors.New("user cannot be its own parent")

	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrLongDescription  = errors.New("description too long (max 500 characters)")
	ErrMissingAccount   = errors.New("missing account reference")
	ErrMissingCategory  = errors.New("missing category reference")
	ErrInvalidDueDay    = errors.New("invalid due day of month")
	ErrEmptyUsername    = errors.New("empty username")
	ErrEmptyEmail       = errors.New("empty email")
	ErrEmptyPassword    = errors.New("empty password")
)

// FromCode converts a wire-level type code into a TransactionType.
func FromCode(code int) (TransactionType, error) {
	t := TransactionType(code)
	if err := t.Validate(); err != nil {
		return 0, err
	}
	return t, nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Credit, Debit, Transfer:
		return nil
	default:
		return ErrInvalidType
	}
}

// IsEffective reports whether the transaction has been effectuated,
// i.e. moved from planned to realized.
func (t Transaction) IsEffective() bool {
	return t.EffectiveDate != nil
}

func (a Account) Validate() error {
	if len(strings.TrimSpace(a.Description)) == 0 {
		return ErrEmptyDescription
	}
	if a.DueDate < 1 || a.DueDate > 31 {
		return ErrInvalidDueDay
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Category)) == 0 {
		return ErrEmptyDescription
	}
	return c.Type.Validate()
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > MaxDescriptionLen {
		return ErrLongDescription
	}
	if t.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := t.DueDate.Validate(); err != nil {
		return err
	}
	if t.AccountID == 0 {
		return ErrMissingAccount
	}
	if t.CategoryID == 0 {
		return ErrMissingCategory
	}
	return nil
}

func (u User) Validate() error {
	if len(strings.TrimSpace(u.Username)) == 0 {
		return ErrEmptyUsername
	}
	if len(strings.TrimSpace(u.Email)) == 0 {
		return ErrEmptyEmail
	}
	if u.Password == "" {
		return ErrEmptyPassword
	}
	if u.ParentID != nil && *u.ParentID == u.ID {
		return ErrSelfParent
	}
	return nil
}
