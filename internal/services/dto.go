// Package services implements the wallet use cases on top of the
// storage layer: ownership-guarded transaction lifecycle, installment
// generation, loan composition and family-scoped reads.
package services

import (
	"github.com/shopspring/decimal"

	"simplewallet/internal/core"
)

type AccountRequest struct {
	Description string          `json:"description"`
	Balance     decimal.Decimal `json:"balance"`
	Credit      decimal.Decimal `json:"credit"`
	DueDate     int             `json:"dueDate"`
}

type AccountResponse struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Balance     decimal.Decimal `json:"balance"`
	Credit      decimal.Decimal `json:"credit"`
	DueDate     int             `json:"dueDate"`
}

type CategoryRequest struct {
	Category string `json:"category"`
	Type     int    `json:"type"`
	Color    string `json:"color"`
}

type CategoryResponse struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
	Type     int    `json:"type"`
	Color    string `json:"color"`
}

type TransactionRequest struct {
	DueDate         core.Date        `json:"dueDate"`
	Description     string           `json:"description"`
	Amount          decimal.Decimal  `json:"amount"`
	Type            int              `json:"type"`
	EffectiveDate   *core.Date       `json:"effectiveDate"`
	EffectiveAmount *decimal.Decimal `json:"effectiveAmount"`
	AccountID       int64            `json:"accountId"`
	CategoryID      int64            `json:"categoryId"`
}

type TransactionResponse struct {
	ID              int64            `json:"id"`
	Description     string           `json:"description"`
	Amount          decimal.Decimal  `json:"amount"`
	Type            int              `json:"type"`
	DueDate         core.Date        `json:"dueDate"`
	EffectiveDate   *core.Date       `json:"effectiveDate"`
	EffectiveAmount *decimal.Decimal `json:"effectiveAmount"`
	AccountID       int64            `json:"accountId"`
	Account         string           `json:"account"`
	CategoryID      int64            `json:"categoryId"`
	Category        string           `json:"category"`
	Username        string           `json:"username,omitempty"`
}

// TransactionPageResponse is one page of transactions plus paging
// metadata for the client.
type TransactionPageResponse struct {
	Items         []TransactionResponse `json:"items"`
	TotalElements int64                 `json:"totalElements"`
	TotalPages    int                   `json:"totalPages"`
	Page          int                   `json:"page"`
	Size          int                   `json:"size"`
}

// EffectivationRequest records the realized date and amount of a
// planned transaction.
type EffectivationRequest struct {
	EffectiveDate   core.Date       `json:"effectiveDate"`
	EffectiveAmount decimal.Decimal `json:"effectiveAmount"`
}

// BatchTransactionRequest creates a whole installment series in one
// call: the embedded template plus the number of monthly repetitions.
type BatchTransactionRequest struct {
	TransactionRequest
	QtdeInstallments int `json:"qtdeInstallments"`
}

// LoanRequest carries the immediate credit (primary fields) and the
// repayment series template (the *Loan fields).
type LoanRequest struct {
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Type          int             `json:"type"`
	DueDate       core.Date       `json:"dueDate"`
	EffectiveDate *core.Date      `json:"effectiveDate"`
	AccountID     int64           `json:"accountId"`
	CategoryID    int64           `json:"categoryId"`

	DescriptionLoan   string          `json:"descriptionLoan"`
	QtdeInstallments  int             `json:"qtdeInstallments"`
	AmountLoan        decimal.Decimal `json:"amountLoan"`
	TypeLoan          int             `json:"typeLoan"`
	DueDateLoan       core.Date       `json:"dueDateLoan"`
	EffectiveDateLoan *core.Date      `json:"effectiveDateLoan"`
	AccountIDLoan     int64           `json:"accountIdLoan"`
	CategoryIDLoan    int64           `json:"categoryIdLoan"`
}

type LoanResponse struct {
	ID              int64                 `json:"id"`
	Description     string                `json:"description"`
	Amount          decimal.Decimal       `json:"amount"`
	Type            int                   `json:"type"`
	DueDate         core.Date             `json:"dueDate"`
	EffectiveDate   *core.Date            `json:"effectiveDate"`
	EffectiveAmount *decimal.Decimal      `json:"effectiveAmount"`
	AccountID       int64                 `json:"accountId"`
	Account         string                `json:"account"`
	CategoryID      int64                 `json:"categoryId"`
	Category        string                `json:"category"`
	UserID          string                `json:"userId"`
	Username        string                `json:"username"`
	Installments    []InstallmentResponse `json:"installments"`
}

// InstallmentResponse is the (due date, amount) pair of one generated
// repayment.
type InstallmentResponse struct {
	DueDate core.Date       `json:"dueDate"`
	Amount  decimal.Decimal `json:"amount"`
}

// toEntity builds the persisted shape of a transaction request. The
// owning user always comes from the authenticated identity, never from
// the payload.
func (r TransactionRequest) toEntity(userID string) (core.Transaction, error) {
	txType, err := core.FromCode(r.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	tx := core.Transaction{
		Description:     r.Description,
		Amount:          r.Amount,
		Type:            txType,
		DueDate:         r.DueDate,
		EffectiveDate:   r.EffectiveDate,
		EffectiveAmount: r.EffectiveAmount,
		AccountID:       r.AccountID,
		CategoryID:      r.CategoryID,
		UserID:          userID,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (r AccountRequest) toEntity(userID string) (core.Account, error) {
	a := core.Account{
		Description: r.Description,
		Balance:     r.Balance,
		Credit:      r.Credit,
		DueDate:     r.DueDate,
		UserID:      userID,
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	return a, nil
}

func (r CategoryRequest) toEntity(userID string) (core.Category, error) {
	catType, err := core.FromCode(r.Type)
	if err != nil {
		return core.Category{}, err
	}
	c := core.Category{
		Category: r.Category,
		Type:     catType,
		Color:    r.Color,
		UserID:   userID,
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func accountToResponse(a core.Account) AccountResponse {
	return AccountResponse{
		ID:          a.ID,
		Description: a.Description,
		Balance:     a.Balance,
		Credit:      a.Credit,
		DueDate:     a.DueDate,
	}
}

func categoryToResponse(c core.Category) CategoryResponse {
	return CategoryResponse{
		ID:       c.ID,
		Category: c.Category,
		Type:     int(c.Type),
		Color:    c.Color,
	}
}
