package services

import (
	"context"
	"fmt"
)

// LoanService composes a loan out of plain transactions: one immediate
// credit for the money received plus a monthly debit series for the
// repayment. No loan row exists on its own; the pieces are regular
// ledger entries tied together by the credit's id in the installment
// descriptions.
type LoanService struct {
	tx *TransactionService
}

func NewLoanService(tx *TransactionService) *LoanService {
	return &LoanService{tx: tx}
}

// CreateLoan books the disbursement first, then generates the
// repayment installments correlated to it. The two steps are not
// atomic: if the series fails midway, the disbursement and the earlier
// installments stay persisted.
func (s *LoanService) CreateLoan(ctx context.Context, req LoanRequest, userID string) (*LoanResponse, error) {
	amount := req.Amount
	disbursement := TransactionRequest{
		Description:     req.Description,
		Amount:          req.Amount,
		Type:            req.Type,
		DueDate:         req.DueDate,
		EffectiveDate:   req.EffectiveDate,
		EffectiveAmount: &amount,
		AccountID:       req.AccountID,
		CategoryID:      req.CategoryID,
	}
	credit, err := s.tx.Create(ctx, disbursement, userID)
	if err != nil {
		return nil, fmt.Errorf("loan disbursement: %w", err)
	}

	installmentAmount := req.AmountLoan
	template := TransactionRequest{
		Description:     req.DescriptionLoan,
		Amount:          req.AmountLoan,
		Type:            req.TypeLoan,
		DueDate:         req.DueDateLoan,
		EffectiveAmount: &installmentAmount,
		AccountID:       req.AccountIDLoan,
		CategoryID:      req.CategoryIDLoan,
	}
	series, err := s.tx.Installments(ctx, template, req.QtdeInstallments, userID, credit.ID)
	if err != nil {
		return nil, fmt.Errorf("loan installments: %w", err)
	}

	resp := LoanResponse{
		ID:              credit.ID,
		Description:     credit.Description,
		Amount:          credit.Amount,
		Type:            credit.Type,
		DueDate:         credit.DueDate,
		EffectiveDate:   credit.EffectiveDate,
		EffectiveAmount: credit.EffectiveAmount,
		AccountID:       credit.AccountID,
		Account:         credit.Account,
		CategoryID:      credit.CategoryID,
		Category:        credit.Category,
		UserID:          userID,
		Username:        credit.Username,
		Installments:    make([]InstallmentResponse, 0, len(series)),
	}
	for _, inst := range series {
		resp.Installments = append(resp.Installments, InstallmentResponse{
			DueDate: inst.DueDate,
			Amount:  inst.Amount,
		})
	}
	return &resp, nil
}
