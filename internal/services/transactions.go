package services

import (
	"context"
	"fmt"
	"log/slog"

	"simplewallet/internal/amqp"
	"simplewallet/internal/core"
	"simplewallet/internal/storage"
)

// TransactionService owns the transaction lifecycle: guarded writes,
// owner-scoped reads, effectuation, installment generation.
type TransactionService struct {
	repo   *storage.Repository
	events *amqp.Client
}

// NewTransactionService wires the service. The events client may be nil,
// in which case no messages are published.
func NewTransactionService(repo *storage.Repository, events *amqp.Client) *TransactionService {
	return &TransactionService{repo: repo, events: events}
}

// Create validates and persists a new transaction for userID. Both the
// account and the category reference must be owned by userID.
func (s *TransactionService) Create(ctx context.Context, req TransactionRequest, userID string) (*TransactionResponse, error) {
	if err := guardReferences(ctx, s.repo, req.AccountID, req.CategoryID, userID); err != nil {
		return nil, err
	}
	tx, err := req.toEntity(userID)
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.CreateTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.publishEvent(ctx, amqp.ActionCreated, saved.ID, userID)

	resp, err := s.toResponse(ctx, saved)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// FindByID returns the transaction only when it is owned by userID.
// A foreign row and a missing row are both (nil, nil): reads never leak
// the existence of other users' records.
func (s *TransactionService) FindByID(ctx context.Context, id int64, userID string) (*TransactionResponse, error) {
	tx, err := s.ownedTransaction(ctx, id, userID)
	if err != nil || tx == nil {
		return nil, err
	}
	resp, err := s.toResponse(ctx, *tx)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns one page of the user's own transactions.
func (s *TransactionService) List(ctx context.Context, userID string, page storage.PageRequest) (*TransactionPageResponse, error) {
	return s.listScoped(ctx, []string{userID}, page)
}

// ListFamily returns one page of transactions across the user and its
// direct dependents.
func (s *TransactionService) ListFamily(ctx context.Context, userID string, page storage.PageRequest) (*TransactionPageResponse, error) {
	scope, err := resolveScopeIDs(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	return s.listScoped(ctx, scope, page)
}

func (s *TransactionService) listScoped(ctx context.Context, userIDs []string, page storage.PageRequest) (*TransactionPageResponse, error) {
	result, err := s.repo.ListTransactionsPaged(ctx, userIDs, page)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	resp := TransactionPageResponse{
		Items:         make([]TransactionResponse, 0, len(result.Items)),
		TotalElements: result.TotalElements,
		TotalPages:    result.TotalPages,
		Page:          result.Page,
		Size:          result.Size,
	}
	for _, tx := range result.Items {
		item, err := s.toResponse(ctx, tx)
		if err != nil {
			return nil, err
		}
		resp.Items = append(resp.Items, item)
	}
	return &resp, nil
}

// Update re-guards the new references, then overwrites the full mutable
// field set. There is no partial update: every call replaces
// description, amount, type, dates and references together.
func (s *TransactionService) Update(ctx context.Context, id int64, req TransactionRequest, userID string) (*TransactionResponse, error) {
	if err := guardReferences(ctx, s.repo, req.AccountID, req.CategoryID, userID); err != nil {
		return nil, err
	}
	existing, err := s.ownedTransaction(ctx, id, userID)
	if err != nil || existing == nil {
		return nil, err
	}
	replacement, err := req.toEntity(userID)
	if err != nil {
		return nil, err
	}
	replacement.ID = existing.ID
	replacement.Created = existing.Created
	if err := s.repo.UpdateTransaction(ctx, replacement); err != nil {
		return nil, fmt.Errorf("update transaction %d: %w", id, err)
	}
	return s.FindByID(ctx, id, userID)
}

// Effective records the realized date and amount of a planned
// transaction. Re-invoking it overwrites the previous values; nothing
// ties the effective amount to the planned one.
func (s *TransactionService) Effective(ctx context.Context, id int64, req EffectivationRequest, userID string) (*TransactionResponse, error) {
	if err := req.EffectiveDate.Validate(); err != nil {
		return nil, fmt.Errorf("effective date: %w", err)
	}
	tx, err := s.ownedTransaction(ctx, id, userID)
	if err != nil || tx == nil {
		return nil, err
	}
	tx.EffectiveDate = &req.EffectiveDate
	amount := req.EffectiveAmount
	tx.EffectiveAmount = &amount
	if err := s.repo.UpdateTransaction(ctx, *tx); err != nil {
		return nil, fmt.Errorf("effectuate transaction %d: %w", id, err)
	}

	s.publishEvent(ctx, amqp.ActionEffectuated, id, userID)

	return s.FindByID(ctx, id, userID)
}

// Delete removes an owned transaction. The boolean reports whether a
// row was actually removed; absence is not an error.
func (s *TransactionService) Delete(ctx context.Context, id int64, userID string) (bool, error) {
	tx, err := s.ownedTransaction(ctx, id, userID)
	if err != nil || tx == nil {
		return false, err
	}
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return false, fmt.Errorf("delete transaction %d: %w", id, err)
	}

	s.publishEvent(ctx, amqp.ActionDeleted, id, userID)

	return true, nil
}

// Installments generates count monthly transactions from the template:
// instance i is due template.DueDate + i calendar months (day clamped to
// the target month) and its description carries the "i of count" ordinal.
// Each instance goes through Create, so each one re-runs the ownership
// guard and persists on its own; a failure midway leaves the earlier
// instances in place.
//
// count <= 0 yields an empty sequence.
func (s *TransactionService) Installments(ctx context.Context, template TransactionRequest, count int, userID string, correlationID int64) ([]TransactionResponse, error) {
	installments := make([]TransactionResponse, 0, max(count, 0))
	for i := 0; i < count; i++ {
		req := template
		req.DueDate = template.DueDate.AddMonths(i)
		if correlationID != 0 {
			req.Description = fmt.Sprintf("%s ID: %d - %d of %d", template.Description, correlationID, i+1, count)
		} else {
			req.Description = fmt.Sprintf("%s - %d of %d", template.Description, i+1, count)
		}

		created, err := s.Create(ctx, req, userID)
		if err != nil {
			return installments, fmt.Errorf("installment %d of %d: %w", i+1, count, err)
		}
		installments = append(installments, *created)
	}
	return installments, nil
}

// CreateBatch creates an installment series directly from a request
// carrying its own repetition count.
func (s *TransactionService) CreateBatch(ctx context.Context, req BatchTransactionRequest, userID string) ([]TransactionResponse, error) {
	if err := guardReferences(ctx, s.repo, req.AccountID, req.CategoryID, userID); err != nil {
		return nil, err
	}
	return s.Installments(ctx, req.TransactionRequest, req.QtdeInstallments, userID, 0)
}

// ownedTransaction returns the row only when it exists and belongs to
// userID; otherwise (nil, nil).
func (s *TransactionService) ownedTransaction(ctx context.Context, id int64, userID string) (*core.Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find transaction %d: %w", id, err)
	}
	if tx == nil || tx.UserID != userID {
		return nil, nil
	}
	return tx, nil
}

// toResponse resolves the denormalized display fields (account
// description, category label, username) for the client.
func (s *TransactionService) toResponse(ctx context.Context, tx core.Transaction) (TransactionResponse, error) {
	resp := TransactionResponse{
		ID:              tx.ID,
		Description:     tx.Description,
		Amount:          tx.Amount,
		Type:            int(tx.Type),
		DueDate:         tx.DueDate,
		EffectiveDate:   tx.EffectiveDate,
		EffectiveAmount: tx.EffectiveAmount,
		AccountID:       tx.AccountID,
		CategoryID:      tx.CategoryID,
	}
	account, err := s.repo.GetAccount(ctx, tx.AccountID)
	if err != nil {
		return resp, fmt.Errorf("resolve account name: %w", err)
	}
	if account != nil {
		resp.Account = account.Description
	}
	category, err := s.repo.GetCategory(ctx, tx.CategoryID)
	if err != nil {
		return resp, fmt.Errorf("resolve category name: %w", err)
	}
	if category != nil {
		resp.Category = category.Category
	}
	user, err := s.repo.GetUser(ctx, tx.UserID)
	if err != nil {
		return resp, fmt.Errorf("resolve username: %w", err)
	}
	if user != nil {
		resp.Username = user.Username
	}
	return resp, nil
}

// publishEvent emits a ledger event when an events client is configured.
// Failures are logged, never propagated: the write already happened.
func (s *TransactionService) publishEvent(ctx context.Context, action amqp.Action, id int64, userID string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionEvent(ctx, action, id, userID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"action", string(action), "id", id, "error", err)
	}
}
