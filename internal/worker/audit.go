// Package worker drains the ledger event queue into the audit trail.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"simplewallet/internal/amqp"
	"simplewallet/internal/storage"
)

// AuditWorker records every consumed ledger event as an audit entry.
// The API never blocks on this: events flow through the broker and are
// persisted here asynchronously.
type AuditWorker struct {
	repo *storage.Repository
}

func NewAuditWorker(repo *storage.Repository) *AuditWorker {
	return &AuditWorker{repo: repo}
}

// HandleTransactionEvent processes a single ledger event from AMQP.
func (w *AuditWorker) HandleTransactionEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	entry, err := w.repo.InsertAuditEntry(ctx, storage.AuditEntry{
		Action:        string(msg.Action),
		TransactionID: msg.ID,
		UserID:        msg.UserID,
		Occurred:      msg.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}

	slog.InfoContext(ctx, "Recorded transaction event",
		"audit_id", entry.ID,
		"action", entry.Action,
		"transaction_id", entry.TransactionID)
	return nil
}
