package storage

import (
	"context"
	"fmt"
	"time"
)

// AuditEntry is one recorded ledger event. The audit worker writes
// these as it drains the event queue.
type AuditEntry struct {
	ID            int64
	Action        string
	TransactionID int64
	UserID        string
	Occurred      time.Time
}

func (r *Repository) InsertAuditEntry(ctx context.Context, e AuditEntry) (AuditEntry, error) {
	if e.Occurred.IsZero() {
		e.Occurred = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tb_transaction_audit (action, transaction_id, user_id, occurred)
		 VALUES (?, ?, ?, ?)`,
		e.Action, e.TransactionID, e.UserID, e.Occurred.UTC().Format(timeLayout))
	if err != nil {
		return AuditEntry{}, fmt.Errorf("insert audit entry: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return AuditEntry{}, fmt.Errorf("audit entry id: %w", err)
	}
	return e, nil
}

// ListAuditEntries returns the audit trail of one transaction, oldest
// first.
func (r *Repository) ListAuditEntries(ctx context.Context, transactionID int64) ([]AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, action, transaction_id, user_id, occurred
		 FROM tb_transaction_audit WHERE transaction_id = ? ORDER BY id`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var (
			e        AuditEntry
			occurred string
		)
		if err := rows.Scan(&e.ID, &e.Action, &e.TransactionID, &e.UserID, &occurred); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if e.Occurred, err = parseTimestamp(occurred); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
