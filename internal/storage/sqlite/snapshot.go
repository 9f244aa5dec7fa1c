package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/splitledger/internal/storage"
)

// Snapshot reads a ledger and its full record log inside one transaction,
// so the three collections always agree with the ledger version.
func (s *SQLiteStore) Snapshot(ctx context.Context, ledgerID string) (*storage.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ledger, err := getLedger(ctx, tx, ledgerID)
	if err != nil {
		return nil, err
	}
	members, err := listMembers(ctx, tx, ledgerID)
	if err != nil {
		return nil, err
	}
	purchases, err := listPurchases(ctx, tx, ledgerID)
	if err != nil {
		return nil, err
	}
	repayments, err := listRepayments(ctx, tx, ledgerID)
	if err != nil {
		return nil, err
	}

	return &storage.Snapshot{
		Ledger:     ledger,
		Members:    members,
		Purchases:  purchases,
		Repayments: repayments,
	}, nil
}
