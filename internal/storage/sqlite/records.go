package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

// CreatePurchase appends a purchase and its split to the ledger.
func (s *SQLiteStore) CreatePurchase(ctx context.Context, purchase *models.Purchase) error {
	// Generate ID if not set
	if purchase.ID == "" {
		purchase.ID = uuid.New().String()
	}
	if purchase.Timestamp.IsZero() {
		purchase.Timestamp = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	seq, err := bumpVersion(ctx, tx, purchase.LedgerID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO purchases (id, ledger_id, seq, name, amount, purchaser, timestamp, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		purchase.ID, purchase.LedgerID, seq, purchase.Name, purchase.Amount.String(),
		purchase.Purchaser, purchase.Timestamp.UnixNano(), purchase.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert purchase: %w", err)
	}

	// Insert split shares, keeping their order
	for i, share := range purchase.Split {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO purchase_shares (purchase_id, position, member, amount) VALUES (?, ?, ?, ?)",
			purchase.ID, i, share.Member, share.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert purchase share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListPurchases returns the ledger's purchases in insertion order.
func (s *SQLiteStore) ListPurchases(ctx context.Context, ledgerID string) ([]models.Purchase, error) {
	return listPurchases(ctx, s.db, ledgerID)
}

func listPurchases(ctx context.Context, q querier, ledgerID string) ([]models.Purchase, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, ledger_id, name, amount, purchaser, timestamp, created_by
		 FROM purchases WHERE ledger_id = ? ORDER BY seq`,
		ledgerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	purchases := []models.Purchase{}
	index := make(map[string]int)
	for rows.Next() {
		var p models.Purchase
		var ts int64
		if err := rows.Scan(&p.ID, &p.LedgerID, &p.Name, &p.Amount, &p.Purchaser, &ts, &p.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		p.Timestamp = time.Unix(0, ts).UTC()
		index[p.ID] = len(purchases)
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate purchases: %w", err)
	}

	// Load all shares of the ledger in one pass
	shareRows, err := q.QueryContext(ctx,
		`SELECT s.purchase_id, s.member, s.amount
		 FROM purchase_shares s JOIN purchases p ON p.id = s.purchase_id
		 WHERE p.ledger_id = ? ORDER BY p.seq, s.position`,
		ledgerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase shares: %w", err)
	}
	defer shareRows.Close()

	for shareRows.Next() {
		var purchaseID string
		var share models.Share
		if err := shareRows.Scan(&purchaseID, &share.Member, &share.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan purchase share: %w", err)
		}
		i, ok := index[purchaseID]
		if !ok {
			continue
		}
		purchases[i].Split = append(purchases[i].Split, share)
	}
	if err := shareRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate purchase shares: %w", err)
	}

	return purchases, nil
}

// CreateRepayment appends a repayment to the ledger.
func (s *SQLiteStore) CreateRepayment(ctx context.Context, repayment *models.Repayment) error {
	// Generate ID if not set
	if repayment.ID == "" {
		repayment.ID = uuid.New().String()
	}
	if repayment.Timestamp.IsZero() {
		repayment.Timestamp = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	seq, err := bumpVersion(ctx, tx, repayment.LedgerID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO repayments (id, ledger_id, seq, payer, receiver, amount, timestamp, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		repayment.ID, repayment.LedgerID, seq, repayment.Payer, repayment.Receiver,
		repayment.Amount.String(), repayment.Timestamp.UnixNano(), repayment.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert repayment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListRepayments returns the ledger's repayments in insertion order.
func (s *SQLiteStore) ListRepayments(ctx context.Context, ledgerID string) ([]models.Repayment, error) {
	return listRepayments(ctx, s.db, ledgerID)
}

func listRepayments(ctx context.Context, q querier, ledgerID string) ([]models.Repayment, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, ledger_id, payer, receiver, amount, timestamp, created_by
		 FROM repayments WHERE ledger_id = ? ORDER BY seq`,
		ledgerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list repayments: %w", err)
	}
	defer rows.Close()

	repayments := []models.Repayment{}
	for rows.Next() {
		var r models.Repayment
		var ts int64
		if err := rows.Scan(&r.ID, &r.LedgerID, &r.Payer, &r.Receiver, &r.Amount, &ts, &r.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan repayment: %w", err)
		}
		r.Timestamp = time.Unix(0, ts).UTC()
		repayments = append(repayments, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate repayments: %w", err)
	}

	return repayments, nil
}
