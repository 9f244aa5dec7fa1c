package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateLedger persists a new ledger together with its initial members.
// Either the ledger and all members are stored, or nothing is.
func (s *SQLiteStore) CreateLedger(ctx context.Context, ledger *models.Ledger, members ...string) error {
	// Generate ID if not set
	if ledger.ID == "" {
		ledger.ID = uuid.New().String()
	}
	if ledger.CreatedAt == 0 {
		ledger.CreatedAt = time.Now().Unix()
	}
	if ledger.Name == "" {
		ledger.Name = fmt.Sprintf("Ledger - %s", time.Unix(ledger.CreatedAt, 0).Format("Jan 2, 2006"))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO ledgers (id, name, version, created_at) VALUES (?, ?, 0, ?)",
		ledger.ID, ledger.Name, ledger.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger: %w", err)
	}

	// Each member bumps the version, like AddMember
	var version int64
	for _, name := range members {
		member := &models.Member{LedgerID: ledger.ID, Name: name, CreatedAt: ledger.CreatedAt}
		if version, err = insertMember(ctx, tx, member); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	ledger.Version = version

	return nil
}

// GetLedger retrieves a ledger by ID.
func (s *SQLiteStore) GetLedger(ctx context.Context, ledgerID string) (*models.Ledger, error) {
	return getLedger(ctx, s.db, ledgerID)
}

func getLedger(ctx context.Context, q querier, ledgerID string) (*models.Ledger, error) {
	ledger := &models.Ledger{}
	err := q.QueryRowContext(ctx,
		"SELECT id, name, version, created_at FROM ledgers WHERE id = ?",
		ledgerID,
	).Scan(&ledger.ID, &ledger.Name, &ledger.Version, &ledger.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ledger %s: %w", ledgerID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	return ledger, nil
}

// ListLedgers retrieves all ledgers, newest first.
func (s *SQLiteStore) ListLedgers(ctx context.Context) ([]*models.Ledger, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, version, created_at FROM ledgers ORDER BY created_at DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	defer rows.Close()

	var ledgers []*models.Ledger
	for rows.Next() {
		ledger := &models.Ledger{}
		if err := rows.Scan(&ledger.ID, &ledger.Name, &ledger.Version, &ledger.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger: %w", err)
		}
		ledgers = append(ledgers, ledger)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledgers: %w", err)
	}

	return ledgers, nil
}

// AddMember adds a member to a ledger and bumps the ledger version.
func (s *SQLiteStore) AddMember(ctx context.Context, member *models.Member) error {
	if member.CreatedAt == 0 {
		member.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := insertMember(ctx, tx, member); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertMember appends member inside tx and returns the bumped ledger version.
func insertMember(ctx context.Context, tx *sql.Tx, member *models.Member) (int64, error) {
	position, err := bumpVersion(ctx, tx, member.LedgerID)
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO members (ledger_id, name, position, created_at) VALUES (?, ?, ?, ?)",
		member.LedgerID, member.Name, position, member.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("member %q: %w", member.Name, storage.ErrAlreadyExists)
		}
		return 0, fmt.Errorf("failed to insert member: %w", err)
	}
	return position, nil
}

// ListMembers returns the ledger's members in the order they joined.
func (s *SQLiteStore) ListMembers(ctx context.Context, ledgerID string) ([]models.Member, error) {
	return listMembers(ctx, s.db, ledgerID)
}

func listMembers(ctx context.Context, q querier, ledgerID string) ([]models.Member, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT ledger_id, name, created_at FROM members WHERE ledger_id = ? ORDER BY position",
		ledgerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.LedgerID, &m.Name, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// isUniqueViolation reports whether err is a SQLite primary key or unique constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
