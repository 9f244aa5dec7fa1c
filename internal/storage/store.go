// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrNotFound is returned when a ledger, member or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a unique key is taken (member name, user email).
	ErrAlreadyExists = errors.New("already exists")
)

// Snapshot is an immutable, consistent read of one ledger's full record log.
type Snapshot struct {
	Ledger     *models.Ledger
	Members    []models.Member
	Purchases  []models.Purchase
	Repayments []models.Repayment
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Records are append-only: there are no update or delete operations for
// members, purchases or repayments. Every append bumps the ledger version.
type Store interface {
	// CreateLedger persists a new ledger and its initial members in one
	// transaction. ID and CreatedAt are filled in when empty.
	CreateLedger(ctx context.Context, ledger *models.Ledger, members ...string) error

	// GetLedger retrieves a ledger by ID.
	// Returns an error wrapping ErrNotFound if the ledger does not exist.
	GetLedger(ctx context.Context, ledgerID string) (*models.Ledger, error)

	// ListLedgers retrieves all ledgers, newest first.
	ListLedgers(ctx context.Context) ([]*models.Ledger, error)

	// AddMember adds a member to a ledger.
	// Returns an error wrapping ErrAlreadyExists if the name is taken.
	AddMember(ctx context.Context, member *models.Member) error

	// ListMembers returns the ledger's members in the order they joined.
	ListMembers(ctx context.Context, ledgerID string) ([]models.Member, error)

	// CreatePurchase appends a purchase. ID and Timestamp are filled in when empty.
	CreatePurchase(ctx context.Context, purchase *models.Purchase) error

	// ListPurchases returns the ledger's purchases in insertion order.
	ListPurchases(ctx context.Context, ledgerID string) ([]models.Purchase, error)

	// CreateRepayment appends a repayment. ID and Timestamp are filled in when empty.
	CreateRepayment(ctx context.Context, repayment *models.Repayment) error

	// ListRepayments returns the ledger's repayments in insertion order.
	ListRepayments(ctx context.Context, ledgerID string) ([]models.Repayment, error)

	// Snapshot reads the ledger and all its records in one transaction.
	Snapshot(ctx context.Context, ledgerID string) (*Snapshot, error)

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists login accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
