package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger is a shared-expense log (e.g. "Flat 4B", "Ski trip").
type Ledger struct {
	// ID is the unique identifier for the ledger (UUID format).
	ID string

	// Name is the display name of the ledger.
	Name string

	// Version increases by one on every appended member, purchase or repayment.
	// Derived results (settlements) are cached per version.
	Version int64

	// CreatedAt is the Unix timestamp when the ledger was created.
	CreatedAt int64
}

// Member is a named participant in a ledger.
// The name is the member's identity: it is unique within the ledger and
// referenced by purchases and repayments.
type Member struct {
	LedgerID string
	Name     string

	// CreatedAt is the Unix timestamp when the member joined.
	CreatedAt int64
}

// Share is one entry of a purchase split: Member owes Amount of the purchase.
type Share struct {
	Member string
	Amount decimal.Decimal
}

// Purchase is an expense paid in full by Purchaser and divided among Split.
// The split amounts sum to Amount.
type Purchase struct {
	// ID is the unique identifier for the purchase (UUID format).
	ID       string
	LedgerID string

	// Name describes what was bought (e.g. "Dinner").
	Name string

	// Amount is the full price paid by the purchaser.
	Amount decimal.Decimal

	// Purchaser is the name of the member who fronted the money.
	Purchaser string

	// Split lists who owes what. Order is preserved as entered.
	Split []Share

	// Timestamp is when the purchase happened. Required.
	Timestamp time.Time

	// CreatedBy is the user ID who recorded this purchase.
	CreatedBy string
}

// SplitTotal returns the sum of all share amounts.
func (p Purchase) SplitTotal() decimal.Decimal {
	total := decimal.Zero
	for _, s := range p.Split {
		total = total.Add(s.Amount)
	}
	return total
}

// Repayment is money handed directly from Payer to Receiver, outside of any purchase.
type Repayment struct {
	// ID is the unique identifier for the repayment (UUID format).
	ID       string
	LedgerID string

	// Payer is the member who handed over the money.
	Payer string

	// Receiver is the member who got the money.
	Receiver string

	Amount decimal.Decimal

	// Timestamp is when the repayment happened. Required.
	Timestamp time.Time

	// CreatedBy is the user ID who recorded this repayment.
	CreatedBy string
}
