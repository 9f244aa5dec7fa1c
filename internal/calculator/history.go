package calculator

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// EntryKind classifies a history entry.
type EntryKind string

const (
	KindPurchasePaid      EntryKind = "purchase_paid"
	KindPurchaseShare     EntryKind = "purchase_share"
	KindRepaymentSent     EntryKind = "repayment_sent"
	KindRepaymentReceived EntryKind = "repayment_received"
)

// SortOrder is the presentation order of a history.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// HistoryEntry is one line of a member's transaction log.
// Amount uses the balance sign convention: positive moves the member towards being owed.
type HistoryEntry struct {
	Date           time.Time
	Kind           EntryKind
	Description    string
	Amount         decimal.Decimal
	RunningBalance decimal.Decimal

	// RecordID is the ID of the purchase or repayment that produced the entry.
	RecordID string
}

// MemberHistory lists every purchase and repayment that touched the member,
// oldest first, with a running balance. The last running balance equals the
// member's net balance from ComputeBalances.
//
// Equal timestamps keep input order: purchases before repayments, and within a
// purchase the paid entry before the share entry. With Descending the list is
// reversed for display; running balances are always accumulated oldest first.
func MemberHistory(name string, members []models.Member, purchases []models.Purchase, repayments []models.Repayment, order SortOrder) ([]HistoryEntry, error) {
	l, err := newLedger(members, purchases, repayments)
	if err != nil {
		return nil, err
	}
	if !l.known[name] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMember, name)
	}

	entries := []HistoryEntry{}
	for _, p := range l.purchases {
		if p.Purchaser == name {
			entries = append(entries, HistoryEntry{
				Date:        p.Timestamp,
				Kind:        KindPurchasePaid,
				Description: fmt.Sprintf("Paid for %s", p.Name),
				Amount:      p.Amount,
				RecordID:    p.ID,
			})
		}
		share := decimal.Zero
		inSplit := false
		for _, s := range p.Split {
			if s.Member == name {
				share = share.Add(s.Amount)
				inSplit = true
			}
		}
		if inSplit {
			entries = append(entries, HistoryEntry{
				Date:        p.Timestamp,
				Kind:        KindPurchaseShare,
				Description: fmt.Sprintf("Share of %s (paid by %s)", p.Name, p.Purchaser),
				Amount:      share.Neg(),
				RecordID:    p.ID,
			})
		}
	}

	for _, r := range l.repayments {
		switch name {
		case r.Payer:
			entries = append(entries, HistoryEntry{
				Date:        r.Timestamp,
				Kind:        KindRepaymentSent,
				Description: fmt.Sprintf("Repaid %s", r.Receiver),
				Amount:      r.Amount,
				RecordID:    r.ID,
			})
		case r.Receiver:
			entries = append(entries, HistoryEntry{
				Date:        r.Timestamp,
				Kind:        KindRepaymentReceived,
				Description: fmt.Sprintf("Received from %s", r.Payer),
				Amount:      r.Amount.Neg(),
				RecordID:    r.ID,
			})
		}
	}

	slices.SortStableFunc(entries, func(a, b HistoryEntry) int {
		return a.Date.Compare(b.Date)
	})

	running := decimal.Zero
	for i := range entries {
		running = running.Add(entries[i].Amount)
		entries[i].RunningBalance = running
	}

	if order == Descending {
		slices.Reverse(entries)
	}
	return entries, nil
}
