package calculator

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Epsilon is the tolerance below which a balance counts as settled.
// It absorbs the sub-cent remainders left by fractional splits.
var Epsilon = decimal.New(1, -2)

var (
	// ErrUnknownMember is returned when a record names someone who is not a ledger member.
	ErrUnknownMember = errors.New("unknown member")
	// ErrDuplicateMember is returned when the member list repeats a name.
	ErrDuplicateMember = errors.New("duplicate member")
	// ErrInvalidRecord marks a purchase or repayment that breaks a record invariant.
	ErrInvalidRecord = errors.New("invalid record")
)

// Report counts the records that were skipped because they failed validation.
type Report struct {
	SkippedPurchases  int
	SkippedRepayments int
}

// Skipped returns the total number of ignored records.
func (r Report) Skipped() int {
	return r.SkippedPurchases + r.SkippedRepayments
}

// ValidatePurchase checks the invariants of a single purchase.
// It does not check that the referenced members exist.
func ValidatePurchase(p models.Purchase) error {
	if p.Purchaser == "" {
		return fmt.Errorf("%w: purchase %q has no purchaser", ErrInvalidRecord, p.Name)
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: purchase %q amount must be positive, got %s", ErrInvalidRecord, p.Name, p.Amount)
	}
	if len(p.Split) == 0 {
		return fmt.Errorf("%w: purchase %q has an empty split", ErrInvalidRecord, p.Name)
	}
	for _, s := range p.Split {
		if s.Member == "" {
			return fmt.Errorf("%w: purchase %q has a share without a member", ErrInvalidRecord, p.Name)
		}
		if !s.Amount.IsPositive() {
			return fmt.Errorf("%w: purchase %q share for %q must be positive, got %s", ErrInvalidRecord, p.Name, s.Member, s.Amount)
		}
	}
	diff := p.Amount.Sub(p.SplitTotal())
	if diff.Abs().GreaterThan(Epsilon) {
		return fmt.Errorf("%w: purchase %q split sums to %s, want %s", ErrInvalidRecord, p.Name, p.SplitTotal(), p.Amount)
	}
	if largest := p.Split[largestShare(p.Split)]; !largest.Amount.Add(diff).IsPositive() {
		return fmt.Errorf("%w: purchase %q split cannot absorb a difference of %s", ErrInvalidRecord, p.Name, diff)
	}
	if p.Timestamp.IsZero() {
		return fmt.Errorf("%w: purchase %q has no timestamp", ErrInvalidRecord, p.Name)
	}
	return nil
}

// BalanceSplit returns the split of a valid purchase adjusted to sum to
// exactly its amount. A difference within Epsilon goes to the largest share,
// the first one on ties. The purchase itself is not modified.
func BalanceSplit(p models.Purchase) []models.Share {
	split := slices.Clone(p.Split)
	diff := p.Amount.Sub(p.SplitTotal())
	if diff.IsZero() || len(split) == 0 {
		return split
	}
	i := largestShare(split)
	split[i].Amount = split[i].Amount.Add(diff)
	return split
}

func largestShare(split []models.Share) int {
	largest := 0
	for i, s := range split {
		if s.Amount.GreaterThan(split[largest].Amount) {
			largest = i
		}
	}
	return largest
}

// ValidateRepayment checks the invariants of a single repayment.
// It does not check that the referenced members exist.
func ValidateRepayment(r models.Repayment) error {
	if r.Payer == "" || r.Receiver == "" {
		return fmt.Errorf("%w: repayment needs both payer and receiver", ErrInvalidRecord)
	}
	if r.Payer == r.Receiver {
		return fmt.Errorf("%w: %q cannot repay themselves", ErrInvalidRecord, r.Payer)
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("%w: repayment amount must be positive, got %s", ErrInvalidRecord, r.Amount)
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("%w: repayment from %q to %q has no timestamp", ErrInvalidRecord, r.Payer, r.Receiver)
	}
	return nil
}

// ledger is a validated snapshot: invalid records are dropped and counted,
// every remaining reference points at a known member.
type ledger struct {
	order      []string
	known      map[string]bool
	purchases  []models.Purchase
	repayments []models.Repayment
	report     Report
}

func newLedger(members []models.Member, purchases []models.Purchase, repayments []models.Repayment) (*ledger, error) {
	l := &ledger{
		order: make([]string, 0, len(members)),
		known: make(map[string]bool, len(members)),
	}
	for _, m := range members {
		if l.known[m.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateMember, m.Name)
		}
		l.known[m.Name] = true
		l.order = append(l.order, m.Name)
	}

	for _, p := range purchases {
		if ValidatePurchase(p) != nil {
			l.report.SkippedPurchases++
			continue
		}
		if !l.known[p.Purchaser] {
			return nil, fmt.Errorf("%w: %q paid for purchase %q", ErrUnknownMember, p.Purchaser, p.Name)
		}
		for _, s := range p.Split {
			if !l.known[s.Member] {
				return nil, fmt.Errorf("%w: %q has a share of purchase %q", ErrUnknownMember, s.Member, p.Name)
			}
		}
		// Hand-written snapshot splits may be a cent off the amount
		p.Split = BalanceSplit(p)
		l.purchases = append(l.purchases, p)
	}

	for _, r := range repayments {
		if ValidateRepayment(r) != nil {
			l.report.SkippedRepayments++
			continue
		}
		if !l.known[r.Payer] {
			return nil, fmt.Errorf("%w: %q made a repayment", ErrUnknownMember, r.Payer)
		}
		if !l.known[r.Receiver] {
			return nil, fmt.Errorf("%w: %q received a repayment", ErrUnknownMember, r.Receiver)
		}
		l.repayments = append(l.repayments, r)
	}

	return l, nil
}
