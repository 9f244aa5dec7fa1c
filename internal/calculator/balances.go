package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// MemberBalance represents the balance information for one ledger member.
type MemberBalance struct {
	MemberName string
	NetBalance decimal.Decimal // Positive = owed money, Negative = owes money
	TotalPaid  decimal.Decimal // Purchases fronted plus repayments sent
	TotalOwed  decimal.Decimal // Purchase shares plus repayments received
}

// Settled reports whether the balance is within Epsilon of zero.
func (b MemberBalance) Settled() bool {
	return b.NetBalance.Abs().LessThanOrEqual(Epsilon)
}

// BalanceSheet holds every member's balance in member-list order.
type BalanceSheet struct {
	Members []MemberBalance
	Report  Report

	index map[string]int
}

// Balance returns the net balance of the named member.
func (s *BalanceSheet) Balance(name string) (decimal.Decimal, bool) {
	i, ok := s.index[name]
	if !ok {
		return decimal.Zero, false
	}
	return s.Members[i].NetBalance, true
}

// Map returns the balances as a name to net balance mapping.
func (s *BalanceSheet) Map() map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(s.Members))
	for _, b := range s.Members {
		m[b.MemberName] = b.NetBalance
	}
	return m
}

// Sum adds up all net balances. It is zero, up to split rounding, for any valid ledger.
func (s *BalanceSheet) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, b := range s.Members {
		total = total.Add(b.NetBalance)
	}
	return total
}

// NonZero returns the balances that are not settled, in member-list order.
func (s *BalanceSheet) NonZero() []MemberBalance {
	var out []MemberBalance
	for _, b := range s.Members {
		if !b.Settled() {
			out = append(out, b)
		}
	}
	return out
}

// ComputeBalances folds every purchase and repayment into a net balance per member.
//
// Sign convention: a positive balance means the member is owed money.
//   - Purchase: the purchaser paid the full amount, each share member owes their share
//   - Repayment: the payer's balance improves, the receiver's balance decreases
//
// Every member appears in the result, also without any activity. Invalid records
// are skipped and counted in the report; a record naming an unknown member
// fails with ErrUnknownMember.
func ComputeBalances(members []models.Member, purchases []models.Purchase, repayments []models.Repayment) (*BalanceSheet, error) {
	l, err := newLedger(members, purchases, repayments)
	if err != nil {
		return nil, err
	}
	return l.balances(), nil
}

func (l *ledger) balances() *BalanceSheet {
	sheet := &BalanceSheet{
		Members: make([]MemberBalance, len(l.order)),
		Report:  l.report,
		index:   make(map[string]int, len(l.order)),
	}
	for i, name := range l.order {
		sheet.Members[i] = MemberBalance{
			MemberName: name,
			NetBalance: decimal.Zero,
			TotalPaid:  decimal.Zero,
			TotalOwed:  decimal.Zero,
		}
		sheet.index[name] = i
	}

	paid := func(name string, amount decimal.Decimal) {
		b := &sheet.Members[sheet.index[name]]
		b.TotalPaid = b.TotalPaid.Add(amount)
	}
	owed := func(name string, amount decimal.Decimal) {
		b := &sheet.Members[sheet.index[name]]
		b.TotalOwed = b.TotalOwed.Add(amount)
	}

	for _, p := range l.purchases {
		paid(p.Purchaser, p.Amount)
		for _, s := range p.Split {
			owed(s.Member, s.Amount)
		}
	}
	for _, r := range l.repayments {
		paid(r.Payer, r.Amount)
		owed(r.Receiver, r.Amount)
	}

	for i := range sheet.Members {
		b := &sheet.Members[i]
		b.NetBalance = b.TotalPaid.Sub(b.TotalOwed)
	}
	return sheet
}
