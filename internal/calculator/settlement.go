package calculator

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Transaction is a suggested payment: From pays Amount to To.
type Transaction struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

// Settlement is a payment plan that brings every balance within Epsilon of zero.
type Settlement struct {
	// Transactions in generation order, largest debtor against largest creditor first.
	Transactions      []Transaction
	TotalTransactions int

	// Balances before settling, for every member in member-list order.
	Balances []MemberBalance

	Report Report
}

// Settled reports whether nobody needs to pay anybody.
func (s *Settlement) Settled() bool {
	return len(s.Transactions) == 0
}

// Summary returns a human-readable step count.
func (s *Settlement) Summary() string {
	switch s.TotalTransactions {
	case 0:
		return "All settled up"
	case 1:
		return "1 payment settles all balances"
	default:
		return fmt.Sprintf("%d payments settle all balances", s.TotalTransactions)
	}
}

// NonZeroBalances returns the balances that still need settling.
func (s *Settlement) NonZeroBalances() []MemberBalance {
	var out []MemberBalance
	for _, b := range s.Balances {
		if !b.Settled() {
			out = append(out, b)
		}
	}
	return out
}

// ComputeSettlement computes balances and a payment plan that clears them.
func ComputeSettlement(members []models.Member, purchases []models.Purchase, repayments []models.Repayment) (*Settlement, error) {
	sheet, err := ComputeBalances(members, purchases, repayments)
	if err != nil {
		return nil, err
	}
	return Settle(sheet), nil
}

type party struct {
	name   string
	amount decimal.Decimal
}

// Settle matches debtors with creditors greedily.
//
// Algorithm:
//   - creditors have a balance above +Epsilon, debtors below -Epsilon (kept as a positive amount)
//   - both lists are sorted descending by amount; ties keep member-list order
//   - the largest debtor pays the largest creditor min(debt, credit)
//   - a side moves on once its remainder drops below Epsilon
//
// The sweep always terminates, conserves the total debt and emits at most
// one transaction fewer than there are unsettled members. It is a heuristic:
// the transaction count is not guaranteed to be minimal.
func Settle(sheet *BalanceSheet) *Settlement {
	var creditors, debtors []party
	for _, b := range sheet.Members {
		switch {
		case b.NetBalance.GreaterThan(Epsilon):
			creditors = append(creditors, party{name: b.MemberName, amount: b.NetBalance})
		case b.NetBalance.LessThan(Epsilon.Neg()):
			debtors = append(debtors, party{name: b.MemberName, amount: b.NetBalance.Neg()})
		}
	}

	byAmountDesc := func(a, b party) int { return b.amount.Cmp(a.amount) }
	slices.SortStableFunc(creditors, byAmountDesc)
	slices.SortStableFunc(debtors, byAmountDesc)

	transactions := []Transaction{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := decimal.Min(debtor.amount, creditor.amount)
		transactions = append(transactions, Transaction{
			From:   debtor.name,
			To:     creditor.name,
			Amount: amount,
		})

		debtor.amount = debtor.amount.Sub(amount)
		creditor.amount = creditor.amount.Sub(amount)

		if debtor.amount.LessThan(Epsilon) {
			i++
		}
		if creditor.amount.LessThan(Epsilon) {
			j++
		}
	}

	return &Settlement{
		Transactions:      transactions,
		TotalTransactions: len(transactions),
		Balances:          slices.Clone(sheet.Members),
		Report:            sheet.Report,
	}
}

// Apply adds each transaction to the balances it settles and returns the result.
// Applying a full settlement leaves every balance within Epsilon of zero.
func Apply(balances map[string]decimal.Decimal, transactions []Transaction) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(balances))
	for name, b := range balances {
		out[name] = b
	}
	for _, t := range transactions {
		out[t.From] = out[t.From].Add(t.Amount)
		out[t.To] = out[t.To].Sub(t.Amount)
	}
	return out
}
