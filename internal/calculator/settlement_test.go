package calculator

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

func TestComputeSettlement(t *testing.T) {
	tests := []struct {
		name        string
		members     []models.Member
		purchases   []models.Purchase
		repayments  []models.Repayment
		want        []Transaction
		wantSummary string
	}{
		{
			name:        "empty ledger is settled",
			want:        []Transaction{},
			wantSummary: "All settled up",
		},
		{
			name:    "dinner split three ways",
			members: members("Alice", "Bob", "Carol"),
			purchases: []models.Purchase{
				purchase("Dinner", "30", "Alice", t0, share("Alice", "10"), share("Bob", "10"), share("Carol", "10")),
			},
			// Bob and Carol tie; member-list order breaks the tie
			want: []Transaction{
				{From: "Bob", To: "Alice", Amount: dec("10")},
				{From: "Carol", To: "Alice", Amount: dec("10")},
			},
			wantSummary: "2 payments settle all balances",
		},
		{
			name:    "repaid debt needs no settlement",
			members: members("Alice", "Bob"),
			purchases: []models.Purchase{
				purchase("Taxi", "15", "Bob", t0, share("Alice", "15")),
			},
			repayments: []models.Repayment{
				repayment("Alice", "Bob", "15", t0.Add(time.Hour)),
			},
			want:        []Transaction{},
			wantSummary: "All settled up",
		},
		{
			name:    "largest debtor pays first",
			members: members("Alice", "Bob", "Carol"),
			purchases: []models.Purchase{
				purchase("Groceries", "30", "Alice", t0, share("Bob", "10"), share("Carol", "20")),
			},
			want: []Transaction{
				{From: "Carol", To: "Alice", Amount: dec("20")},
				{From: "Bob", To: "Alice", Amount: dec("10")},
			},
			wantSummary: "2 payments settle all balances",
		},
		{
			name:    "single debt",
			members: members("Alice", "Bob"),
			purchases: []models.Purchase{
				purchase("Coffee", "4.50", "Alice", t0, share("Bob", "4.50")),
			},
			want: []Transaction{
				{From: "Bob", To: "Alice", Amount: dec("4.50")},
			},
			wantSummary: "1 payment settles all balances",
		},
		{
			name:    "debtor split across two creditors",
			members: members("Alice", "Bob", "Carol"),
			purchases: []models.Purchase{
				purchase("Hotel", "60", "Alice", t0, share("Carol", "60")),
				purchase("Train", "40", "Bob", t0, share("Carol", "40")),
			},
			want: []Transaction{
				{From: "Carol", To: "Alice", Amount: dec("60")},
				{From: "Carol", To: "Bob", Amount: dec("40")},
			},
			wantSummary: "2 payments settle all balances",
		},
		{
			name:    "balances within a cent are ignored",
			members: members("Alice", "Bob"),
			purchases: []models.Purchase{
				purchase("Gum", "0.01", "Alice", t0, share("Bob", "0.01")),
			},
			want:        []Transaction{},
			wantSummary: "All settled up",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ComputeSettlement(tt.members, tt.purchases, tt.repayments)
			if err != nil {
				t.Fatalf("ComputeSettlement() error = %v", err)
			}
			if len(s.Transactions) != len(tt.want) {
				t.Fatalf("got %d transactions %v, want %d", len(s.Transactions), s.Transactions, len(tt.want))
			}
			for i, want := range tt.want {
				got := s.Transactions[i]
				if got.From != want.From || got.To != want.To || !got.Amount.Equal(want.Amount) {
					t.Errorf("transaction %d = %s->%s %s, want %s->%s %s",
						i, got.From, got.To, got.Amount, want.From, want.To, want.Amount)
				}
			}
			if s.TotalTransactions != len(tt.want) {
				t.Errorf("TotalTransactions = %d, want %d", s.TotalTransactions, len(tt.want))
			}
			if s.Summary() != tt.wantSummary {
				t.Errorf("Summary() = %q, want %q", s.Summary(), tt.wantSummary)
			}
			if len(s.Balances) != len(tt.members) {
				t.Errorf("got %d balances, want %d", len(s.Balances), len(tt.members))
			}
		})
	}
}

func TestComputeSettlement_EmptyIsSettled(t *testing.T) {
	s, err := ComputeSettlement(nil, nil, nil)
	if err != nil {
		t.Fatalf("ComputeSettlement() error = %v", err)
	}
	if !s.Settled() {
		t.Error("expected an empty ledger to be settled")
	}
	if s.Transactions == nil {
		t.Error("expected an empty, non-nil transaction list")
	}
}

func TestComputeSettlement_KeepsSettledMembersInBalances(t *testing.T) {
	s, err := ComputeSettlement(
		members("Alice", "Bob", "Dave"),
		[]models.Purchase{purchase("Coffee", "3", "Alice", t0, share("Bob", "3"))},
		nil,
	)
	if err != nil {
		t.Fatalf("ComputeSettlement() error = %v", err)
	}
	if len(s.Balances) != 3 {
		t.Errorf("Balances has %d entries, want 3", len(s.Balances))
	}
	nonZero := s.NonZeroBalances()
	if len(nonZero) != 2 {
		t.Fatalf("NonZeroBalances() has %d entries, want 2", len(nonZero))
	}
	for _, b := range nonZero {
		if b.MemberName == "Dave" {
			t.Error("Dave has no activity and should not be listed as unsettled")
		}
	}
}

func TestSettle_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 99))
	for round := 0; round < 200; round++ {
		m, p, r := randomLedger(rng, 2+rng.IntN(9), rng.IntN(25), rng.IntN(10))

		sheet, err := ComputeBalances(m, p, r)
		if err != nil {
			t.Fatalf("round %d: ComputeBalances() error = %v", round, err)
		}
		s := Settle(sheet)

		nonZero := len(sheet.NonZero())
		bound := nonZero - 1
		if bound < 0 {
			bound = 0
		}
		if s.TotalTransactions > bound {
			t.Errorf("round %d: %d transactions for %d unsettled members", round, s.TotalTransactions, nonZero)
		}

		for _, tx := range s.Transactions {
			if !tx.Amount.IsPositive() {
				t.Errorf("round %d: non-positive transaction %v", round, tx)
			}
			if tx.From == tx.To {
				t.Errorf("round %d: self payment %v", round, tx)
			}
		}

		for name, b := range Apply(sheet.Map(), s.Transactions) {
			if b.Abs().GreaterThan(Epsilon) {
				t.Errorf("round %d: %s left with %s after settling", round, name, b)
			}
		}
	}
}
