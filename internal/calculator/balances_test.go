package calculator

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

func TestComputeBalances(t *testing.T) {
	tests := []struct {
		name        string
		members     []models.Member
		purchases   []models.Purchase
		repayments  []models.Repayment
		want        map[string]string
		wantSkipped int
	}{
		{
			name:    "no activity keeps every member at zero",
			members: members("Alice", "Bob"),
			want:    map[string]string{"Alice": "0", "Bob": "0"},
		},
		{
			name:    "dinner split three ways",
			members: members("Alice", "Bob", "Carol"),
			purchases: []models.Purchase{
				purchase("Dinner", "30", "Alice", t0, share("Alice", "10"), share("Bob", "10"), share("Carol", "10")),
			},
			want: map[string]string{"Alice": "20", "Bob": "-10", "Carol": "-10"},
		},
		{
			name:    "repayment clears the debt",
			members: members("Alice", "Bob"),
			purchases: []models.Purchase{
				purchase("Taxi", "15", "Bob", t0, share("Alice", "15")),
			},
			repayments: []models.Repayment{
				repayment("Alice", "Bob", "15", t0.Add(time.Hour)),
			},
			want: map[string]string{"Alice": "0", "Bob": "0"},
		},
		{
			name:    "purchaser outside the split",
			members: members("Alice", "Bob", "Carol"),
			purchases: []models.Purchase{
				purchase("Groceries", "30", "Alice", t0, share("Bob", "10"), share("Carol", "20")),
			},
			want: map[string]string{"Alice": "30", "Bob": "-10", "Carol": "-20"},
		},
		{
			name:    "invalid records are skipped and counted",
			members: members("Alice", "Bob"),
			purchases: []models.Purchase{
				purchase("Dinner", "20", "Alice", t0, share("Alice", "10"), share("Bob", "10")),
				purchase("Free lunch", "0", "Alice", t0, share("Bob", "0")),
				purchase("Mismatch", "20", "Bob", t0, share("Alice", "5")),
				purchase("Undated", "20", "Bob", time.Time{}, share("Alice", "20")),
				purchase("Nobody", "20", "Bob", t0),
			},
			repayments: []models.Repayment{
				repayment("Alice", "Alice", "5", t0),
				repayment("Bob", "Alice", "-5", t0),
			},
			want:        map[string]string{"Alice": "10", "Bob": "-10"},
			wantSkipped: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet, err := ComputeBalances(tt.members, tt.purchases, tt.repayments)
			if err != nil {
				t.Fatalf("ComputeBalances() error = %v", err)
			}
			if len(sheet.Members) != len(tt.members) {
				t.Errorf("got %d balances, want %d", len(sheet.Members), len(tt.members))
			}
			for name, want := range tt.want {
				got, ok := sheet.Balance(name)
				if !ok {
					t.Errorf("missing balance for %s", name)
					continue
				}
				if !got.Equal(dec(want)) {
					t.Errorf("%s balance = %s, want %s", name, got, want)
				}
			}
			if sheet.Report.Skipped() != tt.wantSkipped {
				t.Errorf("skipped = %d, want %d", sheet.Report.Skipped(), tt.wantSkipped)
			}
		})
	}
}

func TestComputeBalances_MemberOrder(t *testing.T) {
	sheet, err := ComputeBalances(members("Carol", "Alice", "Bob"), nil, nil)
	if err != nil {
		t.Fatalf("ComputeBalances() error = %v", err)
	}
	for i, want := range []string{"Carol", "Alice", "Bob"} {
		if sheet.Members[i].MemberName != want {
			t.Errorf("member %d = %s, want %s", i, sheet.Members[i].MemberName, want)
		}
	}
}

func TestComputeBalances_TotalsPaidAndOwed(t *testing.T) {
	sheet, err := ComputeBalances(
		members("Alice", "Bob"),
		[]models.Purchase{purchase("Dinner", "40", "Alice", t0, share("Alice", "20"), share("Bob", "20"))},
		[]models.Repayment{repayment("Bob", "Alice", "5", t0)},
	)
	if err != nil {
		t.Fatalf("ComputeBalances() error = %v", err)
	}

	alice := sheet.Members[0]
	if !alice.TotalPaid.Equal(dec("40")) || !alice.TotalOwed.Equal(dec("25")) {
		t.Errorf("Alice paid/owed = %s/%s, want 40/25", alice.TotalPaid, alice.TotalOwed)
	}
	bob := sheet.Members[1]
	if !bob.TotalPaid.Equal(dec("5")) || !bob.TotalOwed.Equal(dec("20")) {
		t.Errorf("Bob paid/owed = %s/%s, want 5/20", bob.TotalPaid, bob.TotalOwed)
	}
	if len(sheet.NonZero()) != 2 {
		t.Errorf("NonZero() = %d entries, want 2", len(sheet.NonZero()))
	}
}

func TestComputeBalances_Errors(t *testing.T) {
	tests := []struct {
		name       string
		members    []models.Member
		purchases  []models.Purchase
		repayments []models.Repayment
		wantErr    error
	}{
		{
			name:      "unknown purchaser",
			members:   members("Alice"),
			purchases: []models.Purchase{purchase("Dinner", "10", "Mallory", t0, share("Alice", "10"))},
			wantErr:   ErrUnknownMember,
		},
		{
			name:      "unknown split member",
			members:   members("Alice"),
			purchases: []models.Purchase{purchase("Dinner", "10", "Alice", t0, share("Mallory", "10"))},
			wantErr:   ErrUnknownMember,
		},
		{
			name:       "unknown repayment receiver",
			members:    members("Alice"),
			repayments: []models.Repayment{repayment("Alice", "Mallory", "10", t0)},
			wantErr:    ErrUnknownMember,
		},
		{
			name:    "duplicate member",
			members: members("Alice", "Alice"),
			wantErr: ErrDuplicateMember,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeBalances(tt.members, tt.purchases, tt.repayments)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ComputeBalances() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestComputeBalances_Idempotent(t *testing.T) {
	m, p, r := randomLedger(rand.New(rand.NewPCG(7, 11)), 6, 40, 10)

	first, err := ComputeBalances(m, p, r)
	if err != nil {
		t.Fatalf("ComputeBalances() error = %v", err)
	}
	second, err := ComputeBalances(m, p, r)
	if err != nil {
		t.Fatalf("ComputeBalances() error = %v", err)
	}
	for i := range first.Members {
		if !first.Members[i].NetBalance.Equal(second.Members[i].NetBalance) {
			t.Errorf("%s: %s != %s", first.Members[i].MemberName, first.Members[i].NetBalance, second.Members[i].NetBalance)
		}
	}
}

func TestComputeBalances_Conservation(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for round := 0; round < 50; round++ {
		m, p, r := randomLedger(rng, 2+rng.IntN(8), rng.IntN(30), rng.IntN(15))
		sheet, err := ComputeBalances(m, p, r)
		if err != nil {
			t.Fatalf("round %d: ComputeBalances() error = %v", round, err)
		}
		if !sheet.Sum().IsZero() {
			t.Errorf("round %d: balances sum to %s, want 0", round, sheet.Sum())
		}
	}
}

// randomLedger builds a valid ledger with equal-split purchases in whole cents.
func randomLedger(rng *rand.Rand, memberCount, purchaseCount, repaymentCount int) ([]models.Member, []models.Purchase, []models.Repayment) {
	names := make([]string, memberCount)
	for i := range names {
		names[i] = string(rune('A' + i))
	}
	ms := members(names...)

	var purchases []models.Purchase
	for i := 0; i < purchaseCount; i++ {
		perm := rng.Perm(memberCount)
		splitWith := make([]string, 1+rng.IntN(memberCount))
		for k := range splitWith {
			splitWith[k] = names[perm[k]]
		}
		amount := decimal.New(int64(100+rng.IntN(20000)), -2)
		shares, err := EqualSplit(amount, splitWith)
		if err != nil {
			panic(err)
		}
		purchases = append(purchases, models.Purchase{
			Name:      "purchase",
			Amount:    amount,
			Purchaser: names[rng.IntN(memberCount)],
			Split:     shares,
			Timestamp: t0.Add(time.Duration(rng.IntN(10000)) * time.Minute),
		})
	}

	var repayments []models.Repayment
	for i := 0; i < repaymentCount && memberCount > 1; i++ {
		perm := rng.Perm(memberCount)
		repayments = append(repayments, models.Repayment{
			Payer:     names[perm[0]],
			Receiver:  names[perm[1]],
			Amount:    decimal.New(int64(1+rng.IntN(5000)), -2),
			Timestamp: t0.Add(time.Duration(rng.IntN(10000)) * time.Minute),
		})
	}
	return ms, purchases, repayments
}

func TestComputeBalances_SplitsOffByACent(t *testing.T) {
	m := members("Alice", "Bob", "Carol")
	var ps []models.Purchase
	for i := 0; i < 100; i++ {
		ps = append(ps, purchase("Pizza", "10", "Alice", t0.Add(time.Duration(i)*time.Minute),
			share("Alice", "3.33"), share("Bob", "3.33"), share("Carol", "3.33")))
	}

	sheet, err := ComputeBalances(m, ps, nil)
	if err != nil {
		t.Fatalf("ComputeBalances() error = %v", err)
	}
	if sheet.Report.Skipped() != 0 {
		t.Errorf("skipped = %d, want 0", sheet.Report.Skipped())
	}
	if !sheet.Sum().IsZero() {
		t.Errorf("balances sum to %s, want 0", sheet.Sum())
	}
	if got, _ := sheet.Balance("Alice"); !got.Equal(dec("666")) {
		t.Errorf("Alice balance = %s, want 666", got)
	}

	s := Settle(sheet)
	for name, b := range Apply(sheet.Map(), s.Transactions) {
		if b.Abs().GreaterThan(Epsilon) {
			t.Errorf("%s left with %s after %q", name, b, s.Summary())
		}
	}
}

func TestComputeBalances_ConservationWithRoughSplits(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	cents := []string{"-0.01", "0", "0.01"}
	for round := 0; round < 100; round++ {
		m, p, r := randomLedger(rng, 2+rng.IntN(8), 1+rng.IntN(30), rng.IntN(15))
		// Nudge one share per purchase by up to a cent, the way hand-entered splits drift
		for i := range p {
			k := rng.IntN(len(p[i].Split))
			nudged := p[i].Split[k].Amount.Add(dec(cents[rng.IntN(len(cents))]))
			if nudged.IsPositive() {
				p[i].Split[k].Amount = nudged
			}
		}

		sheet, err := ComputeBalances(m, p, r)
		if err != nil {
			t.Fatalf("round %d: ComputeBalances() error = %v", round, err)
		}
		if !sheet.Sum().IsZero() {
			t.Errorf("round %d: balances sum to %s, want 0", round, sheet.Sum())
		}

		history, err := MemberHistory(m[0].Name, m, p, r, Ascending)
		if err != nil {
			t.Fatalf("round %d: MemberHistory() error = %v", round, err)
		}
		want, _ := sheet.Balance(m[0].Name)
		if len(history) > 0 && !history[len(history)-1].RunningBalance.Equal(want) {
			t.Errorf("round %d: history ends at %s, balance is %s", round, history[len(history)-1].RunningBalance, want)
		}

		for name, b := range Apply(sheet.Map(), Settle(sheet).Transactions) {
			if b.Abs().GreaterThan(Epsilon) {
				t.Errorf("round %d: %s left with %s after settling", round, name, b)
			}
		}
	}
}

func TestBalanceSplit(t *testing.T) {
	tests := []struct {
		name string
		p    models.Purchase
		want []string
	}{
		{
			name: "exact split is unchanged",
			p:    purchase("Dinner", "30", "Alice", t0, share("Alice", "10"), share("Bob", "20")),
			want: []string{"10", "20"},
		},
		{
			name: "missing cent goes to the first largest share",
			p:    purchase("Pizza", "10", "Alice", t0, share("Alice", "3.33"), share("Bob", "3.33"), share("Carol", "3.33")),
			want: []string{"3.34", "3.33", "3.33"},
		},
		{
			name: "extra cent comes off the largest share",
			p:    purchase("Taxi", "10", "Bob", t0, share("Alice", "4"), share("Bob", "6.01")),
			want: []string{"4", "6"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.p.Split[0].Amount
			got := BalanceSplit(tt.p)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d shares, want %d", len(got), len(tt.want))
			}
			for i, w := range tt.want {
				if !got[i].Amount.Equal(dec(w)) {
					t.Errorf("share %d = %s, want %s", i, got[i].Amount, w)
				}
			}
			if !tt.p.Split[0].Amount.Equal(original) {
				t.Error("BalanceSplit modified the purchase")
			}
		})
	}
}

func TestValidatePurchase_SplitMustAbsorbDifference(t *testing.T) {
	p := purchase("Gum", "0.01", "Alice", t0, share("Alice", "0.01"), share("Bob", "0.01"))
	if err := ValidatePurchase(p); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("ValidatePurchase() = %v, want ErrInvalidRecord", err)
	}
}
