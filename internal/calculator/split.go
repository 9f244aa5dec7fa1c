package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

var cent = decimal.New(1, -2)

// EqualSplit divides amount equally among members in whole cents.
//
// Every member gets amount/n rounded down to the cent; the leftover cents go
// one each to the first members, so the shares always sum to amount exactly.
// Sub-cent amounts (e.g. 10.005) leave a remainder below one cent, which is
// added to the first share.
func EqualSplit(amount decimal.Decimal, members []string) ([]models.Share, error) {
	if len(members) == 0 {
		return nil, errors.New("must have at least one member to split with")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive, got %s", amount)
	}
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if m == "" {
			return nil, errors.New("split member name cannot be empty")
		}
		if seen[m] {
			return nil, fmt.Errorf("%w: %q appears twice in the split", ErrDuplicateMember, m)
		}
		seen[m] = true
	}

	n := decimal.NewFromInt(int64(len(members)))
	if amount.LessThan(cent.Mul(n)) {
		return nil, fmt.Errorf("amount %s is too small to split among %d members", amount, len(members))
	}
	base := amount.Div(n).Truncate(2)
	remainder := amount.Sub(base.Mul(n))

	shares := make([]models.Share, len(members))
	for i, m := range members {
		shares[i] = models.Share{Member: m, Amount: base}
	}
	for i := 0; remainder.GreaterThanOrEqual(cent); i++ {
		shares[i].Amount = shares[i].Amount.Add(cent)
		remainder = remainder.Sub(cent)
	}
	if !remainder.IsZero() {
		shares[0].Amount = shares[0].Amount.Add(remainder)
	}
	return shares, nil
}
