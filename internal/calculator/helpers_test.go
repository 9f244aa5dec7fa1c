package calculator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

var t0 = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func members(names ...string) []models.Member {
	out := make([]models.Member, len(names))
	for i, n := range names {
		out[i] = models.Member{Name: n}
	}
	return out
}

func share(member, amount string) models.Share {
	return models.Share{Member: member, Amount: dec(amount)}
}

func purchase(name, amount, purchaser string, at time.Time, split ...models.Share) models.Purchase {
	return models.Purchase{
		ID:        "p-" + name,
		Name:      name,
		Amount:    dec(amount),
		Purchaser: purchaser,
		Split:     split,
		Timestamp: at,
	}
}

func repayment(payer, receiver, amount string, at time.Time) models.Repayment {
	return models.Repayment{
		ID:        "r-" + payer + "-" + receiver,
		Payer:     payer,
		Receiver:  receiver,
		Amount:    dec(amount),
		Timestamp: at,
	}
}
