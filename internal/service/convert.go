package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// toConnectError maps domain and storage errors onto Connect codes.
func toConnectError(err error) *connect.Error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrAlreadyExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, calculator.ErrUnknownMember):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, calculator.ErrInvalidRecord), errors.Is(err, calculator.ErrDuplicateMember):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func toAPILedger(l *models.Ledger) *api.Ledger {
	return &api.Ledger{
		ID:        l.ID,
		Name:      l.Name,
		Version:   l.Version,
		CreatedAt: l.CreatedAt,
	}
}

func toAPIMembers(members []models.Member) []api.Member {
	out := make([]api.Member, len(members))
	for i, m := range members {
		out[i] = api.Member{Name: m.Name, CreatedAt: m.CreatedAt}
	}
	return out
}

func toAPIShares(shares []models.Share) []api.Share {
	out := make([]api.Share, len(shares))
	for i, s := range shares {
		out[i] = api.Share{Member: s.Member, Amount: s.Amount}
	}
	return out
}

func fromAPIShares(shares []api.Share) []models.Share {
	out := make([]models.Share, len(shares))
	for i, s := range shares {
		out[i] = models.Share{Member: s.Member, Amount: s.Amount}
	}
	return out
}

func toAPIPurchase(p models.Purchase) api.Purchase {
	return api.Purchase{
		ID:        p.ID,
		Name:      p.Name,
		Amount:    p.Amount,
		Purchaser: p.Purchaser,
		Split:     toAPIShares(p.Split),
		Timestamp: p.Timestamp,
		CreatedBy: p.CreatedBy,
	}
}

func toAPIRepayment(r models.Repayment) api.Repayment {
	return api.Repayment{
		ID:        r.ID,
		Payer:     r.Payer,
		Receiver:  r.Receiver,
		Amount:    r.Amount,
		Timestamp: r.Timestamp,
		CreatedBy: r.CreatedBy,
	}
}

func toAPIBalances(balances []calculator.MemberBalance) []api.MemberBalance {
	out := make([]api.MemberBalance, len(balances))
	for i, b := range balances {
		out[i] = api.MemberBalance{
			MemberName: b.MemberName,
			NetBalance: b.NetBalance,
			TotalPaid:  b.TotalPaid,
			TotalOwed:  b.TotalOwed,
		}
	}
	return out
}

func toAPITransactions(txs []calculator.Transaction) []api.Transaction {
	out := make([]api.Transaction, len(txs))
	for i, t := range txs {
		out[i] = api.Transaction{From: t.From, To: t.To, Amount: t.Amount}
	}
	return out
}

func toAPIHistory(entries []calculator.HistoryEntry) []api.HistoryEntry {
	out := make([]api.HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = api.HistoryEntry{
			Date:           e.Date,
			Kind:           string(e.Kind),
			Description:    e.Description,
			Amount:         e.Amount,
			RunningBalance: e.RunningBalance,
			RecordID:       e.RecordID,
		}
	}
	return out
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}
