package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type Ledger struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Version   int64  `json:"version"`
	CreatedAt int64  `json:"created_at"`
}

type Member struct {
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

type Share struct {
	Member string          `json:"member"`
	Amount decimal.Decimal `json:"amount"`
}

type Purchase struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Purchaser string          `json:"purchaser"`
	Split     []Share         `json:"split"`
	Timestamp time.Time       `json:"timestamp"`
	CreatedBy string          `json:"created_by,omitempty"`
}

type Repayment struct {
	ID        string          `json:"id"`
	Payer     string          `json:"payer"`
	Receiver  string          `json:"receiver"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
	CreatedBy string          `json:"created_by,omitempty"`
}

// MemberBalance is a member's net position. Positive = owed money, negative = owes money.
type MemberBalance struct {
	MemberName string          `json:"member_name"`
	NetBalance decimal.Decimal `json:"net_balance"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	TotalOwed  decimal.Decimal `json:"total_owed"`
}

// Transaction is a suggested payment from one member to another.
type Transaction struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type HistoryEntry struct {
	Date           time.Time       `json:"date"`
	Kind           string          `json:"kind"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	RunningBalance decimal.Decimal `json:"running_balance"`
	RecordID       string          `json:"record_id,omitempty"`
}

type CreateLedgerRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members,omitempty"`
}

type CreateLedgerResponse struct {
	Ledger  *Ledger  `json:"ledger"`
	Members []Member `json:"members"`
}

type GetLedgerRequest struct {
	LedgerID string `json:"ledger_id"`
}

type GetLedgerResponse struct {
	Ledger  *Ledger  `json:"ledger"`
	Members []Member `json:"members"`
}

type ListLedgersRequest struct{}

type ListLedgersResponse struct {
	Ledgers []*Ledger `json:"ledgers"`
}

type AddMemberRequest struct {
	LedgerID string `json:"ledger_id"`
	Name     string `json:"name"`
}

type AddMemberResponse struct {
	Member *Member `json:"member"`
}

type ListMembersRequest struct {
	LedgerID string `json:"ledger_id"`
}

type ListMembersResponse struct {
	Members []Member `json:"members"`
}

// RecordPurchaseRequest records an expense. Give either Split (explicit
// shares) or SplitMembers (equal split in whole cents), not both.
type RecordPurchaseRequest struct {
	LedgerID     string          `json:"ledger_id"`
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	Purchaser    string          `json:"purchaser"`
	Split        []Share         `json:"split,omitempty"`
	SplitMembers []string        `json:"split_members,omitempty"`
	// Timestamp defaults to the time the purchase is recorded.
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type RecordPurchaseResponse struct {
	Purchase *Purchase `json:"purchase"`
}

type RecordRepaymentRequest struct {
	LedgerID string          `json:"ledger_id"`
	Payer    string          `json:"payer"`
	Receiver string          `json:"receiver"`
	Amount   decimal.Decimal `json:"amount"`
	// Timestamp defaults to the time the repayment is recorded.
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type RecordRepaymentResponse struct {
	Repayment *Repayment `json:"repayment"`
}

type ListActivityRequest struct {
	LedgerID string `json:"ledger_id"`
}

type ListActivityResponse struct {
	Purchases  []Purchase  `json:"purchases"`
	Repayments []Repayment `json:"repayments"`
}

type GetBalancesRequest struct {
	LedgerID string `json:"ledger_id"`
}

type GetBalancesResponse struct {
	// Balances lists every member, settled ones included.
	Balances []MemberBalance `json:"balances"`
	// NonZero lists members whose balance is more than one cent from zero.
	NonZero        []MemberBalance `json:"non_zero"`
	SkippedRecords int             `json:"skipped_records"`
}

type GetSettlementRequest struct {
	LedgerID string `json:"ledger_id"`
}

type GetSettlementResponse struct {
	Transactions      []Transaction   `json:"transactions"`
	TotalTransactions int             `json:"total_transactions"`
	Summary           string          `json:"summary"`
	Settled           bool            `json:"settled"`
	Balances          []MemberBalance `json:"balances"`
	SkippedRecords    int             `json:"skipped_records"`
	// Version is the ledger version the plan was computed at.
	Version int64 `json:"version"`
}

type GetMemberHistoryRequest struct {
	LedgerID   string `json:"ledger_id"`
	MemberName string `json:"member_name"`
	// Descending lists the newest entry first.
	Descending bool `json:"descending,omitempty"`
}

type GetMemberHistoryResponse struct {
	Entries []HistoryEntry  `json:"entries"`
	Balance decimal.Decimal `json:"balance"`
}
