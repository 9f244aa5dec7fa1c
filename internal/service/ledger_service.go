package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/cache"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

var _ apiconnect.LedgerServiceHandler = (*LedgerService)(nil)

// LedgerService implements the Connect LedgerService
type LedgerService struct {
	store    storage.Store
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewLedgerService creates a new LedgerService with the given storage backend.
// Settlements are cached in c for cacheTTL; c may be nil to disable caching.
func NewLedgerService(store storage.Store, c cache.Cache, cacheTTL time.Duration) *LedgerService {
	return &LedgerService{store: store, cache: c, cacheTTL: cacheTTL}
}

// CreateLedger creates a new ledger, optionally with its initial members.
func (s *LedgerService) CreateLedger(ctx context.Context, req *connect.Request[api.CreateLedgerRequest]) (*connect.Response[api.CreateLedgerResponse], error) {
	slog.Info("CreateLedger request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	names, err := cleanMemberNames(req.Msg.Members)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	ledger := &models.Ledger{Name: strings.TrimSpace(req.Msg.Name)}
	if err := s.store.CreateLedger(ctx, ledger, names...); err != nil {
		slog.Error("CreateLedger failed", "error", err)
		return nil, toConnectError(err)
	}

	members, err := s.store.ListMembers(ctx, ledger.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Ledger created", "ledger_id", ledger.ID, "members", names)

	return connect.NewResponse(&api.CreateLedgerResponse{
		Ledger:  toAPILedger(ledger),
		Members: toAPIMembers(members),
	}), nil
}

// GetLedger retrieves a ledger and its members.
func (s *LedgerService) GetLedger(ctx context.Context, req *connect.Request[api.GetLedgerRequest]) (*connect.Response[api.GetLedgerResponse], error) {
	slog.Info("GetLedger request received", "ledger_id", req.Msg.LedgerID)

	ledger, err := s.store.GetLedger(ctx, req.Msg.LedgerID)
	if err != nil {
		slog.Error("GetLedger failed", "ledger_id", req.Msg.LedgerID, "error", err)
		return nil, toConnectError(err)
	}
	members, err := s.store.ListMembers(ctx, ledger.ID)
	if err != nil {
		slog.Error("GetLedger: failed to list members", "ledger_id", ledger.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("GetLedger successful", "ledger_id", ledger.ID, "name", ledger.Name, "version", ledger.Version)

	return connect.NewResponse(&api.GetLedgerResponse{
		Ledger:  toAPILedger(ledger),
		Members: toAPIMembers(members),
	}), nil
}

// ListLedgers retrieves all ledgers.
func (s *LedgerService) ListLedgers(ctx context.Context, req *connect.Request[api.ListLedgersRequest]) (*connect.Response[api.ListLedgersResponse], error) {
	slog.Info("ListLedgers request received")

	ledgers, err := s.store.ListLedgers(ctx)
	if err != nil {
		slog.Error("ListLedgers failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Ledger, len(ledgers))
	for i, l := range ledgers {
		out[i] = toAPILedger(l)
	}

	slog.Info("ListLedgers successful", "count", len(ledgers))

	return connect.NewResponse(&api.ListLedgersResponse{Ledgers: out}), nil
}

// AddMember adds a named member to a ledger. Names are unique per ledger.
func (s *LedgerService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	slog.Info("AddMember request received", "ledger_id", req.Msg.LedgerID, "name", req.Msg.Name)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("member name is required"))
	}

	member := &models.Member{LedgerID: req.Msg.LedgerID, Name: name}
	if err := s.store.AddMember(ctx, member); err != nil {
		slog.Error("AddMember failed", "ledger_id", req.Msg.LedgerID, "name", name, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Member added", "ledger_id", member.LedgerID, "name", member.Name)

	return connect.NewResponse(&api.AddMemberResponse{
		Member: &api.Member{Name: member.Name, CreatedAt: member.CreatedAt},
	}), nil
}

// ListMembers returns the members of a ledger in the order they joined.
func (s *LedgerService) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	slog.Info("ListMembers request received", "ledger_id", req.Msg.LedgerID)

	if _, err := s.store.GetLedger(ctx, req.Msg.LedgerID); err != nil {
		slog.Error("ListMembers failed", "ledger_id", req.Msg.LedgerID, "error", err)
		return nil, toConnectError(err)
	}
	members, err := s.store.ListMembers(ctx, req.Msg.LedgerID)
	if err != nil {
		slog.Error("ListMembers failed", "ledger_id", req.Msg.LedgerID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ListMembersResponse{Members: toAPIMembers(members)}), nil
}

// RecordPurchase appends a purchase. The split is either given explicitly or
// computed as an equal split over split_members.
func (s *LedgerService) RecordPurchase(ctx context.Context, req *connect.Request[api.RecordPurchaseRequest]) (*connect.Response[api.RecordPurchaseResponse], error) {
	msg := req.Msg
	slog.Info("RecordPurchase request received",
		"ledger_id", msg.LedgerID,
		"name", msg.Name,
		"amount", msg.Amount,
		"purchaser", msg.Purchaser,
		"split_count", len(msg.Split),
		"split_members", msg.SplitMembers,
	)

	if strings.TrimSpace(msg.Name) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("purchase name is required"))
	}
	if len(msg.Split) > 0 && len(msg.SplitMembers) > 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("give either split or split_members, not both"))
	}

	split := fromAPIShares(msg.Split)
	if len(msg.SplitMembers) > 0 {
		var err error
		split, err = calculator.EqualSplit(msg.Amount, msg.SplitMembers)
		if err != nil {
			slog.Warn("RecordPurchase: equal split failed", "error", err)
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
	}

	purchase := &models.Purchase{
		LedgerID:  msg.LedgerID,
		Name:      strings.TrimSpace(msg.Name),
		Amount:    msg.Amount,
		Purchaser: msg.Purchaser,
		Split:     split,
		Timestamp: timestampOrNow(msg.Timestamp),
		CreatedBy: middleware.GetUserID(ctx),
	}
	if err := calculator.ValidatePurchase(*purchase); err != nil {
		slog.Warn("RecordPurchase: invalid purchase", "error", err)
		return nil, toConnectError(err)
	}
	// Store the split exact so balances stay zero-sum
	purchase.Split = calculator.BalanceSplit(*purchase)

	names := make([]string, 0, len(split)+1)
	names = append(names, purchase.Purchaser)
	for _, sh := range split {
		names = append(names, sh.Member)
	}
	if err := s.requireMembers(ctx, msg.LedgerID, names...); err != nil {
		slog.Warn("RecordPurchase: member check failed", "ledger_id", msg.LedgerID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.CreatePurchase(ctx, purchase); err != nil {
		slog.Error("RecordPurchase failed", "ledger_id", msg.LedgerID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("RecordPurchase successful", "ledger_id", purchase.LedgerID, "purchase_id", purchase.ID)

	out := toAPIPurchase(*purchase)
	return connect.NewResponse(&api.RecordPurchaseResponse{Purchase: &out}), nil
}

// RecordRepayment appends a direct repayment between two members.
func (s *LedgerService) RecordRepayment(ctx context.Context, req *connect.Request[api.RecordRepaymentRequest]) (*connect.Response[api.RecordRepaymentResponse], error) {
	msg := req.Msg
	slog.Info("RecordRepayment request received",
		"ledger_id", msg.LedgerID,
		"payer", msg.Payer,
		"receiver", msg.Receiver,
		"amount", msg.Amount,
	)

	repayment := &models.Repayment{
		LedgerID:  msg.LedgerID,
		Payer:     msg.Payer,
		Receiver:  msg.Receiver,
		Amount:    msg.Amount,
		Timestamp: timestampOrNow(msg.Timestamp),
		CreatedBy: middleware.GetUserID(ctx),
	}
	if err := calculator.ValidateRepayment(*repayment); err != nil {
		slog.Warn("RecordRepayment: invalid repayment", "error", err)
		return nil, toConnectError(err)
	}
	if err := s.requireMembers(ctx, msg.LedgerID, repayment.Payer, repayment.Receiver); err != nil {
		slog.Warn("RecordRepayment: member check failed", "ledger_id", msg.LedgerID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.CreateRepayment(ctx, repayment); err != nil {
		slog.Error("RecordRepayment failed", "ledger_id", msg.LedgerID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("RecordRepayment successful", "ledger_id", repayment.LedgerID, "repayment_id", repayment.ID)

	out := toAPIRepayment(*repayment)
	return connect.NewResponse(&api.RecordRepaymentResponse{Repayment: &out}), nil
}

// ListActivity returns every purchase and repayment of a ledger in insertion order.
func (s *LedgerService) ListActivity(ctx context.Context, req *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error) {
	slog.Info("ListActivity request received", "ledger_id", req.Msg.LedgerID)

	snap, err := s.store.Snapshot(ctx, req.Msg.LedgerID)
	if err != nil {
		slog.Error("ListActivity failed", "ledger_id", req.Msg.LedgerID, "error", err)
		return nil, toConnectError(err)
	}

	resp := &api.ListActivityResponse{
		Purchases:  make([]api.Purchase, len(snap.Purchases)),
		Repayments: make([]api.Repayment, len(snap.Repayments)),
	}
	for i, p := range snap.Purchases {
		resp.Purchases[i] = toAPIPurchase(p)
	}
	for i, r := range snap.Repayments {
		resp.Repayments[i] = toAPIRepayment(r)
	}

	slog.Info("ListActivity successful",
		"ledger_id", req.Msg.LedgerID,
		"purchases", len(resp.Purchases),
		"repayments", len(resp.Repayments),
	)

	return connect.NewResponse(resp), nil
}

// GetBalances computes every member's net balance.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	slog.Info("GetBalances request received", "ledger_id", req.Msg.LedgerID)

	snap, err := s.store.Snapshot(ctx, req.Msg.LedgerID)
	if err != nil {
		slog.Error("GetBalances failed", "ledger_id", req.Msg.LedgerID, "error", err)
		return nil, toConnectError(err)
	}

	sheet, err := calculator.ComputeBalances(snap.Members, snap.Purchases, snap.Repayments)
	if err != nil {
		slog.Error("GetBalances: failed to compute balances", "ledger_id", req.Msg.LedgerID, "error", err)
		return nil, toConnectError(err)
	}
	observeReport(sheet.Report)

	slog.Info("GetBalances successful",
		"ledger_id", req.Msg.LedgerID,
		"members", len(sheet.Members),
		"skipped", sheet.Report.Skipped(),
	)

	return connect.NewResponse(&api.GetBalancesResponse{
		Balances:       toAPIBalances(sheet.Members),
		NonZero:        toAPIBalances(sheet.NonZero()),
		SkippedRecords: sheet.Report.Skipped(),
	}), nil
}

// GetSettlement returns the suggested payments that settle the ledger.
// Results are cached per ledger version.
func (s *LedgerService) GetSettlement(ctx context.Context, req *connect.Request[api.GetSettlementRequest]) (*connect.Response[api.GetSettlementResponse], error) {
	slog.Info("GetSettlement request received", "ledger_id", req.Msg.LedgerID)

	ledger, err := s.store.GetLedger(ctx, req.Msg.LedgerID)
	if err != nil {
		slog.Error("GetSettlement failed", "ledger_id", req.Msg.LedgerID, "error", err)
		return nil, toConnectError(err)
	}

	if cached, ok := s.cachedSettlement(ctx, cache.SettlementKey(ledger.ID, ledger.Version)); ok {
		slog.Debug("GetSettlement cache hit", "ledger_id", ledger.ID, "version", ledger.Version)
		return connect.NewResponse(cached), nil
	}

	snap, err := s.store.Snapshot(ctx, ledger.ID)
	if err != nil {
		slog.Error("GetSettlement: failed to read snapshot", "ledger_id", ledger.ID, "error", err)
		return nil, toConnectError(err)
	}

	settlement, err := calculator.ComputeSettlement(snap.Members, snap.Purchases, snap.Repayments)
	if err != nil {
		slog.Error("GetSettlement: failed to compute settlement", "ledger_id", ledger.ID, "error", err)
		return nil, toConnectError(err)
	}
	metrics.SettlementsComputed.Inc()
	metrics.SettlementTransactions.Observe(float64(settlement.TotalTransactions))
	observeReport(settlement.Report)

	resp := &api.GetSettlementResponse{
		Transactions:      toAPITransactions(settlement.Transactions),
		TotalTransactions: settlement.TotalTransactions,
		Summary:           settlement.Summary(),
		Settled:           settlement.Settled(),
		Balances:          toAPIBalances(settlement.Balances),
		SkippedRecords:    settlement.Report.Skipped(),
		Version:           snap.Ledger.Version,
	}
	s.storeSettlement(ctx, cache.SettlementKey(ledger.ID, snap.Ledger.Version), resp)

	slog.Info("GetSettlement successful",
		"ledger_id", ledger.ID,
		"version", snap.Ledger.Version,
		"transactions", settlement.TotalTransactions,
	)

	return connect.NewResponse(resp), nil
}

// GetMemberHistory returns one member's chronological log with running balances.
func (s *LedgerService) GetMemberHistory(ctx context.Context, req *connect.Request[api.GetMemberHistoryRequest]) (*connect.Response[api.GetMemberHistoryResponse], error) {
	slog.Info("GetMemberHistory request received",
		"ledger_id", req.Msg.LedgerID,
		"member", req.Msg.MemberName,
		"descending", req.Msg.Descending,
	)

	snap, err := s.store.Snapshot(ctx, req.Msg.LedgerID)
	if err != nil {
		slog.Error("GetMemberHistory failed", "ledger_id", req.Msg.LedgerID, "error", err)
		return nil, toConnectError(err)
	}
	if !hasMember(snap.Members, req.Msg.MemberName) {
		return nil, connect.NewError(connect.CodeNotFound,
			fmt.Errorf("member %q: %w", req.Msg.MemberName, storage.ErrNotFound))
	}

	order := calculator.Ascending
	if req.Msg.Descending {
		order = calculator.Descending
	}
	entries, err := calculator.MemberHistory(req.Msg.MemberName, snap.Members, snap.Purchases, snap.Repayments, order)
	if err != nil {
		slog.Error("GetMemberHistory: failed to build history", "ledger_id", req.Msg.LedgerID, "error", err)
		return nil, toConnectError(err)
	}

	resp := &api.GetMemberHistoryResponse{Entries: toAPIHistory(entries)}
	if len(entries) > 0 {
		// The newest entry carries the final running balance
		newest := entries[len(entries)-1]
		if order == calculator.Descending {
			newest = entries[0]
		}
		resp.Balance = newest.RunningBalance
	}

	slog.Info("GetMemberHistory successful",
		"ledger_id", req.Msg.LedgerID,
		"member", req.Msg.MemberName,
		"entries", len(entries),
	)

	return connect.NewResponse(resp), nil
}

// requireMembers checks that the ledger exists and knows every name.
func (s *LedgerService) requireMembers(ctx context.Context, ledgerID string, names ...string) error {
	if _, err := s.store.GetLedger(ctx, ledgerID); err != nil {
		return err
	}
	members, err := s.store.ListMembers(ctx, ledgerID)
	if err != nil {
		return err
	}
	for _, name := range names {
		if !hasMember(members, name) {
			return fmt.Errorf("%w: %q is not a member of ledger %s", calculator.ErrUnknownMember, name, ledgerID)
		}
	}
	return nil
}

func (s *LedgerService) cachedSettlement(ctx context.Context, key string) (*api.GetSettlementResponse, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		slog.Warn("Settlement cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	var resp api.GetSettlementResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		slog.Warn("Settlement cache entry is corrupt", "key", key, "error", err)
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return &resp, true
}

func (s *LedgerService) storeSettlement(ctx context.Context, key string, resp *api.GetSettlementResponse) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Warn("Failed to encode settlement for cache", "key", key, "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		slog.Warn("Settlement cache write failed", "key", key, "error", err)
	}
}

// cleanMemberNames trims names and rejects empty or repeated ones.
func cleanMemberNames(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, errors.New("member name cannot be empty")
		}
		if seen[n] {
			return nil, fmt.Errorf("%w: %q", calculator.ErrDuplicateMember, n)
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, nil
}

func hasMember(members []models.Member, name string) bool {
	for _, m := range members {
		if m.Name == name {
			return true
		}
	}
	return false
}

func timestampOrNow(ts *time.Time) time.Time {
	if ts == nil || ts.IsZero() {
		return time.Now().UTC()
	}
	return ts.UTC()
}

func observeReport(r calculator.Report) {
	if r.SkippedPurchases > 0 {
		metrics.SkippedRecords.WithLabelValues("purchase").Add(float64(r.SkippedPurchases))
	}
	if r.SkippedRepayments > 0 {
		metrics.SkippedRecords.WithLabelValues("repayment").Add(float64(r.SkippedRepayments))
	}
}
