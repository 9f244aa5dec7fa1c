// Package apiconnect wires the splitledger.v1 services to Connect handlers and clients.
package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "splitledger.v1.LedgerService"

// Procedure paths of LedgerService.
const (
	LedgerServiceCreateLedgerProcedure     = "/splitledger.v1.LedgerService/CreateLedger"
	LedgerServiceGetLedgerProcedure        = "/splitledger.v1.LedgerService/GetLedger"
	LedgerServiceListLedgersProcedure      = "/splitledger.v1.LedgerService/ListLedgers"
	LedgerServiceAddMemberProcedure        = "/splitledger.v1.LedgerService/AddMember"
	LedgerServiceListMembersProcedure      = "/splitledger.v1.LedgerService/ListMembers"
	LedgerServiceRecordPurchaseProcedure   = "/splitledger.v1.LedgerService/RecordPurchase"
	LedgerServiceRecordRepaymentProcedure  = "/splitledger.v1.LedgerService/RecordRepayment"
	LedgerServiceListActivityProcedure     = "/splitledger.v1.LedgerService/ListActivity"
	LedgerServiceGetBalancesProcedure      = "/splitledger.v1.LedgerService/GetBalances"
	LedgerServiceGetSettlementProcedure    = "/splitledger.v1.LedgerService/GetSettlement"
	LedgerServiceGetMemberHistoryProcedure = "/splitledger.v1.LedgerService/GetMemberHistory"
)

// LedgerServiceHandler is implemented by the server side of LedgerService.
type LedgerServiceHandler interface {
	CreateLedger(context.Context, *connect.Request[api.CreateLedgerRequest]) (*connect.Response[api.CreateLedgerResponse], error)
	GetLedger(context.Context, *connect.Request[api.GetLedgerRequest]) (*connect.Response[api.GetLedgerResponse], error)
	ListLedgers(context.Context, *connect.Request[api.ListLedgersRequest]) (*connect.Response[api.ListLedgersResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	ListMembers(context.Context, *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error)
	RecordPurchase(context.Context, *connect.Request[api.RecordPurchaseRequest]) (*connect.Response[api.RecordPurchaseResponse], error)
	RecordRepayment(context.Context, *connect.Request[api.RecordRepaymentRequest]) (*connect.Response[api.RecordRepaymentResponse], error)
	ListActivity(context.Context, *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	GetSettlement(context.Context, *connect.Request[api.GetSettlementRequest]) (*connect.Response[api.GetSettlementResponse], error)
	GetMemberHistory(context.Context, *connect.Request[api.GetMemberHistoryRequest]) (*connect.Response[api.GetMemberHistoryResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withJSON(opts)
	routes := map[string]http.Handler{
		LedgerServiceCreateLedgerProcedure:     connect.NewUnaryHandler(LedgerServiceCreateLedgerProcedure, svc.CreateLedger, opts...),
		LedgerServiceGetLedgerProcedure:        connect.NewUnaryHandler(LedgerServiceGetLedgerProcedure, svc.GetLedger, opts...),
		LedgerServiceListLedgersProcedure:      connect.NewUnaryHandler(LedgerServiceListLedgersProcedure, svc.ListLedgers, opts...),
		LedgerServiceAddMemberProcedure:        connect.NewUnaryHandler(LedgerServiceAddMemberProcedure, svc.AddMember, opts...),
		LedgerServiceListMembersProcedure:      connect.NewUnaryHandler(LedgerServiceListMembersProcedure, svc.ListMembers, opts...),
		LedgerServiceRecordPurchaseProcedure:   connect.NewUnaryHandler(LedgerServiceRecordPurchaseProcedure, svc.RecordPurchase, opts...),
		LedgerServiceRecordRepaymentProcedure:  connect.NewUnaryHandler(LedgerServiceRecordRepaymentProcedure, svc.RecordRepayment, opts...),
		LedgerServiceListActivityProcedure:     connect.NewUnaryHandler(LedgerServiceListActivityProcedure, svc.ListActivity, opts...),
		LedgerServiceGetBalancesProcedure:      connect.NewUnaryHandler(LedgerServiceGetBalancesProcedure, svc.GetBalances, opts...),
		LedgerServiceGetSettlementProcedure:    connect.NewUnaryHandler(LedgerServiceGetSettlementProcedure, svc.GetSettlement, opts...),
		LedgerServiceGetMemberHistoryProcedure: connect.NewUnaryHandler(LedgerServiceGetMemberHistoryProcedure, svc.GetMemberHistory, opts...),
	}
	return "/" + LedgerServiceName + "/", route(routes)
}

// LedgerServiceClient is a client for LedgerService.
type LedgerServiceClient interface {
	CreateLedger(context.Context, *connect.Request[api.CreateLedgerRequest]) (*connect.Response[api.CreateLedgerResponse], error)
	GetLedger(context.Context, *connect.Request[api.GetLedgerRequest]) (*connect.Response[api.GetLedgerResponse], error)
	ListLedgers(context.Context, *connect.Request[api.ListLedgersRequest]) (*connect.Response[api.ListLedgersResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	ListMembers(context.Context, *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error)
	RecordPurchase(context.Context, *connect.Request[api.RecordPurchaseRequest]) (*connect.Response[api.RecordPurchaseResponse], error)
	RecordRepayment(context.Context, *connect.Request[api.RecordRepaymentRequest]) (*connect.Response[api.RecordRepaymentResponse], error)
	ListActivity(context.Context, *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	GetSettlement(context.Context, *connect.Request[api.GetSettlementRequest]) (*connect.Response[api.GetSettlementResponse], error)
	GetMemberHistory(context.Context, *connect.Request[api.GetMemberHistoryRequest]) (*connect.Response[api.GetMemberHistoryResponse], error)
}

type ledgerServiceClient struct {
	createLedger     *connect.Client[api.CreateLedgerRequest, api.CreateLedgerResponse]
	getLedger        *connect.Client[api.GetLedgerRequest, api.GetLedgerResponse]
	listLedgers      *connect.Client[api.ListLedgersRequest, api.ListLedgersResponse]
	addMember        *connect.Client[api.AddMemberRequest, api.AddMemberResponse]
	listMembers      *connect.Client[api.ListMembersRequest, api.ListMembersResponse]
	recordPurchase   *connect.Client[api.RecordPurchaseRequest, api.RecordPurchaseResponse]
	recordRepayment  *connect.Client[api.RecordRepaymentRequest, api.RecordRepaymentResponse]
	listActivity     *connect.Client[api.ListActivityRequest, api.ListActivityResponse]
	getBalances      *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
	getSettlement    *connect.Client[api.GetSettlementRequest, api.GetSettlementResponse]
	getMemberHistory *connect.Client[api.GetMemberHistoryRequest, api.GetMemberHistoryResponse]
}

// NewLedgerServiceClient constructs a client for LedgerService at baseURL
// (e.g. http://localhost:8080).
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	opts = withJSONClient(opts)
	return &ledgerServiceClient{
		createLedger:     connect.NewClient[api.CreateLedgerRequest, api.CreateLedgerResponse](httpClient, baseURL+LedgerServiceCreateLedgerProcedure, opts...),
		getLedger:        connect.NewClient[api.GetLedgerRequest, api.GetLedgerResponse](httpClient, baseURL+LedgerServiceGetLedgerProcedure, opts...),
		listLedgers:      connect.NewClient[api.ListLedgersRequest, api.ListLedgersResponse](httpClient, baseURL+LedgerServiceListLedgersProcedure, opts...),
		addMember:        connect.NewClient[api.AddMemberRequest, api.AddMemberResponse](httpClient, baseURL+LedgerServiceAddMemberProcedure, opts...),
		listMembers:      connect.NewClient[api.ListMembersRequest, api.ListMembersResponse](httpClient, baseURL+LedgerServiceListMembersProcedure, opts...),
		recordPurchase:   connect.NewClient[api.RecordPurchaseRequest, api.RecordPurchaseResponse](httpClient, baseURL+LedgerServiceRecordPurchaseProcedure, opts...),
		recordRepayment:  connect.NewClient[api.RecordRepaymentRequest, api.RecordRepaymentResponse](httpClient, baseURL+LedgerServiceRecordRepaymentProcedure, opts...),
		listActivity:     connect.NewClient[api.ListActivityRequest, api.ListActivityResponse](httpClient, baseURL+LedgerServiceListActivityProcedure, opts...),
		getBalances:      connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](httpClient, baseURL+LedgerServiceGetBalancesProcedure, opts...),
		getSettlement:    connect.NewClient[api.GetSettlementRequest, api.GetSettlementResponse](httpClient, baseURL+LedgerServiceGetSettlementProcedure, opts...),
		getMemberHistory: connect.NewClient[api.GetMemberHistoryRequest, api.GetMemberHistoryResponse](httpClient, baseURL+LedgerServiceGetMemberHistoryProcedure, opts...),
	}
}

func (c *ledgerServiceClient) CreateLedger(ctx context.Context, req *connect.Request[api.CreateLedgerRequest]) (*connect.Response[api.CreateLedgerResponse], error) {
	return c.createLedger.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetLedger(ctx context.Context, req *connect.Request[api.GetLedgerRequest]) (*connect.Response[api.GetLedgerResponse], error) {
	return c.getLedger.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListLedgers(ctx context.Context, req *connect.Request[api.ListLedgersRequest]) (*connect.Response[api.ListLedgersResponse], error) {
	return c.listLedgers.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	return c.listMembers.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) RecordPurchase(ctx context.Context, req *connect.Request[api.RecordPurchaseRequest]) (*connect.Response[api.RecordPurchaseResponse], error) {
	return c.recordPurchase.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) RecordRepayment(ctx context.Context, req *connect.Request[api.RecordRepaymentRequest]) (*connect.Response[api.RecordRepaymentResponse], error) {
	return c.recordRepayment.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListActivity(ctx context.Context, req *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error) {
	return c.listActivity.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetSettlement(ctx context.Context, req *connect.Request[api.GetSettlementRequest]) (*connect.Response[api.GetSettlementResponse], error) {
	return c.getSettlement.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetMemberHistory(ctx context.Context, req *connect.Request[api.GetMemberHistoryRequest]) (*connect.Response[api.GetMemberHistoryResponse], error) {
	return c.getMemberHistory.CallUnary(ctx, req)
}
