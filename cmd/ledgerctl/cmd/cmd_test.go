package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/cache"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/snapshot"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

const scenarioA = `
members: [A, B, C]
purchases:
  - name: Dinner
    amount: 90
    purchaser: A
    split_members: [A, B, C]
    timestamp: 2024-03-01T19:00:00Z
repayments:
  - {payer: B, receiver: A, amount: 10, timestamp: 2024-03-02}
`

func writeLedger(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write ledger: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestBalances(t *testing.T) {
	path := writeLedger(t, scenarioA)

	out, _, err := run(t, "balances", "-f", path)
	if err != nil {
		t.Fatalf("balances failed: %v", err)
	}

	// A: +90 -30 -10 = 50; B: -30 +10 = -20; C: -30
	for _, want := range []string{"+50.00", "-20.00", "-30.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output:\n%s", want, out)
		}
	}
}

func TestSettle(t *testing.T) {
	path := writeLedger(t, scenarioA)

	out, _, err := run(t, "settle", "-f", path)
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	if !strings.Contains(out, "2 payments settle all balances") {
		t.Errorf("missing summary:\n%s", out)
	}
	// Largest debtor first
	cIdx := strings.Index(out, "C pays A 30.00")
	bIdx := strings.Index(out, "B pays A 20.00")
	if cIdx < 0 || bIdx < 0 || cIdx > bIdx {
		t.Errorf("unexpected plan:\n%s", out)
	}
}

func TestSettle_AllSettled(t *testing.T) {
	path := writeLedger(t, "members: [A, B]\n")

	out, _, err := run(t, "settle", "-f", path)
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if !strings.Contains(out, "All settled up") {
		t.Errorf("expected settled message, got:\n%s", out)
	}
}

func TestSettle_ReportsSkippedRecords(t *testing.T) {
	path := writeLedger(t, scenarioA+"  - {payer: A, receiver: A, amount: 5, timestamp: 2024-03-03}\n")

	_, stderr, err := run(t, "settle", "-f", path)
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if !strings.Contains(stderr, "skipped 0 invalid purchase(s) and 1 invalid repayment(s)") {
		t.Errorf("expected skip warning, got stderr: %q", stderr)
	}
}

func TestHistory(t *testing.T) {
	path := writeLedger(t, scenarioA)

	out, _, err := run(t, "history", "-f", path, "--member", "A")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 entries, got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "Paid for Dinner") || !strings.Contains(lines[1], "+90.00") {
		t.Errorf("first entry: %q", lines[1])
	}
	if !strings.Contains(lines[3], "Received from B") || !strings.HasSuffix(strings.TrimSpace(lines[3]), "+50.00") {
		t.Errorf("last entry: %q", lines[3])
	}

	out, _, err = run(t, "history", "-f", path, "-m", "A", "--desc")
	if err != nil {
		t.Fatalf("history --desc failed: %v", err)
	}
	lines = strings.Split(strings.TrimSpace(out), "\n")
	if !strings.Contains(lines[1], "Received from B") {
		t.Errorf("descending: newest entry should come first, got %q", lines[1])
	}
}

func TestHistory_Errors(t *testing.T) {
	path := writeLedger(t, scenarioA)

	if _, _, err := run(t, "history", "-f", path); err == nil {
		t.Error("expected error without --member")
	}
	if _, _, err := run(t, "history", "-f", path, "-m", "Zed"); err == nil {
		t.Error("expected error for unknown member")
	}
	if _, _, err := run(t, "balances", "-f", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExport(t *testing.T) {
	srv, token := newTestServer(t)

	out := filepath.Join(t.TempDir(), "export.yaml")
	stdout, _, err := run(t, "export", "--server", srv.URL, "--ledger", "l-1", "--token", token, "-o", out)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(stdout, "1 purchases, 1 repayments") {
		t.Errorf("unexpected output: %q", stdout)
	}

	snap, err := snapshot.Load(out)
	if err != nil {
		t.Fatalf("failed to load export: %v", err)
	}
	if snap.Ledger.Name != "Trip" || len(snap.Members) != 2 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	stdout, _, err = run(t, "settle", "-f", out)
	if err != nil {
		t.Fatalf("settle on export failed: %v", err)
	}
	if !strings.Contains(stdout, "B pays A 20.00") {
		t.Errorf("unexpected plan:\n%s", stdout)
	}
}

func TestExport_Unauthenticated(t *testing.T) {
	srv, _ := newTestServer(t)
	t.Setenv("SPLITLEDGER_TOKEN", "")

	_, _, err := run(t, "export", "--server", srv.URL, "--ledger", "l-1", "-o", filepath.Join(t.TempDir(), "x.yaml"))
	if err == nil {
		t.Fatal("expected error without token")
	}
}

// newTestServer serves a real LedgerService over SQLite behind JWT auth and
// returns a valid token.
func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ledger := &models.Ledger{ID: "l-1", Name: "Trip"}
	if err := store.CreateLedger(ctx, ledger); err != nil {
		t.Fatalf("CreateLedger failed: %v", err)
	}
	for _, name := range []string{"A", "B"} {
		if err := store.AddMember(ctx, &models.Member{LedgerID: "l-1", Name: name}); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
	}
	err = store.CreatePurchase(ctx, &models.Purchase{
		LedgerID:  "l-1",
		Name:      "Tickets",
		Amount:    decimal.RequireFromString("60"),
		Purchaser: "A",
		Split: []models.Share{
			{Member: "A", Amount: decimal.RequireFromString("30")},
			{Member: "B", Amount: decimal.RequireFromString("30")},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchase failed: %v", err)
	}
	err = store.CreateRepayment(ctx, &models.Repayment{
		LedgerID: "l-1",
		Payer:    "B",
		Receiver: "A",
		Amount:   decimal.RequireFromString("10"),
	})
	if err != nil {
		t.Fatalf("CreateRepayment failed: %v", err)
	}

	jwtManager := auth.NewJWTManager("test-secret-0123456789", time.Hour)
	token, err := jwtManager.Generate(&models.User{ID: "user-1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	svc := service.NewLedgerService(store, cache.NewMemory(16), time.Minute)
	path, handler := apiconnect.NewLedgerServiceHandler(svc,
		connect.WithInterceptors(middleware.RequireAuth(jwtManager)))
	mux := http.NewServeMux()
	mux.Handle(path, handler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, token
}
