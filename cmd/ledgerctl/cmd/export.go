package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/snapshot"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

func newExportCmd() *cobra.Command {
	var (
		server   string
		ledgerID string
		token    string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download a ledger from a splitledger server into a snapshot file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ledgerID == "" {
				return errors.New("--ledger is required")
			}
			if token == "" {
				token = os.Getenv("SPLITLEDGER_TOKEN")
			}

			httpClient := &http.Client{Timeout: 30 * time.Second}
			client := apiconnect.NewLedgerServiceClient(httpClient, server)

			snap, err := fetchSnapshot(cmd, client, ledgerID, token)
			if err != nil {
				return err
			}
			if err := snapshot.Save(output, snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %q (%d purchases, %d repayments) to %s\n",
				snap.Ledger.Name, len(snap.Purchases), len(snap.Repayments), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "server base URL")
	cmd.Flags().StringVar(&ledgerID, "ledger", "", "ledger ID")
	cmd.Flags().StringVar(&token, "token", "", "bearer token (default $SPLITLEDGER_TOKEN)")
	cmd.Flags().StringVarP(&output, "output", "o", "ledger.yaml", "snapshot file to write")
	return cmd
}

func fetchSnapshot(cmd *cobra.Command, client apiconnect.LedgerServiceClient, ledgerID, token string) (*storage.Snapshot, error) {
	ctx := cmd.Context()

	ledgerReq := connect.NewRequest(&api.GetLedgerRequest{LedgerID: ledgerID})
	setToken(ledgerReq.Header(), token)
	ledgerResp, err := client.GetLedger(ctx, ledgerReq)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}

	activityReq := connect.NewRequest(&api.ListActivityRequest{LedgerID: ledgerID})
	setToken(activityReq.Header(), token)
	activityResp, err := client.ListActivity(ctx, activityReq)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}

	l := ledgerResp.Msg.Ledger
	snap := &storage.Snapshot{
		Ledger: &models.Ledger{ID: l.ID, Name: l.Name, Version: l.Version, CreatedAt: l.CreatedAt},
	}
	for _, m := range ledgerResp.Msg.Members {
		snap.Members = append(snap.Members, models.Member{LedgerID: l.ID, Name: m.Name, CreatedAt: m.CreatedAt})
	}
	for _, p := range activityResp.Msg.Purchases {
		split := make([]models.Share, len(p.Split))
		for i, s := range p.Split {
			split[i] = models.Share{Member: s.Member, Amount: s.Amount}
		}
		snap.Purchases = append(snap.Purchases, models.Purchase{
			ID:        p.ID,
			LedgerID:  l.ID,
			Name:      p.Name,
			Amount:    p.Amount,
			Purchaser: p.Purchaser,
			Split:     split,
			Timestamp: p.Timestamp,
			CreatedBy: p.CreatedBy,
		})
	}
	for _, r := range activityResp.Msg.Repayments {
		snap.Repayments = append(snap.Repayments, models.Repayment{
			ID:        r.ID,
			LedgerID:  l.ID,
			Payer:     r.Payer,
			Receiver:  r.Receiver,
			Amount:    r.Amount,
			Timestamp: r.Timestamp,
			CreatedBy: r.CreatedBy,
		})
	}
	return snap, nil
}

func setToken(h http.Header, token string) {
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
}
