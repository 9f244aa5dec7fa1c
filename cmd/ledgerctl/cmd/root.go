// Package cmd provides the ledgerctl commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/snapshot"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/logging"
)

type rootOptions struct {
	file      string
	logLevel  string
	logFormat string
}

// NewRootCmd builds the ledgerctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Settle a shared-expense ledger",
		Long: `ledgerctl reads a ledger snapshot (YAML or JSON) and prints balances,
a suggested settlement plan or one member's history.

Example:
  ledgerctl balances -f trip.yaml
  ledgerctl settle -f trip.yaml
  ledgerctl history -f trip.yaml --member Alice --desc
  ledgerctl export --server http://localhost:8080 --ledger <id> -o trip.yaml`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(opts.logLevel, opts.logFormat)
		},
	}

	root.PersistentFlags().StringVarP(&opts.file, "file", "f", "ledger.yaml", "ledger snapshot file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(
		newBalancesCmd(opts),
		newSettleCmd(opts),
		newHistoryCmd(opts),
		newExportCmd(),
	)
	return root
}

func (o *rootOptions) load() (*storage.Snapshot, error) {
	snap, err := snapshot.Load(o.file)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return snap, nil
}
