package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/calculator"
)

func newSettleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "settle",
		Short: "Print the payments that settle all balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := opts.load()
			if err != nil {
				return err
			}

			settlement, err := calculator.ComputeSettlement(snap.Members, snap.Purchases, snap.Repayments)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, settlement.Summary())
			for _, t := range settlement.Transactions {
				fmt.Fprintf(out, "  %s pays %s %s\n", t.From, t.To, money(t.Amount))
			}
			printReport(cmd, settlement.Report)
			return nil
		},
	}
}
