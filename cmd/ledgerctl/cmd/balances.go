package cmd

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/calculator"
)

func newBalancesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Print every member's net balance",
		Long: `Print every member's net balance.

A positive balance means the member is owed money, a negative one that they owe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := opts.load()
			if err != nil {
				return err
			}

			sheet, err := calculator.ComputeBalances(snap.Members, snap.Purchases, snap.Repayments)
			if err != nil {
				return err
			}
			slog.Debug("Balances computed", "members", len(sheet.Members), "skipped", sheet.Report.Skipped())

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(w, "MEMBER\tPAID\tOWED\tBALANCE\t")
			for _, b := range sheet.Members {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
					b.MemberName, money(b.TotalPaid), money(b.TotalOwed), signedMoney(b.NetBalance))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			printReport(cmd, sheet.Report)
			return nil
		},
	}
}
