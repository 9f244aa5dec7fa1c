package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/calculator"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		member string
		desc   bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print one member's transactions with a running balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if member == "" {
				return errors.New("--member is required")
			}
			snap, err := opts.load()
			if err != nil {
				return err
			}

			order := calculator.Ascending
			if desc {
				order = calculator.Descending
			}
			entries, err := calculator.MemberHistory(member, snap.Members, snap.Purchases, snap.Repayments, order)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No activity for %s\n", member)
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tDESCRIPTION\tAMOUNT\tBALANCE")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					e.Date.Format("2006-01-02 15:04"), e.Description, signedMoney(e.Amount), signedMoney(e.RunningBalance))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&member, "member", "m", "", "member name")
	cmd.Flags().BoolVar(&desc, "desc", false, "newest entries first")
	return cmd
}
