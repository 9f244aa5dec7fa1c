package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/calculator"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// signedMoney always shows the sign, so credits and debts line up.
func signedMoney(d decimal.Decimal) string {
	rounded := d.Round(2)
	if rounded.IsPositive() {
		return "+" + rounded.StringFixed(2)
	}
	if rounded.IsZero() {
		return "0.00"
	}
	return rounded.StringFixed(2)
}

func printReport(cmd *cobra.Command, r calculator.Report) {
	if r.Skipped() == 0 {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: skipped %d invalid purchase(s) and %d invalid repayment(s)\n",
		r.SkippedPurchases, r.SkippedRepayments)
}
