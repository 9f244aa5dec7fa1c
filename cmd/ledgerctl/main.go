// Command ledgerctl computes balances, settlements and member histories from
// a ledger snapshot file, and exports snapshots from a running server.
package main

import (
	"os"

	"github.com/mmynk/splitledger/cmd/ledgerctl/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
