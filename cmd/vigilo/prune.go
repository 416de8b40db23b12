package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/vigilo/internal/ledger"
)

func init() {
	rootCmd.AddCommand(pruneCmd)
}

// pruneCmd forces a rotation check against the active ledger file without
// appending an event first — an operator-driven way to cap ledger size on
// demand, supplemented per SPEC_FULL.md.
var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Force a ledger rotation check",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ledgerPath()
		if err := ledger.ForceRotationCheck(path); err != nil {
			return err
		}
		fmt.Printf("checked %s for rotation\n", path)
		return nil
	},
}
