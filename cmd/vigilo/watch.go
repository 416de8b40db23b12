package main

import (
	"github.com/spf13/cobra"

	"github.com/boshu2/vigilo/internal/event"
	"github.com/boshu2/vigilo/internal/ledger"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live tail of incoming events",
	RunE: func(cmd *cobra.Command, args []string) error {
		key := loadReadKey()
		return ledger.WatchNotify(cmd.Context(), ledgerPath(), func(e *event.Event) {
			printEventLine(e, key)
		})
	},
}
