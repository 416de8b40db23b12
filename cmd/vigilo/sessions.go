package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/vigilo/internal/aggregate"
	"github.com/boshu2/vigilo/internal/ledger"
)

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

// sessionsCmd lists sessions merged by server/project locality (spec
// §4.9), one per line with event counts — not in the original Rust CLI
// surface, supplemented per SPEC_FULL.md.
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List sessions, merged by server/project locality",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := loadFilteredSessions(ledger.Filter{})
		if err != nil {
			return err
		}
		for _, m := range aggregate.MergeSessions(sessions) {
			c := aggregate.FromEvents(m.Events)
			label := m.IDs[0]
			if len(m.IDs) > 1 {
				label = fmt.Sprintf("%s (+%d merged)", label, len(m.IDs)-1)
			}
			fmt.Printf("%-48s %5d events  %4d read  %4d write  %4d exec  %4d errors\n",
				label, c.Total, c.Reads, c.Writes, c.Execs, c.Errors)
		}
		return nil
	},
}
