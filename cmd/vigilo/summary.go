package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/vigilo/internal/aggregate"
	"github.com/boshu2/vigilo/internal/ledger"
)

func init() {
	rootCmd.AddCommand(summaryCmd)
}

// summaryCmd prints the counts-only view: totals plus a per-date
// timeline, skipping the tool/file/model/project breakdowns `stats`
// shows — supplemented per SPEC_FULL.md.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "One-shot overview: counts and a per-date timeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := loadFilteredSessions(ledger.Filter{})
		if err != nil {
			return err
		}
		events := ledger.AllEvents(sessions)
		c := aggregate.FromEvents(events)
		fmt.Printf("%d sessions, %d events (%d read, %d write, %d exec, %d errors), $%.4f estimated\n",
			len(sessions), c.Total, c.Reads, c.Writes, c.Execs, c.Errors, c.TotalCost)

		for _, b := range aggregate.BuildTimeline(events) {
			fmt.Printf("  %s  %5d events  %4d errors\n", b.Date, b.Counts.Total, b.Counts.Errors)
		}
		return nil
	},
}
