package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/vigilo/internal/aggregate"
	"github.com/boshu2/vigilo/internal/event"
	"github.com/boshu2/vigilo/internal/ledger"
)

var (
	statsSince string
	statsUntil string
)

func init() {
	statsCmd.Flags().StringVar(&statsSince, "since", "", "From date (today, yesterday, 7d, 2w, 1m, YYYY-MM-DD)")
	statsCmd.Flags().StringVar(&statsUntil, "until", "", "To date (same formats as --since)")
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate stats across all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := ledger.Filter{}
		if statsSince != "" {
			filter.Since = parseDateExpr(statsSince)
		}
		if statsUntil != "" {
			filter.Until = parseDateExpr(statsUntil)
		}

		sessions, err := loadFilteredSessions(filter)
		if err != nil {
			return err
		}
		events := ledger.AllEvents(sessions)
		printStats(events)
		return nil
	},
}

func printStats(events []*event.Event) {
	c := aggregate.FromEvents(events)
	fmt.Printf("events: %d (%d read, %d write, %d exec, %d errors)\n", c.Total, c.Reads, c.Writes, c.Execs, c.Errors)
	fmt.Printf("tokens: %d in, %d out, %d cache-read, $%.4f estimated\n", c.TotalIn, c.TotalOut, c.TotalCR, c.TotalCost)

	fmt.Println("\ntools:")
	for _, t := range aggregate.CountTools(events) {
		fmt.Printf("  %-24s %d\n", t.Key, t.Count)
	}

	fmt.Println("\nfiles:")
	for _, f := range aggregate.CountFiles(events) {
		fmt.Printf("  %-40s %d\n", f.Key, f.Count)
	}

	fmt.Println("\nmodels:")
	for _, m := range aggregate.PerModel(events) {
		fmt.Printf("  %-24s %5d calls  %8d in  %8d out  $%.4f\n", m.Model, m.Calls, m.Input, m.Output, m.Cost)
	}

	fmt.Println("\nprojects:")
	for _, p := range aggregate.PerProject(events) {
		fmt.Printf("  %-24s %5d calls (%d read, %d write, %d exec)\n", p.Project, p.Count, p.Reads, p.Writes, p.Execs)
	}
}
