package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/boshu2/vigilo/internal/ledger"
)

var tailN int

func init() {
	tailCmd.Flags().IntVar(&tailN, "n", 20, "Number of most recent events to print")
	rootCmd.AddCommand(tailCmd)
}

// tailCmd prints the last N raw events without following — the
// non-live counterpart to watch, supplemented per SPEC_FULL.md.
var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print the last N events without following",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := loadFilteredSessions(ledger.Filter{})
		if err != nil {
			return err
		}
		events := ledger.AllEvents(sessions)
		sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp < events[j].Timestamp })
		if tailN > 0 && len(events) > tailN {
			events = events[len(events)-tailN:]
		}

		key := loadReadKey()
		for _, e := range events {
			printEventLine(e, key)
		}
		return nil
	},
}
