package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/boshu2/vigilo/internal/event"
	"github.com/boshu2/vigilo/internal/ledger"
)

var (
	errorsSince string
	errorsUntil string
)

func init() {
	errorsCmd.Flags().StringVar(&errorsSince, "since", "", "From date (today, yesterday, 7d, 2w, 1m, YYYY-MM-DD)")
	errorsCmd.Flags().StringVar(&errorsUntil, "until", "", "To date (same formats as --since)")
	rootCmd.AddCommand(errorsCmd)
}

var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "Show errors grouped by tool",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := ledger.Filter{}
		if errorsSince != "" {
			filter.Since = parseDateExpr(errorsSince)
		}
		if errorsUntil != "" {
			filter.Until = parseDateExpr(errorsUntil)
		}

		sessions, err := loadFilteredSessions(filter)
		if err != nil {
			return err
		}

		byTool := make(map[string][]*event.Event)
		for _, e := range ledger.AllEvents(sessions) {
			if e.Outcome.IsErr() {
				byTool[e.Tool] = append(byTool[e.Tool], e)
			}
		}

		tools := make([]string, 0, len(byTool))
		for t := range byTool {
			tools = append(tools, t)
		}
		sort.Slice(tools, func(i, j int) bool { return len(byTool[tools[i]]) > len(byTool[tools[j]]) })

		for _, t := range tools {
			errs := byTool[t]
			fmt.Printf("%s (%d errors)\n", t, len(errs))
			for _, e := range errs {
				fmt.Printf("  %s  [%d] %s\n", e.Timestamp, e.Outcome.Code, e.Outcome.Message)
			}
		}
		return nil
	},
}
