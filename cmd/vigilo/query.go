package main

import (
	"github.com/spf13/cobra"

	"github.com/boshu2/vigilo/internal/ledger"
)

var (
	querySince   string
	queryUntil   string
	queryTool    string
	queryRisk    string
	querySession string
)

func init() {
	queryCmd.Flags().StringVar(&querySince, "since", "", "From date (today, yesterday, 7d, 2w, 1m, YYYY-MM-DD)")
	queryCmd.Flags().StringVar(&queryUntil, "until", "", "To date (same formats as --since)")
	queryCmd.Flags().StringVar(&queryTool, "tool", "", "Filter by tool name")
	queryCmd.Flags().StringVar(&queryRisk, "risk", "", "Filter by risk level: read | write | exec")
	queryCmd.Flags().StringVar(&querySession, "session", "", "Filter by session UUID prefix")
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Filter events across all sessions, printed one JSON line each",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := ledger.Filter{Session: querySession}
		if querySince != "" {
			filter.Since = parseDateExpr(querySince)
		}
		if queryUntil != "" {
			filter.Until = parseDateExpr(queryUntil)
		}

		sessions, err := loadFilteredSessions(filter)
		if err != nil {
			return err
		}

		key := loadReadKey()
		for _, e := range filterEvents(ledger.AllEvents(sessions), queryTool, queryRisk) {
			printEventJSON(e, key)
		}
		return nil
	},
}
