package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/vigilo/internal/ledger"
)

var (
	diffSince   string
	diffUntil   string
	diffSession string
)

func init() {
	diffCmd.Flags().StringVar(&diffSince, "since", "", "From date (today, yesterday, 7d, 2w, 1m, YYYY-MM-DD)")
	diffCmd.Flags().StringVar(&diffUntil, "until", "", "To date (same formats as --since)")
	diffCmd.Flags().StringVar(&diffSession, "session", "", "Filter by session UUID prefix")
	rootCmd.AddCommand(diffCmd)
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show file diffs grouped by session",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := ledger.Filter{Session: diffSession}
		if diffSince != "" {
			filter.Since = parseDateExpr(diffSince)
		}
		if diffUntil != "" {
			filter.Until = parseDateExpr(diffUntil)
		}

		sessions, err := loadFilteredSessions(filter)
		if err != nil {
			return err
		}

		key := loadReadKey()
		for _, s := range sessions {
			printed := false
			for _, e := range s.Events {
				if e.Diff == "" {
					continue
				}
				if !printed {
					fmt.Printf("session %s\n", s.ID)
					printed = true
				}
				fmt.Printf("--- %s %s (%s) ---\n", e.Timestamp, e.Tool, e.Project.Name)
				fmt.Println(maybeDecrypt(key, e.Diff))
			}
		}
		return nil
	},
}
