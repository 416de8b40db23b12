package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/vigilo/internal/crypto"
	"github.com/boshu2/vigilo/internal/event"
	"github.com/boshu2/vigilo/internal/ledger"
)

var (
	viewSince   string
	viewUntil   string
	viewTool    string
	viewRisk    string
	viewSession string
	viewLast    int
	viewExpand  bool
)

func init() {
	viewCmd.Flags().StringVar(&viewSince, "since", "", "From date (today, yesterday, 7d, 2w, 1m, YYYY-MM-DD)")
	viewCmd.Flags().StringVar(&viewUntil, "until", "", "To date (same formats as --since)")
	viewCmd.Flags().StringVar(&viewTool, "tool", "", "Filter by tool name")
	viewCmd.Flags().StringVar(&viewRisk, "risk", "", "Filter by risk level: read | write | exec")
	viewCmd.Flags().StringVar(&viewSession, "session", "", "Filter by session UUID prefix")
	viewCmd.Flags().IntVar(&viewLast, "last", 0, "Show only the last N sessions")
	viewCmd.Flags().BoolVar(&viewExpand, "expand", false, "Show all events (default: first 5 + last 5 per session)")
	rootCmd.AddCommand(viewCmd)
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "View ledger grouped by session",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := ledger.Filter{Session: viewSession}
		if viewSince != "" {
			filter.Since = parseDateExpr(viewSince)
		}
		if viewUntil != "" {
			filter.Until = parseDateExpr(viewUntil)
		}

		sessions, err := loadFilteredSessions(filter)
		if err != nil {
			return err
		}
		if viewLast > 0 && len(sessions) > viewLast {
			sessions = sessions[len(sessions)-viewLast:]
		}

		key := loadReadKey()
		for _, s := range sessions {
			events := filterEvents(s.Events, viewTool, viewRisk)
			if len(events) == 0 {
				continue
			}
			fmt.Printf("session %s (%d events)\n", s.ID, len(events))
			printSessionEvents(events, key, viewExpand)
		}
		return nil
	},
}

// filterEvents applies --tool/--risk filters that ledger.Filter doesn't
// model itself (those are resolved at load time; these are cheap enough
// to apply after grouping by session).
func filterEvents(events []*event.Event, tool, risk string) []*event.Event {
	if tool == "" && risk == "" {
		return events
	}
	out := make([]*event.Event, 0, len(events))
	for _, e := range events {
		if tool != "" && e.Tool != tool {
			continue
		}
		if risk != "" && string(e.Risk) != risk {
			continue
		}
		out = append(out, e)
	}
	return out
}

const sessionHeadTail = 5

// printSessionEvents prints a session's events, truncating to the first
// and last sessionHeadTail unless expand is set (spec §4.9's default
// session view).
func printSessionEvents(events []*event.Event, key *crypto.Key, expand bool) {
	if expand || len(events) <= 2*sessionHeadTail {
		for _, e := range events {
			printEventLine(e, key)
		}
		return
	}
	for _, e := range events[:sessionHeadTail] {
		printEventLine(e, key)
	}
	fmt.Printf("  ... %d more ...\n", len(events)-2*sessionHeadTail)
	for _, e := range events[len(events)-sessionHeadTail:] {
		printEventLine(e, key)
	}
}
