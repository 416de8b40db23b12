package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/boshu2/vigilo/internal/crypto"
	"github.com/boshu2/vigilo/internal/event"
	"github.com/boshu2/vigilo/internal/ledger"
)

var exportFormat string

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv or json")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump all events as CSV or JSON to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := loadFilteredSessions(ledger.Filter{})
		if err != nil {
			return err
		}
		events := ledger.AllEvents(sessions)
		key := loadReadKey()

		switch exportFormat {
		case "json":
			for _, e := range events {
				printEventJSON(e, key)
			}
			return nil
		case "csv":
			return exportCSV(events, key)
		default:
			return fmt.Errorf("unknown export format %q (want csv or json)", exportFormat)
		}
	},
}

var csvHeader = []string{
	"id", "timestamp", "session_id", "server", "tool", "risk", "status",
	"duration_us", "project", "branch", "arguments", "error",
}

func exportCSV(events []*event.Event, key *crypto.Key) error {
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range events {
		status, errMsg := "ok", ""
		if e.Outcome.IsErr() {
			status, errMsg = "err", e.Outcome.Message
		}
		row := []string{
			e.ID, e.Timestamp, e.SessionID, e.Server, e.Tool, string(e.Risk), status,
			strconv.FormatUint(e.EffectiveDurationUs(), 10), e.Project.Name, e.Project.Branch,
			argsDisplay(e, key), errMsg,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
