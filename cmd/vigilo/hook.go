package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/boshu2/vigilo/internal/hook"
	"github.com/boshu2/vigilo/internal/ledger"
	"github.com/boshu2/vigilo/internal/userdata"
)

func init() {
	rootCmd.AddCommand(hookCmd)
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Process a vendor hook event from stdin and append it to the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadServerConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		path := ledgerPath()
		if cfg.Ledger != "" {
			path = cfg.Ledger
		}
		store := ledger.NewStore(path)
		opts := hook.LoadOptions(cfg, userdata.SessionRegistryPath())
		return hook.Run(os.Stdin, store, opts)
	},
}
