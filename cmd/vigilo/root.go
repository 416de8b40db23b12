package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/boshu2/vigilo/internal/config"
	"github.com/boshu2/vigilo/internal/crypto"
	"github.com/boshu2/vigilo/internal/executor"
	"github.com/boshu2/vigilo/internal/ledger"
	"github.com/boshu2/vigilo/internal/rpcserver"
	"github.com/boshu2/vigilo/internal/userdata"
	"github.com/boshu2/vigilo/internal/vcs"
)

// rootCmd is "vigilo" itself: invoked with no subcommand, it runs the
// JSON-RPC Tool Executor server over stdio (spec §4.5) — the MCP server
// mode every vendor hook talks to. Every other entry point is a
// subcommand below.
var rootCmd = &cobra.Command{
	Use:   "vigilo",
	Short: "Observe what AI agents do — every tool call logged, nothing sent anywhere",
	Long: `vigilo is an MCP tool executor and activity ledger for AI coding agents.

USAGE:
  vigilo                          MCP server mode (reads stdio)
  vigilo view     [OPTIONS]       View ledger grouped by session
  vigilo watch                    Live tail of incoming events
  vigilo stats    [OPTIONS]       Aggregate stats across all sessions
  vigilo errors   [OPTIONS]       Show errors grouped by tool
  vigilo diff     [OPTIONS]       Show file diffs grouped by session
  vigilo query    [OPTIONS]       Filter events across all sessions
  vigilo export   [OPTIONS]       Dump all events as CSV or JSON to stdout
  vigilo sessions [OPTIONS]       List sessions, merged by server/project locality
  vigilo tail     [OPTIONS]       Print the last N events without following
  vigilo summary                  One-shot overview: counts and a date timeline
  vigilo prune                    Force a ledger rotation check on demand
  vigilo doctor                   Report config, key, and registry health
  vigilo hook                     Process a vendor hook event (reads stdin)
  vigilo generate-key             Generate a base64 AES-256 encryption key

ENVIRONMENT:
  VIGILO_LEDGER           Path to ledger file (default: ~/.vigilo/events.jsonl)
  VIGILO_ENCRYPTION_KEY   Base64 AES-256 key — encrypts arguments and results
  VIGILO_TAG              Session tag (default: current git branch)
  VIGILO_TIMEOUT_SECS     Per-call executor timeout (default: 30)`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

// Execute runs the root command, exiting nonzero on error.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "vigilo: %v\n", err)
		os.Exit(1)
	}
}

// ledgerPath resolves the active ledger file location: VIGILO_LEDGER, or
// the default under the user's data directory (spec §4.1).
func ledgerPath() string {
	if v := os.Getenv(config.EnvLedger); v != "" {
		return v
	}
	return userdata.LedgerPath()
}

// gitBranchFallback resolves the current directory's git branch, used as
// the session tag when none is configured (spec §4.5).
func gitBranchFallback() string {
	return vcs.Probe(".").Branch
}

// loadServerConfig loads the KEY=VALUE config file plus environment
// overrides for a server/hook invocation.
func loadServerConfig() (*config.Config, error) {
	return config.Load(userdata.ConfigPath(), gitBranchFallback)
}

// runServer wires up the Tool Executor, ledger store, and session
// registry, then runs the JSON-RPC dispatch loop over stdio until stdin
// closes (spec §4.5).
func runServer(ctx context.Context) error {
	cfg, err := loadServerConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	path := ledgerPath()
	if cfg.Ledger != "" {
		path = cfg.Ledger
	}

	key, _, err := crypto.LoadOrCreateKey(config.EnvKey, userdata.KeyPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[vigilo] encryption key unavailable, arguments will be stored in plaintext: %v\n", err)
		key = nil
	}
	if key != nil {
		defer key.Close()
	}

	store := ledger.NewStore(path)
	exec := executor.New()
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	srv := rpcserver.New(exec, store, key, "native", cwd, timeout)
	srv.Tag = cfg.Tag

	if err := rpcserver.WriteRegistry(userdata.SessionRegistryPath(), srv.SessionID, os.Getpid()); err != nil {
		fmt.Fprintf(os.Stderr, "[vigilo] session registry unavailable: %v\n", err)
	}

	fmt.Fprintf(os.Stderr, "[vigilo] session=%s\n", srv.SessionID)
	fmt.Fprintf(os.Stderr, "[vigilo] ledger=%s\n", path)

	return srv.Run(ctx, os.Stdin, os.Stdout)
}
