// Package userdata resolves the fixed set of paths Vigilo reads and
// writes under the user's data directory: the config file, the
// encryption key file, the session registry sidecar, and the default
// ledger location.
package userdata

import (
	"os"
	"path/filepath"
)

// DirName is the directory under $HOME holding all of Vigilo's per-user
// state.
const DirName = ".vigilo"

// Dir returns "<home>/.vigilo", falling back to the relative path
// ".vigilo" if HOME cannot be resolved (matches the original implementation's degrade-gracefully
// behavior rather than erroring out of a read-only command).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DirName
	}
	return filepath.Join(home, DirName)
}

// LedgerPath returns the default ledger location.
func LedgerPath() string { return filepath.Join(Dir(), "events.jsonl") }

// KeyPath returns the default encryption key file location.
func KeyPath() string { return filepath.Join(Dir(), "encryption.key") }

// ConfigPath returns the default KEY=VALUE config file location.
func ConfigPath() string { return filepath.Join(Dir(), "config") }

// SessionRegistryPath returns the default session registry sidecar
// location.
func SessionRegistryPath() string { return filepath.Join(Dir(), "mcp-session") }
