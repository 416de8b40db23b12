package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/boshu2/vigilo/internal/userdata"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCmd is a minimal environment/config sanity check, supplemented
// per SPEC_FULL.md from spec.md §6's CLI surface: ledger path writable,
// key file present, registry sidecar present, git on PATH.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Report config, key, and registry health",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadServerConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		path := ledgerPath()
		if cfg.Ledger != "" {
			path = cfg.Ledger
		}
		checkWritableDir("ledger directory", path)

		checkExists("encryption key", userdata.KeyPath())
		checkExists("session registry", userdata.SessionRegistryPath())

		if _, err := exec.LookPath("git"); err != nil {
			fmt.Println("git on PATH: FAIL (not found)")
		} else {
			fmt.Println("git on PATH: ok")
		}

		fmt.Printf("tag: %q (source: %s)\n", cfg.Tag, cfg.TagSource)
		fmt.Printf("timeout: %ds (source: %s)\n", cfg.TimeoutSecs, cfg.TimeoutSource)
		fmt.Printf("store_response: %v\n", cfg.StoreResponse)
		fmt.Printf("hook_store_response: %v (source: %s)\n", cfg.HookStoreResponse, cfg.HookStoreResponseSource)
		return nil
	},
}

func checkWritableDir(label, filePath string) {
	dir := parentDir(filePath)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		fmt.Printf("%s: FAIL (%v)\n", label, err)
		return
	}
	probe := dir + "/.vigilo-doctor-probe"
	if err := os.WriteFile(probe, []byte("ok"), 0600); err != nil {
		fmt.Printf("%s: FAIL (%v)\n", label, err)
		return
	}
	os.Remove(probe)
	fmt.Printf("%s: ok (%s)\n", label, dir)
}

func checkExists(label, path string) {
	if _, err := os.Stat(path); err != nil {
		fmt.Printf("%s: missing (%s) — will be created on first use\n", label, path)
		return
	}
	fmt.Printf("%s: ok (%s)\n", label, path)
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return ""
}
