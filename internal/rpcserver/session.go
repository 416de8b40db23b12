package rpcserver

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// WriteRegistry truncates and rewrites the session registry sidecar with
// the two-line "UUID\n<pid>\n" shape (spec §6). The server owns this file
// for the lifetime of its process; the hook normalizer only ever reads it.
func WriteRegistry(path, sessionID string, pid int) error {
	content := fmt.Sprintf("%s\n%d\n", sessionID, pid)
	return os.WriteFile(path, []byte(content), 0600)
}

// ReadRegistry parses the sidecar, returning ok=false if the file is
// absent, truncated, or its first line isn't a well-formed line pair.
func ReadRegistry(path string) (sessionID string, pid int, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return "", 0, false
	}
	sessionID = strings.TrimSpace(scanner.Text())
	if !scanner.Scan() {
		return "", 0, false
	}
	pidStr := strings.TrimSpace(scanner.Text())
	pid, err = strconv.Atoi(pidStr)
	if err != nil || sessionID == "" {
		return "", 0, false
	}
	return sessionID, pid, true
}

// ProcessLive reports whether pid names a live process, via a zero-signal
// probe (spec §4.6: "liveness checked by process existence or a
// zero-signal probe").
func ProcessLive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	if err == nil {
		return true
	}
	return err == syscall.EPERM
}
