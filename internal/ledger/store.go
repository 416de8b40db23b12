// Package ledger implements the append-only, lock-protected, size-rotated
// JSONL event store (Ledger Store, spec §4.3) and the multi-file streaming
// reader over it (Ledger Reader, spec §4.7), plus a tail-follow watcher
// (spec §4.8).
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/boshu2/vigilo/internal/event"
)

const (
	// MaxSize is the active-file size threshold that triggers rotation.
	MaxSize = 10 * 1024 * 1024

	// MaxRotated bounds the number of retained rotated siblings.
	MaxRotated = 5
)

// Store appends events to a single active ledger file, rotating it once it
// grows past MaxSize.
type Store struct {
	Path string
}

// NewStore returns a Store writing to path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Append serializes event as one JSON line, appends it under an exclusive
// advisory lock, and rotates the file if it now exceeds MaxSize. Rotation
// failures are logged to stderr and never surface as an append error —
// the caller's event was already durably written before rotation ran.
func (s *Store) Append(e *event.Event) error {
	if dir := filepath.Dir(s.Path); dir != "" && dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return fmt.Errorf("ledger: creating directory %s: %w", dir, err)
			}
		}
	}

	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("ledger: serializing event: %w", err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("ledger: opening %s: %w", s.Path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return fmt.Errorf("ledger: locking %s: %w", s.Path, err)
	}

	_, writeErr := f.Write(line)
	if writeErr == nil {
		writeErr = f.Sync()
	}

	var size int64
	if info, statErr := f.Stat(); statErr == nil {
		size = info.Size()
	}

	// Unlock before closing; rotation (if any) re-opens the path itself.
	unix.Flock(int(f.Fd()), unix.LOCK_UN)
	f.Close()

	if writeErr != nil {
		return fmt.Errorf("ledger: writing event: %w", writeErr)
	}

	if size > MaxSize {
		if err := rotateAndCleanup(s.Path, MaxRotated); err != nil {
			fmt.Fprintf(os.Stderr, "[vigilo] ledger rotation failed: %v\n", err)
		}
	}

	return nil
}

// ForceRotationCheck rotates the active ledger file if it already exceeds
// MaxSize, without appending an event first. Useful for an operator-driven
// `vigilo prune` that wants to cap ledger size on demand rather than
// waiting for the next Append to trigger it.
func ForceRotationCheck(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("ledger: checking %s: %w", path, err)
	}
	if info.Size() <= MaxSize {
		return nil
	}
	return rotateAndCleanup(path, MaxRotated)
}

// rotateAndCleanup renames the active file to "<stem>.<now-unix-ms>.jsonl",
// recreates an empty active file in its place, and unlinks all but the
// MaxRotated most recently modified matching siblings.
func rotateAndCleanup(path string, keep int) error {
	dir := filepath.Dir(path)
	if dir == "" {
		dir = "."
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	ts := time.Now().UnixMilli()
	rotatedName := fmt.Sprintf("%s.%d.jsonl", stem, ts)
	rotatedPath := filepath.Join(dir, rotatedName)

	if err := os.Rename(path, rotatedPath); err != nil {
		return fmt.Errorf("renaming active ledger: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("recreating active ledger: %w", err)
	}
	f.Close()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading ledger directory: %w", err)
	}

	type rotatedFile struct {
		path     string
		modified time.Time
	}
	var rotated []rotatedFile
	activeName := filepath.Base(path)
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, stem) || !strings.HasSuffix(name, ".jsonl") || name == activeName {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		rotated = append(rotated, rotatedFile{filepath.Join(dir, name), info.ModTime()})
	}

	sort.Slice(rotated, func(i, j int) bool { return rotated[i].modified.After(rotated[j].modified) })

	for _, rf := range rotated[minInt(keep, len(rotated)):] {
		if err := os.Remove(rf.path); err != nil {
			fmt.Fprintf(os.Stderr, "[vigilo] failed to remove rotated ledger %s: %v\n", rf.path, err)
		}
	}

	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// rotatedTimestamp extracts the embedded millisecond timestamp from a
// rotated sibling name "<stem>.<ms>.jsonl", or false if the name doesn't
// match that shape.
func rotatedTimestamp(stem, name string) (int64, bool) {
	rest := strings.TrimPrefix(name, stem+".")
	if rest == name {
		return 0, false
	}
	rest = strings.TrimSuffix(rest, ".jsonl")
	if rest == "" {
		return 0, false
	}
	ts, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}
