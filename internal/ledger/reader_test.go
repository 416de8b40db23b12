package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/boshu2/vigilo/internal/event"
)

func writeRawLines(t *testing.T, path string, lines []string) {
	t.Helper()
	var data string
	for _, l := range lines {
		data += l + "\n"
	}
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoadSkipsMalformedAndBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")
	writeRawLines(t, path, []string{
		`{"id":"1","timestamp":"2026-07-30T00:00:00Z","session_id":"s1","server":"native","tool":"read_file","outcome":{"status":"ok"},"duration_us":1,"risk":"read","project":{"dirty":false},"timed_out":false}`,
		``,
		`not json at all`,
		`{"id":"2","timestamp":"2026-07-30T00:01:00Z","session_id":"s1","server":"native","tool":"write_file","outcome":{"status":"ok"},"duration_us":2,"risk":"write","project":{"dirty":false},"timed_out":false}`,
	})

	sessions, err := Load(path, Filter{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	if len(sessions[0].Events) != 2 {
		t.Fatalf("got %d events, want 2 (malformed/blank skipped)", len(sessions[0].Events))
	}
}

func TestLoadReturnsErrNoLedgerWhenMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "nope.jsonl"), Filter{})
	if err == nil {
		t.Fatalf("Load() on missing ledger should error")
	}
	if _, ok := err.(*ErrNoLedger); !ok {
		t.Fatalf("Load() error type = %T, want *ErrNoLedger", err)
	}
}

func TestLoadGroupsSessionsSortedByLastEventTimestamp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")
	writeRawLines(t, path, []string{
		`{"id":"1","timestamp":"2026-07-30T10:00:00Z","session_id":"s-later","server":"native","tool":"read_file","outcome":{"status":"ok"},"duration_us":1,"risk":"read","project":{"dirty":false},"timed_out":false}`,
		`{"id":"2","timestamp":"2026-07-30T09:00:00Z","session_id":"s-earlier","server":"native","tool":"read_file","outcome":{"status":"ok"},"duration_us":1,"risk":"read","project":{"dirty":false},"timed_out":false}`,
	})

	sessions, err := Load(path, Filter{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if sessions[len(sessions)-1].ID != "s-later" {
		t.Errorf("last session = %q, want %q (most recently active last)", sessions[len(sessions)-1].ID, "s-later")
	}
}

func TestLoadFiltersBySinceUntilAndSession(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")
	writeRawLines(t, path, []string{
		`{"id":"1","timestamp":"2026-07-01T00:00:00Z","session_id":"abc123","server":"native","tool":"read_file","outcome":{"status":"ok"},"duration_us":1,"risk":"read","project":{"dirty":false},"timed_out":false}`,
		`{"id":"2","timestamp":"2026-07-15T00:00:00Z","session_id":"abc123","server":"native","tool":"read_file","outcome":{"status":"ok"},"duration_us":1,"risk":"read","project":{"dirty":false},"timed_out":false}`,
		`{"id":"3","timestamp":"2026-07-20T00:00:00Z","session_id":"xyz999","server":"native","tool":"read_file","outcome":{"status":"ok"},"duration_us":1,"risk":"read","project":{"dirty":false},"timed_out":false}`,
	})

	sessions, err := Load(path, Filter{Since: "2026-07-10", Until: "2026-07-18", Session: "abc"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(sessions) != 1 || len(sessions[0].Events) != 1 {
		t.Fatalf("filters did not narrow correctly: %+v", sessions)
	}
	if sessions[0].Events[0].ID != "2" {
		t.Errorf("matched event id = %q, want %q", sessions[0].Events[0].ID, "2")
	}
}

func TestLoadReclassifiesUnknownRiskNonDestructively(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")
	writeRawLines(t, path, []string{
		`{"id":"1","timestamp":"2026-07-30T00:00:00Z","session_id":"s1","server":"native","tool":"git_status","outcome":{"status":"ok"},"duration_us":1,"risk":"unknown","project":{"dirty":false},"timed_out":false}`,
	})

	sessions, err := Load(path, Filter{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if sessions[0].Events[0].Risk != event.RiskRead {
		t.Errorf("reclassified risk = %v, want %v", sessions[0].Events[0].Risk, event.RiskRead)
	}

	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), `"risk":"unknown"`) {
		t.Errorf("reclassification must not be written back to disk")
	}
}
