package ledger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/boshu2/vigilo/internal/event"
)

// ErrNoLedger is returned when the ledger file (and no rotated siblings)
// exist at the configured path.
type ErrNoLedger struct{ Path string }

func (e *ErrNoLedger) Error() string { return fmt.Sprintf("no ledger found at %s", e.Path) }

// Filter composes the load-time predicates from spec §4.7. Zero values
// mean "no constraint".
type Filter struct {
	Since   string // YYYY-MM-DD, inclusive, lexical compare on timestamp[:10]
	Until   string // YYYY-MM-DD, inclusive
	Session string // prefix match against session id
}

func (f Filter) matchesDate(timestamp string) bool {
	if len(timestamp) < 10 {
		return f.Since == "" && f.Until == ""
	}
	day := timestamp[:10]
	if f.Since != "" && day < f.Since {
		return false
	}
	if f.Until != "" && day > f.Until {
		return false
	}
	return true
}

func (f Filter) matchesSession(sessionID string) bool {
	if f.Session == "" {
		return true
	}
	return strings.HasPrefix(sessionID, f.Session)
}

func (f Filter) matches(e *event.Event) bool {
	return f.matchesDate(e.Timestamp) && f.matchesSession(e.SessionID)
}

// Session is a materialized grouping of events sharing a session id.
type Session struct {
	ID     string
	Events []*event.Event
}

// allLedgerFiles enumerates the active path and its rotated siblings,
// ordered by embedded millisecond timestamp ascending, with the active
// file last.
func allLedgerFiles(path string) ([]string, error) {
	dir := filepath.Dir(path)
	if dir == "" {
		dir = "."
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	activeName := filepath.Base(path)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger: reading directory %s: %w", dir, err)
	}

	type rotatedEntry struct {
		path string
		ts   int64
	}
	var rotated []rotatedEntry
	activeExists := false
	for _, entry := range entries {
		name := entry.Name()
		if name == activeName {
			activeExists = true
			continue
		}
		if !strings.HasPrefix(name, stem) || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		ts, ok := rotatedTimestamp(stem, name)
		if !ok {
			continue
		}
		rotated = append(rotated, rotatedEntry{filepath.Join(dir, name), ts})
	}
	sort.Slice(rotated, func(i, j int) bool { return rotated[i].ts < rotated[j].ts })

	files := make([]string, 0, len(rotated)+1)
	for _, r := range rotated {
		files = append(files, r.path)
	}
	if activeExists {
		files = append(files, path)
	}
	return files, nil
}

// Load reads every ledger file (active + rotated), applies filter, and
// groups the surviving events into sessions ordered by the last event's
// timestamp ascending. Blank lines and lines that fail to parse are
// skipped silently (spec §7: malformed input is never fatal to a stream).
func Load(path string, filter Filter) ([]Session, error) {
	files, err := allLedgerFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &ErrNoLedger{Path: path}
	}

	order := make([]string, 0)
	bySession := make(map[string][]*event.Event)

	for _, file := range files {
		if err := streamFile(file, func(e *event.Event) {
			if e.Risk == event.RiskUnknown {
				e.Risk = e.Reclassify()
			}
			if !filter.matches(e) {
				return
			}
			if _, ok := bySession[e.SessionID]; !ok {
				order = append(order, e.SessionID)
			}
			bySession[e.SessionID] = append(bySession[e.SessionID], e)
		}); err != nil {
			return nil, err
		}
	}

	sessions := make([]Session, 0, len(order))
	for _, id := range order {
		sessions = append(sessions, Session{ID: id, Events: bySession[id]})
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return lastTimestamp(sessions[i]) < lastTimestamp(sessions[j])
	})
	return sessions, nil
}

func lastTimestamp(s Session) string {
	if len(s.Events) == 0 {
		return ""
	}
	return s.Events[len(s.Events)-1].Timestamp
}

// streamFile parses one ledger file line by line, calling fn for each
// successfully parsed event. Blank and malformed lines are skipped.
func streamFile(path string, fn func(*event.Event)) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("ledger: opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e event.Event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		fn(&e)
	}
	return nil
}

// AllEvents flattens a session list back into a single chronological-ish
// slice in file order (session-grouped, not globally timestamp-sorted) —
// convenient for aggregation passes that don't care about session shape.
func AllEvents(sessions []Session) []*event.Event {
	var out []*event.Event
	for _, s := range sessions {
		out = append(out, s.Events...)
	}
	return out
}
