// Package aggregate produces the derived views spec §4.9 names: counts,
// per-model/per-tool/per-file/per-project breakdowns, a cost estimate, a
// date timeline, and locality-based session merging. It operates purely
// on data already loaded by internal/ledger — no rendering, no ANSI.
package aggregate

import (
	"sort"
	"strings"

	"github.com/boshu2/vigilo/internal/event"
)

// EventCounts is the totals-plus-breakdown view over a slice of events.
type EventCounts struct {
	Total  int
	Reads  int
	Writes int
	Execs  int
	Errors int

	TotalUs  uint64
	TotalIn  uint64
	TotalOut uint64
	TotalCR  uint64
	TotalCost float64
}

// FromEvents computes EventCounts over an arbitrary event slice.
func FromEvents(events []*event.Event) EventCounts {
	var c EventCounts
	c.Total = len(events)
	for _, e := range events {
		switch e.Risk {
		case event.RiskRead:
			c.Reads++
		case event.RiskWrite:
			c.Writes++
		case event.RiskExec:
			c.Execs++
		}
		if e.Outcome.IsErr() {
			c.Errors++
		}
		c.TotalUs += e.EffectiveDurationUs()
		if e.Tokens != nil {
			c.TotalIn += e.Tokens.InputTokens
			c.TotalOut += e.Tokens.OutputTokens
			c.TotalCR += e.Tokens.CacheReadTokens
		}
		if cost, ok := EventCostUSD(e); ok {
			c.TotalCost += cost
		}
	}
	return c
}

// Count is a generic (key, count) pair for count_tools/count_files-style
// tables, sorted by count descending.
type Count struct {
	Key   string
	Count int
}

// CountTools tallies calls per tool name.
func CountTools(events []*event.Event) []Count {
	tally := make(map[string]int)
	for _, e := range events {
		tally[e.Tool]++
	}
	return sortedCounts(tally)
}

// CountFiles tallies calls per file, keyed by the last two path segments
// joined by "/" (spec §4.9) — enough to disambiguate same-named files in
// sibling directories without leaking a full absolute path. Encrypted
// path arguments (opaque ciphertext, no "/" to split on meaningfully) are
// skipped rather than counted under a garbled key.
func CountFiles(events []*event.Event) []Count {
	tally := make(map[string]int)
	for _, e := range events {
		path := filePathArg(e)
		if path == "" || looksEncrypted(path) {
			continue
		}
		tally[lastTwoSegments(path)]++
	}
	return sortedCounts(tally)
}

func sortedCounts(tally map[string]int) []Count {
	out := make([]Count, 0, len(tally))
	for k, v := range tally {
		out = append(out, Count{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func lastTwoSegments(path string) string {
	parts := strings.Split(strings.TrimRight(path, "/"), "/")
	if len(parts) <= 2 {
		return strings.Join(parts, "/")
	}
	return strings.Join(parts[len(parts)-2:], "/")
}

func looksEncrypted(s string) bool {
	const prefix = "enc:v1:"
	return strings.HasPrefix(s, prefix)
}

func filePathArg(e *event.Event) string {
	args := eventArgs(e)
	if v, ok := args["file_path"].(string); ok {
		return v
	}
	if v, ok := args["path"].(string); ok {
		return v
	}
	return ""
}

// ModelStats is the per-model breakdown: calls, token sums, estimated
// cost (spec §4.9).
type ModelStats struct {
	Model     string
	Calls     int
	Input     uint64
	Output    uint64
	CacheRead uint64
	Cost      float64
}

// PerModel groups events by their token usage's model field, sorted by
// call count descending.
func PerModel(events []*event.Event) []ModelStats {
	byModel := make(map[string]*ModelStats)
	for _, e := range events {
		if e.Tokens == nil || e.Tokens.Model == "" {
			continue
		}
		model := normalizeModel(e.Tokens.Model)
		s, ok := byModel[model]
		if !ok {
			s = &ModelStats{Model: model}
			byModel[model] = s
		}
		s.Calls++
		s.Input += e.Tokens.InputTokens
		s.Output += e.Tokens.OutputTokens
		s.CacheRead += e.Tokens.CacheReadTokens
		if cost, ok := EventCostUSD(e); ok {
			s.Cost += cost
		}
	}
	out := make([]ModelStats, 0, len(byModel))
	for _, s := range byModel {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Calls != out[j].Calls {
			return out[i].Calls > out[j].Calls
		}
		return out[i].Model < out[j].Model
	})
	return out
}

func normalizeModel(m string) string {
	switch m {
	case "default", "auto":
		return "Auto"
	default:
		return m
	}
}

// ProjectStats is the per-project breakdown with risk sub-counts (spec
// §4.9).
type ProjectStats struct {
	Project string
	Count   int
	Reads   int
	Writes  int
	Execs   int
}

// PerProject groups events by project name (falling back to root, then
// "unknown"), sorted by total count descending.
func PerProject(events []*event.Event) []ProjectStats {
	byProject := make(map[string]*ProjectStats)
	for _, e := range events {
		name := e.Project.Name
		if name == "" {
			name = e.Project.Root
		}
		if name == "" {
			name = "unknown"
		}
		s, ok := byProject[name]
		if !ok {
			s = &ProjectStats{Project: name}
			byProject[name] = s
		}
		s.Count++
		switch e.Risk {
		case event.RiskRead:
			s.Reads++
		case event.RiskWrite:
			s.Writes++
		case event.RiskExec:
			s.Execs++
		}
	}
	out := make([]ProjectStats, 0, len(byProject))
	for _, s := range byProject {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Project < out[j].Project
	})
	return out
}
