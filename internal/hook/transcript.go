package hook

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"time"
)

const (
	transcriptUsageTail    = 64 * 1024
	transcriptDurationTail = 512 * 1024
)

// transcriptMeta is what the hook normalizer can recover from a Claude
// Code transcript file without parsing it in full (spec §4.6).
type transcriptMeta struct {
	model            string
	inputTokens      uint64
	outputTokens     uint64
	cacheReadTokens  uint64
	cacheWriteTokens uint64
	stopReason       string
	serviceTier      string
	durationUs       uint64
}

// readTranscriptMeta scans the tail of a transcript for the last
// observed token-usage fields, then (if toolUseID is non-empty) a second,
// wider tail pass to correlate the tool_use/tool_result timestamp pair
// for that call's duration.
func readTranscriptMeta(path, toolUseID string) transcriptMeta {
	f, err := os.Open(path)
	if err != nil {
		return transcriptMeta{}
	}
	defer f.Close()

	size, err := fileSize(f)
	if err != nil {
		return transcriptMeta{}
	}

	meta := scanTranscriptUsage(f, size)
	if toolUseID != "" {
		meta.durationUs = computeToolDuration(f, size, toolUseID)
	}
	return meta
}

func fileSize(f *os.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// tailLines seeks to size-window (clamped at 0), discards the first
// (likely partial) line, and returns a scanner over the rest.
func tailLines(f *os.File, size, window int64) *bufio.Scanner {
	start := size - window
	if start < 0 {
		start = 0
	}
	f.Seek(start, 0)
	r := bufio.NewReaderSize(f, 64*1024)
	if start > 0 {
		r.ReadString('\n')
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return scanner
}

func scanTranscriptUsage(f *os.File, size int64) transcriptMeta {
	var meta transcriptMeta
	scanner := tailLines(f, size, transcriptUsageTail)
	for scanner.Scan() {
		var v map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &v); err != nil {
			continue
		}
		if strField(v, "type") != "assistant" {
			continue
		}
		msg := mapField(v, "message")
		if msg == nil {
			continue
		}
		if m := strField(msg, "model"); m != "" {
			meta.model = m
		}
		if r := strField(msg, "stop_reason"); r != "" {
			meta.stopReason = r
		}
		usage := mapField(msg, "usage")
		if usage == nil {
			continue
		}
		if v, ok := uintField(usage, "input_tokens"); ok {
			meta.inputTokens = v
		}
		if v, ok := uintField(usage, "output_tokens"); ok {
			meta.outputTokens = v
		}
		if v, ok := uintField(usage, "cache_read_input_tokens"); ok {
			meta.cacheReadTokens = v
		}
		if v, ok := uintField(usage, "cache_creation_input_tokens"); ok {
			meta.cacheWriteTokens = v
		}
		if t := strField(usage, "service_tier"); t != "" {
			meta.serviceTier = t
		}
	}
	return meta
}

func computeToolDuration(f *os.File, size int64, id string) uint64 {
	scanner := tailLines(f, size, transcriptDurationTail)
	var invokeTs, resultTs int64
	haveInvoke, haveResult := false, false

	for scanner.Scan() {
		line := scanner.Bytes()
		if !strings.Contains(string(line), id) {
			continue
		}
		var v map[string]any
		if err := json.Unmarshal(line, &v); err != nil {
			continue
		}
		ts, ok := parseTimestampMicros(v)
		if !ok {
			continue
		}
		switch strField(v, "type") {
		case "assistant":
			if hasToolUseID(mapField(v, "message"), id) {
				invokeTs, haveInvoke = ts, true
			}
		case "user":
			if hasToolResultID(mapField(v, "message"), id) {
				resultTs, haveResult = ts, true
			}
		}
	}

	if !haveInvoke || !haveResult {
		return 0
	}
	diff := resultTs - invokeTs
	if diff <= 0 {
		return 0
	}
	return uint64(diff)
}

func parseTimestampMicros(v map[string]any) (int64, bool) {
	s := strField(v, "timestamp")
	if s == "" {
		return 0, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, false
	}
	return t.UnixMicro(), true
}

func hasToolUseID(message map[string]any, id string) bool {
	content, ok := message["content"].([]any)
	if !ok {
		return false
	}
	for _, raw := range content {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if strField(item, "type") == "tool_use" && strField(item, "id") == id {
			return true
		}
	}
	return false
}

func hasToolResultID(message map[string]any, id string) bool {
	content, ok := message["content"].([]any)
	if !ok {
		return false
	}
	for _, raw := range content {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if strField(item, "type") == "tool_result" && strField(item, "tool_use_id") == id {
			return true
		}
	}
	return false
}

func uintField(m map[string]any, key string) (uint64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok || f < 0 {
		return 0, false
	}
	return uint64(f), true
}
