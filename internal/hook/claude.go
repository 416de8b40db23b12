package hook

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/boshu2/vigilo/internal/config"
	"github.com/boshu2/vigilo/internal/event"
	"github.com/boshu2/vigilo/internal/vcs"
)

// handleClaude builds an event.Event from a Claude Code PostToolUse-style
// hook payload, or nil if the payload names vigilo's own MCP server (spec
// §4.6: self-calls are never recorded).
func handleClaude(payload map[string]any, opts Options) *event.Event {
	toolName, arguments := parseClaudeTool(payload)
	if hasMcpVigiloPrefix(toolName) {
		return nil
	}

	response := mapField(payload, "tool_response")
	outcome := buildClaudeOutcome(response, opts.StoreResponse)
	risk := event.ClassifyRisk(toolName)
	sessionID := claudeSessionID(payload, opts.RegistryPath)
	diff := computeEditDiff(toolName, arguments)

	cwd := strField(payload, "cwd")
	if cwd == "" {
		cwd = "."
	}
	gitDir := resolveGitDir(toolName, arguments, cwd)
	project := vcs.Probe(gitDir)

	tag := os.Getenv(config.EnvTag)
	if tag == "" {
		tag = project.Branch
	}

	toolUseID := strField(payload, "tool_use_id")
	transcriptPath := strField(payload, "transcript_path")
	var meta transcriptMeta
	if transcriptPath != "" {
		meta = readTranscriptMeta(transcriptPath, toolUseID)
	}

	argsJSON, _ := json.Marshal(arguments)

	return &event.Event{
		ID:         uuid.NewString(),
		Timestamp:  nowRFC3339(),
		SessionID:  sessionID,
		Server:     "claude-code",
		Tool:       toolName,
		Arguments:  argsJSON,
		Outcome:    outcome,
		DurationUs: meta.durationUs,
		Risk:       risk,
		Project: event.Project{
			Root:   project.Root,
			Name:   project.Name,
			Branch: project.Branch,
			Commit: project.Commit,
			Dirty:  project.Dirty,
		},
		Tag:   tag,
		Diff:  diff,
		Tokens: &event.TokenUsage{
			Model:               meta.model,
			InputTokens:         meta.inputTokens,
			OutputTokens:        meta.outputTokens,
			CacheReadTokens:     meta.cacheReadTokens,
			CacheCreationTokens: meta.cacheWriteTokens,
			StopReason:          meta.stopReason,
			ServiceTier:         meta.serviceTier,
		},
		Hook: &event.HookContext{
			PermissionMode: strField(payload, "permission_mode"),
			ToolUseID:      toolUseID,
		},
	}
}

// parseClaudeTool extracts the tool name and arguments, redacting the
// "content" field from a whole-file write (spec §4.6: "large content
// fields that duplicate the diff ... are redacted before persistence").
func parseClaudeTool(payload map[string]any) (string, map[string]any) {
	toolName := strField(payload, "tool_name")
	if toolName == "" {
		toolName = "unknown"
	}
	arguments := mapField(payload, "tool_input")
	if arguments == nil {
		arguments = map[string]any{}
	} else {
		cloned := make(map[string]any, len(arguments))
		for k, v := range arguments {
			cloned[k] = v
		}
		arguments = cloned
	}
	if toolName == "Write" || toolName == "write_file" {
		delete(arguments, "content")
	}
	return toolName, arguments
}

func claudeSessionID(payload map[string]any, registryPath string) string {
	if id, ok := sessionIDFromRegistry(registryPath); ok {
		return id
	}
	key := strField(payload, "transcript_path")
	if key == "" {
		key = strField(payload, "session_id")
	}
	if key != "" {
		return stableUUID(key)
	}
	return uuid.NewString()
}

// buildClaudeOutcome classifies success/failure from the tool_response
// body. Error outcomes always carry a message extracted from the
// response; successful ones only carry the full body when storeResponse
// is set, matching the hook's privacy-conscious default (spec §4.6,
// §7: "Crypto failure on write: abort append" implies responses are
// opt-in, not blanket-persisted).
func buildClaudeOutcome(response map[string]any, storeResponse bool) event.Outcome {
	isError := boolField(response, "is_error")
	if success, ok := response["success"].(bool); ok && !success {
		isError = true
	}
	if isError {
		return event.Err(-1, extractErrorMessage(response))
	}
	if storeResponse {
		raw, err := json.Marshal(response)
		if err == nil {
			return event.OK(raw)
		}
	}
	return event.OK(json.RawMessage("null"))
}

func extractErrorMessage(response map[string]any) string {
	if content, ok := response["content"].([]any); ok && len(content) > 0 {
		if first, ok := content[0].(map[string]any); ok {
			if text, ok := first["text"].(string); ok {
				return text
			}
		}
	}
	if msg, ok := response["error"].(string); ok {
		return msg
	}
	return "error"
}

// resolveGitDir picks the directory a tool call operates on, so the VCS
// Probe inspects the right repository rather than the hook's own cwd.
func resolveGitDir(tool string, args map[string]any, cwd string) string {
	var path string
	switch tool {
	case "Read", "Edit", "Write", "MultiEdit", "NotebookEdit":
		path = strField(args, "file_path")
	case "Glob", "Grep":
		path = strField(args, "path")
	default:
		path = strField(args, "file_path")
		if path == "" {
			path = strField(args, "path")
		}
	}
	if path == "" {
		return cwd
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path
	}
	if dir := filepath.Dir(path); dir != "" {
		return dir
	}
	return cwd
}

// computeEditDiff produces a unified diff for Edit/MultiEdit calls whose
// arguments carry an old_string/new_string pair (spec §4.6).
func computeEditDiff(tool string, args map[string]any) string {
	if tool != "Edit" && tool != "MultiEdit" {
		return ""
	}
	oldStr := strField(args, "old_string")
	newStr := strField(args, "new_string")
	if oldStr == "" && newStr == "" {
		return ""
	}
	diff, ok := event.UnifiedDiff(oldStr, newStr)
	if !ok {
		return ""
	}
	return diff
}
