package hook

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/boshu2/vigilo/internal/config"
	"github.com/boshu2/vigilo/internal/event"
	"github.com/boshu2/vigilo/internal/vcs"
)

// handleCursor builds an event.Event from a Cursor hook payload, or nil
// for lifecycle events that carry no tool invocation (spec §4.6: "stop" /
// "beforeSubmitPrompt") or for calls that target vigilo's own MCP server.
func handleCursor(payload map[string]any, opts Options) *event.Event {
	hookEvent := strField(payload, "hook_event_name")
	if hookEvent == "" {
		hookEvent = "PostToolUse"
	}
	if hookEvent == "stop" || hookEvent == "beforeSubmitPrompt" {
		return nil
	}

	sessionID, ok := sessionIDFromRegistry(opts.RegistryPath)
	if !ok {
		conv := strField(payload, "conversation_id")
		if conv != "" {
			sessionID = stableUUID(conv)
		} else {
			sessionID = uuid.NewString()
		}
	}

	cwd := cursorCwd(payload)
	tool, arguments, risk, diff := parseCursorEvent(payload, hookEvent)
	if hasMcpVigiloPrefix(tool) {
		return nil
	}

	gitDir := resolveGitDir(tool, arguments, cwd)
	project := vcs.Probe(gitDir)
	tag := os.Getenv(config.EnvTag)
	if tag == "" {
		tag = project.Branch
	}

	var durationUs uint64
	if ms, ok := payload["duration"].(float64); ok {
		durationUs = uint64(ms * 1000)
	}
	model := resolveCursorModel(payload, strField(payload, "conversation_id"))

	argsJSON, _ := json.Marshal(arguments)

	return &event.Event{
		ID:         uuid.NewString(),
		Timestamp:  nowRFC3339(),
		SessionID:  sessionID,
		Server:     "cursor",
		Tool:       tool,
		Arguments:  argsJSON,
		Outcome:    event.OK(json.RawMessage("null")),
		DurationUs: durationUs,
		Risk:       risk,
		Project: event.Project{
			Root:   project.Root,
			Name:   project.Name,
			Branch: project.Branch,
			Commit: project.Commit,
			Dirty:  project.Dirty,
		},
		Tag:  tag,
		Diff: diff,
		Tokens: &event.TokenUsage{
			Model: model,
		},
		Hook: &event.HookContext{
			ToolUseID: strField(payload, "tool_use_id"),
		},
	}
}

func cursorCwd(payload map[string]any) string {
	if cwd := strField(payload, "cwd"); cwd != "" {
		return cwd
	}
	if roots, ok := payload["workspace_roots"].([]any); ok && len(roots) > 0 {
		if s, ok := roots[0].(string); ok {
			return s
		}
	}
	return "."
}

// parseCursorEvent dispatches on the hook's event kind — Cursor reports
// tool calls through several distinct hook names rather than one uniform
// PostToolUse shape (spec §4.6 canonicalization).
func parseCursorEvent(payload map[string]any, hookEvent string) (tool string, args map[string]any, risk event.Risk, diff string) {
	switch hookEvent {
	case "beforeShellExecution":
		cmd := strField(payload, "command")
		return "Bash", map[string]any{"command": cmd}, event.RiskExec, ""
	case "afterFileEdit":
		return parseCursorFileEdit(payload)
	case "beforeReadFile":
		path := strField(payload, "file_path")
		return "Read", map[string]any{"file_path": path}, event.RiskRead, ""
	case "beforeMCPExecution":
		tool := strField(payload, "tool_name")
		if tool == "" {
			tool = "unknown"
		}
		args := mapField(payload, "tool_input")
		if args == nil {
			args = map[string]any{}
		}
		return tool, args, event.ClassifyRisk(tool), ""
	case "PostToolUse", "postToolUse":
		return parseCursorPostToolUse(payload)
	default:
		return hookEvent, payload, event.RiskUnknown, ""
	}
}

func parseCursorFileEdit(payload map[string]any) (string, map[string]any, event.Risk, string) {
	filePath := strField(payload, "file_path")
	var b strings.Builder
	if edits, ok := payload["edits"].([]any); ok {
		for _, raw := range edits {
			edit, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			oldStr := strField(edit, "old_string")
			newStr := strField(edit, "new_string")
			if d, ok := event.UnifiedDiff(oldStr, newStr); ok {
				b.WriteString(d)
			}
		}
	}
	args := map[string]any{"file_path": filePath}
	return "Edit", args, event.RiskWrite, b.String()
}

func parseCursorPostToolUse(payload map[string]any) (string, map[string]any, event.Risk, string) {
	rawTool := strField(payload, "tool_name")
	if rawTool == "" {
		rawTool = "unknown"
	}
	tool := strings.TrimPrefix(rawTool, "MCP:")
	switch tool {
	case "Shell":
		tool = "Bash"
	case "Write":
		tool = "Edit"
	}

	args := mapField(payload, "tool_input")
	if args == nil {
		args = mapField(payload, "arguments")
	}
	if args == nil {
		args = map[string]any{}
	} else {
		cloned := make(map[string]any, len(args))
		for k, v := range args {
			cloned[k] = v
		}
		args = cloned
	}
	delete(args, "content")

	return tool, args, event.ClassifyRisk(tool), ""
}
