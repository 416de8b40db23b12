package event

import "strings"

// Risk is a three-valued classification plus Unknown, derived from a tool
// name by a single closed mapping shared by the writer and the reader.
type Risk string

const (
	RiskRead    Risk = "read"
	RiskWrite   Risk = "write"
	RiskExec    Risk = "exec"
	RiskUnknown Risk = "unknown"
)

// mcpProxyPrefix is stripped before matching, e.g. "MCP:list_directory".
const mcpProxyPrefix = "MCP:"

// riskTable is the exhaustive mapping across vigilo's native tool names,
// Claude Code's canonical names, and Cursor's normalized names. It is a
// table, not inline branches, so writer and reader never drift apart.
var riskTable = map[string]Risk{
	"Bash":        RiskExec,
	"Shell":       RiskExec,
	"run_command": RiskExec,

	"Read":           RiskRead,
	"Glob":           RiskRead,
	"Grep":           RiskRead,
	"WebFetch":       RiskRead,
	"WebSearch":      RiskRead,
	"read_file":      RiskRead,
	"list_directory": RiskRead,
	"search_files":   RiskRead,
	"get_file_info":  RiskRead,
	"git_status":     RiskRead,
	"git_diff":       RiskRead,
	"git_log":        RiskRead,

	"Task":            RiskRead,
	"TaskCreate":       RiskRead,
	"TaskUpdate":       RiskRead,
	"TaskGet":          RiskRead,
	"TaskList":         RiskRead,
	"TaskOutput":       RiskRead,
	"EnterPlanMode":    RiskRead,
	"ExitPlanMode":     RiskRead,
	"AskUserQuestion":  RiskRead,
	"PostToolUse":      RiskRead,
	"postToolUse":      RiskRead,

	"Write":            RiskWrite,
	"Edit":             RiskWrite,
	"MultiEdit":        RiskWrite,
	"NotebookEdit":     RiskWrite,
	"write_file":       RiskWrite,
	"create_directory": RiskWrite,
	"delete_file":      RiskWrite,
	"move_file":        RiskWrite,
	"patch_file":       RiskWrite,
	"git_commit":       RiskWrite,
}

// ClassifyRisk maps a (possibly MCP-proxy-prefixed) tool name to its risk
// level. It is pure, total, and deterministic: unknown names map to
// RiskUnknown rather than erroring.
func ClassifyRisk(tool string) Risk {
	tool = strings.TrimPrefix(tool, mcpProxyPrefix)
	if r, ok := riskTable[tool]; ok {
		return r
	}
	return RiskUnknown
}

// Reclassify re-derives risk for an event loaded with Risk == RiskUnknown.
// It is idempotent and non-destructive: a previously-known classification
// is never silently changed, and the result is not written back by the
// reader — only returned to the caller.
func (e *Event) Reclassify() Risk {
	if e.Risk != RiskUnknown {
		return e.Risk
	}
	return ClassifyRisk(e.Tool)
}
