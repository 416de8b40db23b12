// Package executor implements the Tool Executor: the fixed set of 14
// built-in filesystem, shell, and git tools the JSON-RPC server dispatches
// on behalf of an agent (spec §4.4).
package executor

import (
	"context"
	"fmt"
)

// Executor runs the fixed built-in tool set.
type Executor struct {
	tools map[string]toolFunc
}

type toolFunc func(ctx context.Context, args map[string]any) (string, error)

// New returns an Executor with all 14 built-in tools registered.
func New() *Executor {
	e := &Executor{tools: make(map[string]toolFunc)}
	e.tools["read_file"] = readFile
	e.tools["write_file"] = writeFile
	e.tools["list_directory"] = listDirectory
	e.tools["create_directory"] = createDirectory
	e.tools["delete_file"] = deleteFile
	e.tools["move_file"] = moveFile
	e.tools["search_files"] = searchFiles
	e.tools["run_command"] = runCommand
	e.tools["get_file_info"] = getFileInfo
	e.tools["git_status"] = gitStatus
	e.tools["git_diff"] = gitDiff
	e.tools["git_log"] = gitLog
	e.tools["git_commit"] = gitCommit
	e.tools["patch_file"] = patchFile
	return e
}

// ErrUnknownTool is returned for a tool name not in the fixed set.
type ErrUnknownTool struct{ Tool string }

func (e *ErrUnknownTool) Error() string { return fmt.Sprintf("unknown tool: %s", e.Tool) }

// Execute dispatches to the named tool, propagating ctx's deadline (the
// per-call timeout wrapper lives in the caller — spec §4.4/§5 — so this
// function itself never imposes one).
func (e *Executor) Execute(ctx context.Context, tool string, args map[string]any) (string, error) {
	fn, ok := e.tools[tool]
	if !ok {
		return "", &ErrUnknownTool{Tool: tool}
	}
	return fn(ctx, args)
}

// Names returns the fixed set of tool names, for tools/list enumeration
// and risk-table exhaustiveness checks.
func (e *Executor) Names() []string {
	names := make([]string, 0, len(e.tools))
	for n := range e.tools {
		names = append(names, n)
	}
	return names
}

// argStr extracts a required string argument, erroring with the argument
// name on absence or wrong type.
func argStr(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", fmt.Errorf("missing required argument: %s", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %s must be a string", name)
	}
	return s, nil
}

// argStrOpt extracts an optional string argument, returning "" if absent.
func argStrOpt(args map[string]any, name string) string {
	v, ok := args[name]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// argBoolOpt extracts an optional bool argument, defaulting to false.
func argBoolOpt(args map[string]any, name string) bool {
	v, ok := args[name]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// argIntOpt extracts an optional numeric argument (JSON numbers decode as
// float64), defaulting to def.
func argIntOpt(args map[string]any, name string, def int) int {
	v, ok := args[name]
	if !ok {
		return def
	}
	f, ok := v.(float64)
	if !ok {
		return def
	}
	return int(f)
}
