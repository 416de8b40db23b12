package rpcserver

// toolSchema describes one entry of the tools/list response.
type toolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func objectSchema(required []string, props map[string]any) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func stringProp() map[string]any { return map[string]any{"type": "string"} }

func numberPropDesc(desc string) map[string]any {
	return map[string]any{"type": "number", "description": desc}
}

func boolProp() map[string]any { return map[string]any{"type": "boolean"} }

func boolPropDesc(desc string) map[string]any {
	return map[string]any{"type": "boolean", "description": desc}
}

// toolSchemas returns the fixed tools/list enumeration for all 14 built-in
// tools, grouped the way the original tool server groups them.
func toolSchemas() []toolSchema {
	var tools []toolSchema
	tools = append(tools, readTools()...)
	tools = append(tools, writeTools()...)
	tools = append(tools, searchInfoTools()...)
	tools = append(tools, commandTools()...)
	tools = append(tools, gitTools()...)
	return tools
}

func readTools() []toolSchema {
	return []toolSchema{
		{
			Name:        "read_file",
			Description: "Read the contents of a file, optionally limited to a line range",
			InputSchema: objectSchema([]string{"path"}, map[string]any{
				"path":       stringProp(),
				"start_line": numberPropDesc("First line to read (1-indexed, inclusive)"),
				"end_line":   numberPropDesc("Last line to read (1-indexed, inclusive)"),
			}),
		},
		{
			Name:        "list_directory",
			Description: "List entries inside a directory",
			InputSchema: objectSchema([]string{"path"}, map[string]any{"path": stringProp()}),
		},
	}
}

func writeTools() []toolSchema {
	return []toolSchema{
		{
			Name:        "write_file",
			Description: "Write content to a file, creating it if it does not exist",
			InputSchema: objectSchema([]string{"path", "content"}, map[string]any{
				"path":    stringProp(),
				"content": stringProp(),
			}),
		},
		{
			Name:        "create_directory",
			Description: "Create a directory and any missing parent directories",
			InputSchema: objectSchema([]string{"path"}, map[string]any{"path": stringProp()}),
		},
		{
			Name:        "delete_file",
			Description: "Delete a file",
			InputSchema: objectSchema([]string{"path"}, map[string]any{"path": stringProp()}),
		},
	}
}

func searchInfoTools() []toolSchema {
	return []toolSchema{
		{
			Name:        "move_file",
			Description: "Move or rename a file or directory",
			InputSchema: objectSchema([]string{"from", "to"}, map[string]any{
				"from": stringProp(),
				"to":   stringProp(),
			}),
		},
		{
			Name:        "search_files",
			Description: "Search for a text pattern across files in a directory",
			InputSchema: objectSchema([]string{"path", "pattern"}, map[string]any{
				"path":    stringProp(),
				"pattern": stringProp(),
				"regex":   boolPropDesc("Treat pattern as a regular expression"),
			}),
		},
		{
			Name:        "get_file_info",
			Description: "Get metadata for a file or directory (size, type, modified time)",
			InputSchema: objectSchema([]string{"path"}, map[string]any{"path": stringProp()}),
		},
		{
			Name:        "patch_file",
			Description: "Apply a unified diff patch to a file",
			InputSchema: objectSchema([]string{"path", "patch"}, map[string]any{
				"path":  stringProp(),
				"patch": stringProp(),
			}),
		},
	}
}

func commandTools() []toolSchema {
	return []toolSchema{
		{
			Name:        "run_command",
			Description: "Run a shell command; returns stdout on success, or the exit code and stderr on failure",
			InputSchema: objectSchema([]string{"command"}, map[string]any{
				"command": stringProp(),
				"cwd":     stringProp(),
			}),
		},
	}
}

func gitTools() []toolSchema {
	return []toolSchema{
		{
			Name:        "git_status",
			Description: "Show the working tree status of a git repository",
			InputSchema: objectSchema([]string{"path"}, map[string]any{"path": stringProp()}),
		},
		{
			Name:        "git_diff",
			Description: "Show unstaged changes in a git repository",
			InputSchema: objectSchema([]string{"path"}, map[string]any{
				"path":   stringProp(),
				"staged": boolProp(),
			}),
		},
		{
			Name:        "git_log",
			Description: "Show recent commits in a git repository",
			InputSchema: objectSchema([]string{"path"}, map[string]any{
				"path":  stringProp(),
				"count": map[string]any{"type": "number"},
			}),
		},
		{
			Name:        "git_commit",
			Description: "Stage all changes and create a git commit with the given message",
			InputSchema: objectSchema([]string{"path", "message"}, map[string]any{
				"path":    stringProp(),
				"message": stringProp(),
			}),
		},
	}
}
