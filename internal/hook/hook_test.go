package hook

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/boshu2/vigilo/internal/event"
)

func TestParseClaudeToolExtractsNameAndArgs(t *testing.T) {
	payload := map[string]any{
		"tool_name":  "Read",
		"tool_input": map[string]any{"file_path": "src/foo.go"},
	}
	name, args := parseClaudeTool(payload)
	if name != "Read" {
		t.Errorf("name = %q, want Read", name)
	}
	if args["file_path"] != "src/foo.go" {
		t.Errorf("file_path = %v", args["file_path"])
	}
}

func TestParseClaudeToolStripsContentFromWrite(t *testing.T) {
	payload := map[string]any{
		"tool_name":  "Write",
		"tool_input": map[string]any{"file_path": "src/foo.go", "content": "big blob"},
	}
	_, args := parseClaudeTool(payload)
	if _, ok := args["content"]; ok {
		t.Error("content should have been stripped")
	}
	if args["file_path"] != "src/foo.go" {
		t.Errorf("file_path = %v", args["file_path"])
	}
}

func TestParseClaudeToolStripsContentFromWriteFile(t *testing.T) {
	payload := map[string]any{
		"tool_name":  "write_file",
		"tool_input": map[string]any{"file_path": "src/foo.go", "content": "big blob"},
	}
	_, args := parseClaudeTool(payload)
	if _, ok := args["content"]; ok {
		t.Error("content should have been stripped")
	}
}

func TestClaudeSessionIDFromTranscriptPathIsStable(t *testing.T) {
	payload := map[string]any{"transcript_path": "transcripts/session.jsonl"}
	id1 := claudeSessionID(payload, "/nonexistent-registry")
	id2 := claudeSessionID(payload, "/nonexistent-registry")
	if id1 != id2 {
		t.Errorf("claudeSessionID not stable: %q != %q", id1, id2)
	}
}

func TestBuildClaudeOutcomeOK(t *testing.T) {
	response := map[string]any{"content": []any{map[string]any{"text": "hello"}}}
	outcome := buildClaudeOutcome(response, false)
	if outcome.IsErr() {
		t.Error("expected ok outcome")
	}
}

func TestBuildClaudeOutcomeErrorViaIsError(t *testing.T) {
	response := map[string]any{"is_error": true, "content": []any{map[string]any{"text": "fail"}}}
	outcome := buildClaudeOutcome(response, false)
	if !outcome.IsErr() {
		t.Error("expected err outcome")
	}
	if outcome.Message != "fail" {
		t.Errorf("Message = %q, want fail", outcome.Message)
	}
}

func TestBuildClaudeOutcomeErrorViaSuccessFalse(t *testing.T) {
	response := map[string]any{"success": false, "error": "bad"}
	outcome := buildClaudeOutcome(response, false)
	if !outcome.IsErr() {
		t.Error("expected err outcome")
	}
	if outcome.Message != "bad" {
		t.Errorf("Message = %q, want bad", outcome.Message)
	}
}

func TestBuildClaudeOutcomeOkStoresNullByDefault(t *testing.T) {
	response := map[string]any{"content": []any{map[string]any{"text": "hello"}}}
	outcome := buildClaudeOutcome(response, false)
	if string(outcome.Result) != "null" {
		t.Errorf("Result = %s, want null", outcome.Result)
	}
}

func TestCursorCwdFromCwdField(t *testing.T) {
	payload := map[string]any{"cwd": "workspace/my-project"}
	if got := cursorCwd(payload); got != "workspace/my-project" {
		t.Errorf("cursorCwd = %q", got)
	}
}

func TestCursorCwdFromWorkspaceRoots(t *testing.T) {
	payload := map[string]any{"workspace_roots": []any{"workspace/other"}}
	if got := cursorCwd(payload); got != "workspace/other" {
		t.Errorf("cursorCwd = %q", got)
	}
}

func TestCursorCwdFallsBackToDot(t *testing.T) {
	if got := cursorCwd(map[string]any{}); got != "." {
		t.Errorf("cursorCwd = %q, want .", got)
	}
}

func TestParseCursorEventShellExecution(t *testing.T) {
	payload := map[string]any{"command": "ls -la"}
	tool, args, risk, diff := parseCursorEvent(payload, "beforeShellExecution")
	if tool != "Bash" || args["command"] != "ls -la" || risk != event.RiskExec || diff != "" {
		t.Errorf("got tool=%q args=%v risk=%v diff=%q", tool, args, risk, diff)
	}
}

func TestParseCursorEventReadFile(t *testing.T) {
	payload := map[string]any{"file_path": "src/main.go"}
	tool, args, risk, _ := parseCursorEvent(payload, "beforeReadFile")
	if tool != "Read" || args["file_path"] != "src/main.go" || risk != event.RiskRead {
		t.Errorf("got tool=%q args=%v risk=%v", tool, args, risk)
	}
}

func TestParseCursorEventMCPExecution(t *testing.T) {
	payload := map[string]any{"tool_name": "git_status", "tool_input": map[string]any{"path": "my-repo"}}
	tool, args, risk, _ := parseCursorEvent(payload, "beforeMCPExecution")
	if tool != "git_status" || args["path"] != "my-repo" || risk != event.RiskRead {
		t.Errorf("got tool=%q args=%v risk=%v", tool, args, risk)
	}
}

func TestParseCursorPostToolUseStripsMCPPrefix(t *testing.T) {
	payload := map[string]any{"tool_name": "MCP:git_status", "tool_input": map[string]any{"path": "my-repo"}}
	tool, args, risk, _ := parseCursorPostToolUse(payload)
	if tool != "git_status" || args["path"] != "my-repo" || risk != event.RiskRead {
		t.Errorf("got tool=%q args=%v risk=%v", tool, args, risk)
	}
}

func TestParseCursorPostToolUseCanonicalizesShell(t *testing.T) {
	payload := map[string]any{"tool_name": "Shell", "tool_input": map[string]any{"command": "echo hi"}}
	tool, _, risk, _ := parseCursorPostToolUse(payload)
	if tool != "Bash" || risk != event.RiskExec {
		t.Errorf("got tool=%q risk=%v", tool, risk)
	}
}

func TestParseCursorPostToolUseWriteBecomesEdit(t *testing.T) {
	payload := map[string]any{"tool_name": "Write", "tool_input": map[string]any{"file_path": "a.go"}}
	tool, _, risk, _ := parseCursorPostToolUse(payload)
	if tool != "Edit" || risk != event.RiskWrite {
		t.Errorf("got tool=%q risk=%v", tool, risk)
	}
}

func TestParseCursorPostToolUseStripsContent(t *testing.T) {
	payload := map[string]any{"tool_name": "Write", "tool_input": map[string]any{"file_path": "src/lib.go", "content": "big"}}
	_, args, _, _ := parseCursorPostToolUse(payload)
	if _, ok := args["content"]; ok {
		t.Error("content should be stripped")
	}
}

func TestParseCursorPostToolUseFallsBackToArguments(t *testing.T) {
	payload := map[string]any{"tool_name": "Read", "arguments": map[string]any{"file_path": "src/lib.go"}}
	_, args, _, _ := parseCursorPostToolUse(payload)
	if args["file_path"] != "src/lib.go" {
		t.Errorf("file_path = %v", args["file_path"])
	}
}

func TestParseCursorFileEditWithDiff(t *testing.T) {
	payload := map[string]any{
		"file_path": "/src/lib.go",
		"edits":     []any{map[string]any{"old_string": "hello", "new_string": "world"}},
	}
	tool, args, risk, diff := parseCursorFileEdit(payload)
	if tool != "Edit" || args["file_path"] != "/src/lib.go" || risk != event.RiskWrite {
		t.Errorf("got tool=%q args=%v risk=%v", tool, args, risk)
	}
	if diff == "" {
		t.Fatal("expected non-empty diff")
	}
}

func TestParseCursorFileEditNoEdits(t *testing.T) {
	payload := map[string]any{"file_path": "/src/lib.go"}
	_, _, _, diff := parseCursorFileEdit(payload)
	if diff != "" {
		t.Errorf("diff = %q, want empty", diff)
	}
}

func TestParseCursorEventUnknownPassthrough(t *testing.T) {
	payload := map[string]any{"foo": "bar"}
	tool, _, risk, _ := parseCursorEvent(payload, "customEvent")
	if tool != "customEvent" || risk != event.RiskUnknown {
		t.Errorf("got tool=%q risk=%v", tool, risk)
	}
}

func TestNormalizeCursorModel(t *testing.T) {
	if got := normalizeCursorModel("default"); got != "Auto" {
		t.Errorf("got %q, want Auto", got)
	}
	if got := normalizeCursorModel("auto"); got != "Auto" {
		t.Errorf("got %q, want Auto", got)
	}
	if got := normalizeCursorModel("claude-3.5-sonnet"); got != "claude-3.5-sonnet" {
		t.Errorf("got %q", got)
	}
}

func TestSessionIDFromRegistryStalePID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp-session")
	content := "11111111-1111-1111-1111-111111111111\n4000000\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	if _, ok := sessionIDFromRegistry(path); ok {
		t.Error("stale pid should not be live")
	}
}

func TestSessionIDFromRegistryLivePID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp-session")
	pid := os.Getpid()
	content := "22222222-2222-2222-2222-222222222222\n" + strconv.Itoa(pid) + "\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	id, ok := sessionIDFromRegistry(path)
	if !ok {
		t.Fatal("expected registry session to resolve")
	}
	if id != "22222222-2222-2222-2222-222222222222" {
		t.Errorf("id = %q", id)
	}
}

func TestResolveGitDirFallsBackToCwd(t *testing.T) {
	got := resolveGitDir("Read", map[string]any{}, "/some/cwd")
	if got != "/some/cwd" {
		t.Errorf("got %q, want /some/cwd", got)
	}
}

func TestComputeEditDiffOnlyForEditTools(t *testing.T) {
	args := map[string]any{"old_string": "a", "new_string": "b"}
	if d := computeEditDiff("Bash", args); d != "" {
		t.Errorf("computeEditDiff for non-edit tool = %q, want empty", d)
	}
	if d := computeEditDiff("Edit", args); d == "" {
		t.Error("expected a diff for Edit")
	}
}
