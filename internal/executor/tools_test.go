package executor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteThenReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.txt")
	e := New()
	ctx := context.Background()

	out, err := e.Execute(ctx, "write_file", map[string]any{"path": path, "content": "hi"})
	if err != nil {
		t.Fatalf("write_file error = %v", err)
	}
	if out != "wrote 2 bytes to "+path {
		t.Errorf("write_file output = %q", out)
	}

	out, err = e.Execute(ctx, "read_file", map[string]any{"path": path})
	if err != nil || out != "hi" {
		t.Errorf("read_file = (%q, %v), want (\"hi\", nil)", out, err)
	}
}

func TestReadFileLineRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.txt")
	os.WriteFile(path, []byte("a\nb\nc\nd\n"), 0644)

	e := New()
	out, err := e.Execute(context.Background(), "read_file", map[string]any{
		"path": path, "start_line": float64(2), "end_line": float64(3),
	})
	if err != nil {
		t.Fatalf("read_file error = %v", err)
	}
	want := "2: b\n3: c\n"
	if out != want {
		t.Errorf("read_file range = %q, want %q", out, want)
	}
}

func TestListDirectorySorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		os.WriteFile(filepath.Join(dir, name), []byte(""), 0644)
	}
	e := New()
	out, err := e.Execute(context.Background(), "list_directory", map[string]any{"path": dir})
	if err != nil {
		t.Fatalf("list_directory error = %v", err)
	}
	want := "alpha\nmid\nzeta"
	if out != want {
		t.Errorf("list_directory = %q, want %q", out, want)
	}
}

func TestMissingRequiredArgument(t *testing.T) {
	e := New()
	if _, err := e.Execute(context.Background(), "read_file", map[string]any{}); err == nil {
		t.Fatalf("expected error for missing path argument")
	}
}

func TestUnknownTool(t *testing.T) {
	e := New()
	_, err := e.Execute(context.Background(), "does_not_exist", nil)
	if _, ok := err.(*ErrUnknownTool); !ok {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestRunWithTimeoutExpires(t *testing.T) {
	e := New()
	res := e.RunWithTimeout(context.Background(), "run_command",
		map[string]any{"command": "sleep 5"}, 50*time.Millisecond)
	if !res.TimedOut {
		t.Fatalf("expected TimedOut = true")
	}
	if res.Err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestSearchFilesSkipsNoisyDirs(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "node_modules"), 0755)
	os.WriteFile(filepath.Join(dir, "node_modules", "x.txt"), []byte("needle"), 0644)
	os.WriteFile(filepath.Join(dir, "y.txt"), []byte("needle"), 0644)

	e := New()
	out, err := e.Execute(context.Background(), "search_files", map[string]any{"path": dir, "pattern": "needle"})
	if err != nil {
		t.Fatalf("search_files error = %v", err)
	}
	if !strings.Contains(out, "y.txt") {
		t.Errorf("search_files missed y.txt: %q", out)
	}
	if strings.Contains(out, "node_modules") {
		t.Errorf("search_files descended into node_modules: %q", out)
	}
}
