package vcs

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not on PATH")
	}
}

func initRepo(t *testing.T, dir string) {
	t.Helper()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com")
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init", "-q")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}
	run("add", "-A")
	run("commit", "-q", "-m", "init")
}

func TestProbeOnNonRepoReturnsZeroValue(t *testing.T) {
	dir := t.TempDir()
	info := Probe(dir)
	if info.Root != "" || info.Branch != "" || info.Commit != "" {
		t.Errorf("Probe() on non-repo = %+v, want all empty", info)
	}
}

func TestProbeOnCleanRepo(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	initRepo(t, dir)

	info := Probe(dir)
	if info.Root == "" {
		t.Errorf("Root is empty for a real repo")
	}
	if info.Commit == "" {
		t.Errorf("Commit is empty for a real repo")
	}
	if info.Dirty {
		t.Errorf("Dirty = true, want false for a freshly committed repo")
	}
}

func TestProbeDetectsDirty(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	initRepo(t, dir)
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("changed"), 0644); err != nil {
		t.Fatal(err)
	}

	info := Probe(dir)
	if !info.Dirty {
		t.Errorf("Dirty = false, want true after uncommitted edit")
	}
}
