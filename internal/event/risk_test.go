package event

import "testing"

func TestClassifyRisk(t *testing.T) {
	cases := []struct {
		tool string
		want Risk
	}{
		{"Bash", RiskExec},
		{"run_command", RiskExec},
		{"read_file", RiskRead},
		{"git_log", RiskRead},
		{"Task", RiskRead},
		{"write_file", RiskWrite},
		{"git_commit", RiskWrite},
		{"MCP:list_directory", RiskRead},
		{"MCP:run_command", RiskExec},
		{"totally-unknown-tool", RiskUnknown},
	}
	for _, c := range cases {
		if got := ClassifyRisk(c.tool); got != c.want {
			t.Errorf("ClassifyRisk(%q) = %v, want %v", c.tool, got, c.want)
		}
	}
}

func TestReclassifyNeverOverridesKnown(t *testing.T) {
	e := &Event{Tool: "write_file", Risk: RiskRead}
	if got := e.Reclassify(); got != RiskRead {
		t.Fatalf("Reclassify() on already-known risk = %v, want unchanged RiskRead", got)
	}
}

func TestReclassifyFillsUnknown(t *testing.T) {
	e := &Event{Tool: "git_status", Risk: RiskUnknown}
	if got := e.Reclassify(); got != RiskRead {
		t.Fatalf("Reclassify() = %v, want %v", got, RiskRead)
	}
}
