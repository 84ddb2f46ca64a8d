package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintEvents_FormatsAndFilters(t *testing.T) {
	t.Parallel()
	log := strings.Join([]string{
		`{"ts":"2025-03-01T10:00:00Z","kind":"archive_start","run":"r1","change":"add-2fa"}`,
		`{"ts":"2025-03-01T10:00:01Z","kind":"spec_written","run":"r1","change":"add-2fa","capability":"auth","data":{"added":1,"removed":0}}`,
		`{"ts":"2025-03-01T11:00:00Z","kind":"tool_configured","run":"r2","tool":"claude"}`,
		``,
		`not json`,
	}, "\n")

	var all bytes.Buffer
	if err := printEvents(&all, strings.NewReader(log), auditFilter{}); err != nil {
		t.Fatalf("printEvents: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(all.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), all.String())
	}
	if !strings.Contains(lines[1], "spec_written change=add-2fa capability=auth added=1 removed=0") {
		t.Errorf("unexpected line: %s", lines[1])
	}
	if !strings.Contains(lines[2], "tool_configured tool=claude") {
		t.Errorf("unexpected line: %s", lines[2])
	}
	if lines[3] != "??? not json" {
		t.Errorf("malformed line = %q", lines[3])
	}

	var run bytes.Buffer
	if err := printEvents(&run, strings.NewReader(log), auditFilter{run: "r2"}); err != nil {
		t.Fatalf("printEvents: %v", err)
	}
	if strings.Contains(run.String(), "archive_start") || !strings.Contains(run.String(), "tool_configured") {
		t.Errorf("run filter output:\n%s", run.String())
	}

	var change bytes.Buffer
	if err := printEvents(&change, strings.NewReader(log), auditFilter{change: "add-2fa"}); err != nil {
		t.Fatalf("printEvents: %v", err)
	}
	if strings.Contains(change.String(), "tool_configured") || strings.Count(change.String(), "change=add-2fa") != 2 {
		t.Errorf("change filter output:\n%s", change.String())
	}
}

func TestFormatDataMap_SortsKeys(t *testing.T) {
	t.Parallel()
	got := formatDataMap(map[string]any{"b": 2, "a": "x", "c": true})
	if want := "a=x b=2 c=true"; got != want {
		t.Errorf("formatDataMap = %q, want %q", got, want)
	}
}
