package telemetry

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var out []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var evt Event
		if err := json.Unmarshal([]byte(line), &evt); err != nil {
			t.Fatalf("invalid JSON line: %v\nline: %s", err, line)
		}
		out = append(out, evt)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scanner: %v", err)
	}
	return out
}

func TestNewEmitter_CreatesFileAndDir(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "openspec", ".audit.jsonl")

	em, err := NewEmitter(path)
	if err != nil {
		t.Fatalf("NewEmitter(%q): %v", path, err)
	}
	defer em.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist at %q: %v", path, err)
	}
	if em.RunID() == "" {
		t.Error("expected a run id")
	}
}

func TestNewEmitter_ErrorOnBadPath(t *testing.T) {
	t.Parallel()
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := NewEmitter(filepath.Join(blocker, "events.jsonl"))
	if err == nil {
		t.Fatal("expected error for bad path, got nil")
	}
	if !strings.Contains(err.Error(), "telemetry: open") {
		t.Errorf("expected wrapped error, got: %v", err)
	}
}

func TestEmit_StampsRunIDAndTime(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "events.jsonl")

	em, err := NewEmitter(path)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}
	fixed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	em.now = func() time.Time { return fixed }

	if err := em.Emit(Event{Kind: KindArchiveStart, Change: "add-2fa"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := em.Emit(Event{Kind: KindSpecWritten, Change: "add-2fa", Capability: "auth",
		Data: map[string]int{"added": 1}}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := em.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	events := readEvents(t, path)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	for i, evt := range events {
		if evt.RunID != em.RunID() {
			t.Errorf("event %d: run=%q, want %q", i, evt.RunID, em.RunID())
		}
		if !evt.Timestamp.Equal(fixed) {
			t.Errorf("event %d: ts=%v, want %v", i, evt.Timestamp, fixed)
		}
	}
	if events[1].Capability != "auth" {
		t.Errorf("capability=%q, want auth", events[1].Capability)
	}
}

func TestEmit_ConcurrentSafety(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "concurrent.jsonl")

	em, err := NewEmitter(path)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		go func(idx int) {
			defer wg.Done()
			evt := Event{Kind: KindToolConfigured, Tool: "claude", Data: map[string]int{"idx": idx}}
			if err := em.Emit(evt); err != nil {
				t.Errorf("Emit from goroutine %d: %v", idx, err)
			}
		}(i)
	}
	wg.Wait()

	if err := em.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := len(readEvents(t, path)); got != n {
		t.Fatalf("expected %d lines, got %d", n, got)
	}
}

func TestNilEmitter_NoOp(t *testing.T) {
	t.Parallel()
	var em *Emitter

	if err := em.Emit(Event{Kind: KindArchiveStart}); err != nil {
		t.Errorf("nil Emit: %v", err)
	}
	if err := em.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
	if em.RunID() != "" {
		t.Errorf("nil RunID: %q", em.RunID())
	}
}

func TestEmitter_AppendsAcrossRuns(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "append.jsonl")

	for range 2 {
		em, err := NewEmitter(path)
		if err != nil {
			t.Fatalf("NewEmitter: %v", err)
		}
		if err := em.Emit(Event{Kind: KindUpdateDone}); err != nil {
			t.Fatalf("Emit: %v", err)
		}
		em.Close()
	}

	events := readEvents(t, path)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].RunID == events[1].RunID {
		t.Error("expected distinct run ids per emitter")
	}
}

func TestEvent_OmitsEmptyFields(t *testing.T) {
	t.Parallel()
	evt := Event{
		Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Kind:      KindInitDone,
		RunID:     "r",
	}
	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)
	for _, field := range []string{`"change"`, `"capability"`, `"tool"`, `"data"`} {
		if strings.Contains(s, field) {
			t.Errorf("expected %s to be omitted, got: %s", field, s)
		}
	}
}

func TestLazyEmitter_CreatesFileOnFirstEmit(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "openspec")
	path := filepath.Join(dir, ".audit.jsonl")

	em := NewLazyEmitter(path)
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected %s not to exist before the first event, stat err = %v", dir, err)
	}
	if err := em.Emit(Event{Kind: KindInitDone}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := em.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := len(readEvents(t, path)); got != 1 {
		t.Errorf("expected 1 event, got %d", got)
	}
}

func TestLazyEmitter_CloseWithoutEvents(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "never.jsonl")

	if err := NewLazyEmitter(path).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected no file, stat err = %v", err)
	}
}
