// Package telemetry provides a JSONL audit stream for commands that change a
// project: archive, init and update. Every spec write, archive move and tool
// configuration is recorded as a structured JSON event tagged with the id of
// the process that produced it, so a history of edits to openspec/ can be
// reconstructed after the fact.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event kinds identify the type of audit event.
const (
	KindArchiveStart   = "archive_start"
	KindSpecWritten    = "spec_written"
	KindChangeArchived = "change_archived"
	KindArchiveAborted = "archive_aborted"
	KindToolConfigured = "tool_configured"
	KindToolFailed     = "tool_failed"
	KindInitDone       = "init_done"
	KindUpdateDone     = "update_done"
)

// Event represents a single audit record. Each event carries a timestamp, a
// kind tag, the run id of the emitting process, optional context identifiers
// (change, capability, tool) and arbitrary structured data.
type Event struct {
	Timestamp  time.Time `json:"ts"`
	Kind       string    `json:"kind"`
	RunID      string    `json:"run"`
	Change     string    `json:"change,omitempty"`
	Capability string    `json:"capability,omitempty"`
	Tool       string    `json:"tool,omitempty"`
	Data       any       `json:"data,omitempty"`
}

// Emitter writes audit events to a JSONL file. It is safe for concurrent
// use. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	runID string
	path  string
	file  *os.File
	enc   *json.Encoder
	mu    sync.Mutex
	now   func() time.Time
}

// NewEmitter creates an Emitter that appends JSONL events to the file at
// path, creating the file and its directory if needed. Every event it
// writes carries a fresh random run id.
func NewEmitter(path string) (*Emitter, error) {
	e := NewLazyEmitter(path)
	if err := e.open(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewLazyEmitter is NewEmitter without touching the filesystem until the
// first event. init uses it so that opening the audit file does not create
// the openspec directory ahead of the command itself.
func NewLazyEmitter(path string) *Emitter {
	return &Emitter{runID: uuid.NewString(), path: path, now: time.Now}
}

// open creates the file on first use. Callers hold mu or own e exclusively.
func (e *Emitter) open() error {
	if e.file != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return fmt.Errorf("telemetry: open %s: %w", e.path, err)
	}
	f, err := os.OpenFile(e.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", e.path, err)
	}
	e.file = f
	e.enc = json.NewEncoder(f)
	return nil
}

// RunID returns the id stamped on every event, or "" for a nil Emitter.
func (e *Emitter) RunID() string {
	if e == nil {
		return ""
	}
	return e.runID
}

// Emit writes a single event. Timestamp and RunID are filled in when unset.
// Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if evt.Timestamp.IsZero() {
		evt.Timestamp = e.now().UTC()
	}
	if evt.RunID == "" {
		evt.RunID = e.runID
	}
	if err := e.open(); err != nil {
		return err
	}
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	return nil
}

// Close closes the underlying file. Calling Close on a nil Emitter is a
// no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return nil
	}
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}
