// Package scaffold implements openspec init and openspec update: it lays out
// the openspec directory, writes the workflow guide and project context,
// keeps the root AGENTS.md stub current and drives the tool configurators.
package scaffold

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/papapumpkin/openspec/internal/configurators"
	"github.com/papapumpkin/openspec/internal/fsutil"
	"github.com/papapumpkin/openspec/internal/i18n"
	"github.com/papapumpkin/openspec/internal/telemetry"
	"github.com/papapumpkin/openspec/internal/templates"
	"github.com/papapumpkin/openspec/internal/workspace"
)

// AgentsFile is the workflow guide inside the openspec directory and the
// stub file at the project root.
const AgentsFile = "AGENTS.md"

// projectFile holds the project context inside the openspec directory.
const projectFile = "project.md"

// agentsToolID is the tool whose instruction file is the root stub itself.
const agentsToolID = "agents"

// Scaffolder writes OpenSpec files into one project.
type Scaffolder struct {
	WS        *workspace.Workspace
	CodexHome string
	Templates templates.Set
	Out       io.Writer
	Catalog   *i18n.Catalog
	Telemetry *telemetry.Emitter
}

// InitResult summarises an init run by tool id.
type InitResult struct {
	Extended  bool
	Created   []string // tools configured for the first time
	Refreshed []string // selected tools that were already configured
	Skipped   []string // configured tools left alone
}

// UpdateResult summarises an update run.
type UpdateResult struct {
	Instructions []string // openspec/AGENTS.md and the root stub, project-relative
	Updated      []string // refreshed tool files, project-relative
	Failed       []string // tool names whose refresh failed
}

func (s *Scaffolder) env() configurators.Env {
	return configurators.Env{Root: s.WS.Root, CodexHome: s.CodexHome, Templates: s.Templates}
}

// Extending reports whether the openspec directory already exists, in which
// case init only extends the tool configuration.
func (s *Scaffolder) Extending() bool {
	return fsutil.IsDir(s.WS.Dir)
}

// Configured returns the ids of tools whose files are already present.
func (s *Scaffolder) Configured() []string {
	env := s.env()
	var ids []string
	for _, t := range configurators.Tools() {
		if t.IsConfigured(env) {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// Init creates the OpenSpec structure and configures the tools in ids. In
// extend mode existing AGENTS.md and project.md are kept.
func (s *Scaffolder) Init(ids []string) (*InitResult, error) {
	res := &InitResult{Extended: s.Extending()}
	configured := s.Configured()
	if res.Extended {
		s.println(s.Catalog.T("init.extending", "path", s.WS.Dir))
	} else {
		s.println(s.Catalog.T("init.creating", "path", s.WS.Dir))
	}

	for _, dir := range []string{s.WS.SpecsPath(), s.WS.ChangesPath(), s.WS.ArchivePath()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := s.writeIfMissing(filepath.Join(s.WS.Dir, AgentsFile), s.Templates.Agents()); err != nil {
		return nil, err
	}
	project, err := s.Templates.Project(templates.ProjectContext{ProjectName: filepath.Base(s.WS.Root)})
	if err != nil {
		return nil, err
	}
	if err := s.writeIfMissing(filepath.Join(s.WS.Dir, projectFile), project); err != nil {
		return nil, err
	}
	if err := s.writeRootStub(); err != nil {
		return nil, err
	}

	env := s.env()
	for _, id := range ids {
		t, ok := configurators.Lookup(id)
		if !ok {
			return nil, &InvalidToolError{IDs: []string{id}}
		}
		if _, err := t.Configure(env); err != nil {
			s.emit(telemetry.Event{Kind: telemetry.KindToolFailed, Tool: id, Data: map[string]string{"error": err.Error()}})
			return nil, fmt.Errorf("configuring %s: %w", t.Name, err)
		}
		s.emit(telemetry.Event{Kind: telemetry.KindToolConfigured, Tool: id})
		if slices.Contains(configured, id) {
			res.Refreshed = append(res.Refreshed, id)
		} else {
			res.Created = append(res.Created, id)
		}
	}
	for _, id := range configured {
		if id != agentsToolID && !slices.Contains(ids, id) {
			res.Skipped = append(res.Skipped, id)
		}
	}

	s.emit(telemetry.Event{Kind: telemetry.KindInitDone, Data: map[string]any{"extended": res.Extended, "tools": ids}})
	s.printSummary(res, ids)
	return res, nil
}

// Update rewrites openspec/AGENTS.md and the root stub, then refreshes the
// tool files that already exist. A tool that fails is reported in the result
// and does not stop the others.
func (s *Scaffolder) Update() (*UpdateResult, error) {
	if !s.Extending() {
		return nil, fmt.Errorf("%w: %s", workspace.ErrNoOpenSpecDir, s.WS.Dir)
	}

	res := &UpdateResult{}
	guide := filepath.Join(s.WS.Dir, AgentsFile)
	if err := fsutil.WriteFileAtomic(guide, []byte(s.Templates.Agents()), 0o644); err != nil {
		return nil, err
	}
	res.Instructions = append(res.Instructions, s.rel(guide))

	stub := filepath.Join(s.WS.Root, AgentsFile)
	created := !fsutil.Exists(stub)
	if err := s.writeRootStub(); err != nil {
		return nil, err
	}
	label := s.rel(stub)
	if created {
		label += " (" + s.Catalog.T("update.created") + ")"
	}
	res.Instructions = append(res.Instructions, label)

	env := s.env()
	for _, t := range configurators.Tools() {
		if t.ID == agentsToolID {
			continue
		}
		written, err := t.Refresh(env)
		for _, p := range written {
			res.Updated = append(res.Updated, s.rel(p))
		}
		if err != nil {
			slog.Warn("update", "tool", t.ID, "error", err)
			s.emit(telemetry.Event{Kind: telemetry.KindToolFailed, Tool: t.ID, Data: map[string]string{"error": err.Error()}})
			res.Failed = append(res.Failed, t.Name)
			continue
		}
		if len(written) > 0 {
			s.emit(telemetry.Event{Kind: telemetry.KindToolConfigured, Tool: t.ID})
		}
	}

	s.emit(telemetry.Event{Kind: telemetry.KindUpdateDone, Data: map[string]any{"updated": res.Updated, "failed": res.Failed}})
	s.println(s.Catalog.T("update.done", "path", strings.Join(res.Instructions, ", ")))
	if len(res.Updated) > 0 {
		s.println(s.Catalog.T("update.tools_updated", "tools", strings.Join(res.Updated, ", ")))
	}
	if len(res.Failed) > 0 {
		s.println(s.Catalog.T("update.failed", "tools", strings.Join(res.Failed, ", ")))
	}
	return res, nil
}

func (s *Scaffolder) writeRootStub() error {
	path := filepath.Join(s.WS.Root, AgentsFile)
	if err := fsutil.UpdateFileWithMarkers(path, s.Templates.Stub(), templates.MarkerStart, templates.MarkerEnd); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (s *Scaffolder) writeIfMissing(path, content string) error {
	if fsutil.Exists(path) {
		return nil
	}
	return fsutil.WriteFileAtomic(path, []byte(content), 0o644)
}

func (s *Scaffolder) printSummary(res *InitResult, ids []string) {
	s.println(s.Catalog.T("init.tool_summary"))
	for _, line := range []struct {
		key string
		ids []string
	}{
		{"init.created", res.Created},
		{"init.refreshed", res.Refreshed},
		{"init.skipped", res.Skipped},
	} {
		if len(line.ids) > 0 {
			s.println("  " + s.Catalog.T(line.key, "tools", strings.Join(toolNames(line.ids), ", ")))
		}
	}
	s.println(s.Catalog.T("init.done"))
	s.println(s.Catalog.T("init.copy_prompts", "tools", successLabel(ids)))
	s.println(s.Catalog.T("init.next_steps"))
}

// successLabel names the assistants the next steps are addressed to.
func successLabel(ids []string) string {
	var labels []string
	for _, id := range ids {
		if t, ok := configurators.Lookup(id); ok && id != agentsToolID {
			labels = append(labels, t.SuccessLabel)
		}
	}
	if len(labels) == 0 {
		t, _ := configurators.Lookup(agentsToolID)
		return t.SuccessLabel
	}
	return strings.Join(labels, ", ")
}

func toolNames(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if t, ok := configurators.Lookup(id); ok {
			names = append(names, t.Name)
		}
	}
	return names
}

func (s *Scaffolder) rel(path string) string {
	r, err := filepath.Rel(s.WS.Root, path)
	if err != nil || strings.HasPrefix(r, "..") {
		return path
	}
	return filepath.ToSlash(r)
}

func (s *Scaffolder) emit(evt telemetry.Event) {
	if err := s.Telemetry.Emit(evt); err != nil {
		slog.Debug("telemetry", "error", err)
	}
}

func (s *Scaffolder) println(line string) {
	if s.Out != nil {
		fmt.Fprintln(s.Out, line)
	}
}
