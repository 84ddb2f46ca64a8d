package configurators

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/papapumpkin/openspec/internal/fsutil"
	"github.com/papapumpkin/openspec/internal/templates"
)

var (
	// ErrUnknownTool is returned for a tool id that is not registered.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrMissingMarkers is returned when an existing slash command file has
	// lost its OpenSpec markers and cannot be refreshed safely.
	ErrMissingMarkers = errors.New("missing OpenSpec markers")
)

// Env locates where a tool's files are written.
type Env struct {
	Root      string // project root
	CodexHome string // directory holding Codex prompts/
	Templates templates.Set
}

// CodexHome resolves the Codex home directory: configured, then $CODEX_HOME,
// then ~/.codex.
func CodexHome(configured string) string {
	if configured != "" {
		return configured
	}
	if env := os.Getenv("CODEX_HOME"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".codex"
	}
	return filepath.Join(home, ".codex")
}

// InstructionPath returns the absolute instruction file path, or "".
func (t Tool) InstructionPath(env Env) string {
	if t.Instruction == "" {
		return ""
	}
	return filepath.Join(env.Root, t.Instruction)
}

// SlashPath returns the absolute path of one slash command file, or "".
func (t Tool) SlashPath(env Env, id templates.SlashCommand) string {
	if t.slashPath == nil {
		return ""
	}
	base := env.Root
	if t.global {
		base = env.CodexHome
	}
	return filepath.Join(base, t.slashPath(id))
}

// Paths lists every file the tool manages.
func (t Tool) Paths(env Env) []string {
	var paths []string
	if p := t.InstructionPath(env); p != "" {
		paths = append(paths, p)
	}
	if t.HasSlashCommands() {
		for _, id := range templates.SlashCommands() {
			paths = append(paths, t.SlashPath(env, id))
		}
	}
	return paths
}

// IsConfigured reports whether any of the tool's managed files exist. An
// instruction file only counts when it carries the OpenSpec markers.
func (t Tool) IsConfigured(env Env) bool {
	if p := t.InstructionPath(env); p != "" {
		if data, err := os.ReadFile(p); err == nil &&
			fsutil.HasMarkers(string(data), templates.MarkerStart, templates.MarkerEnd) {
			return true
		}
	}
	if t.HasSlashCommands() {
		for _, id := range templates.SlashCommands() {
			if fsutil.Exists(t.SlashPath(env, id)) {
				return true
			}
		}
	}
	return false
}

// Configure writes or refreshes every file the tool manages and returns the
// paths written.
func (t Tool) Configure(env Env) ([]string, error) {
	return t.write(env, false)
}

// Refresh updates only the tool files that already exist.
func (t Tool) Refresh(env Env) ([]string, error) {
	return t.write(env, true)
}

func (t Tool) write(env Env, existingOnly bool) ([]string, error) {
	var written []string

	if p := t.InstructionPath(env); p != "" && (!existingOnly || fsutil.Exists(p)) {
		if err := fsutil.UpdateFileWithMarkers(p, env.Templates.Stub(), templates.MarkerStart, templates.MarkerEnd); err != nil {
			return written, fmt.Errorf("%s: %w", t.Name, err)
		}
		written = append(written, p)
	}

	if !t.HasSlashCommands() {
		return written, nil
	}
	for _, id := range templates.SlashCommands() {
		p := t.SlashPath(env, id)
		exists := fsutil.Exists(p)
		if existingOnly && !exists {
			continue
		}
		if err := t.writeSlash(env, id, p, exists); err != nil {
			return written, fmt.Errorf("%s: %w", t.Name, err)
		}
		written = append(written, p)
	}
	return written, nil
}

// writeSlash creates a slash command file with its frontmatter, or replaces
// only the marked body of an existing one so user edits to the frontmatter
// survive.
func (t Tool) writeSlash(env Env, id templates.SlashCommand, path string, exists bool) error {
	body := env.Templates.SlashBody(id) + t.bodySuffix
	if !exists {
		content := templates.MarkerStart + "\n" + body + "\n" + templates.MarkerEnd + "\n"
		if t.frontmatter != nil {
			content = t.frontmatter(id) + "\n" + content
		}
		return fsutil.WriteFileAtomic(path, []byte(content), 0o644)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if !fsutil.HasMarkers(string(data), templates.MarkerStart, templates.MarkerEnd) {
		return fmt.Errorf("%w in %s", ErrMissingMarkers, path)
	}
	return fsutil.UpdateFileWithMarkers(path, body, templates.MarkerStart, templates.MarkerEnd)
}
