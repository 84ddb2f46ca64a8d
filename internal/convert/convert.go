// Package convert serializes parsed specs and changes to the stable JSON
// shapes consumed by tooling: full documents for export, and narrower views
// for the show commands.
package convert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/papapumpkin/openspec/internal/spec"
)

// Document format identifiers written into metadata.
const (
	FormatSpec   = "openspec"
	FormatChange = "openspec-change"
	Version      = "1.0.0"
)

// Metadata describes where a document came from.
type Metadata struct {
	Version     string         `json:"version"`
	Format      string         `json:"format"`
	SourcePath  string         `json:"sourcePath,omitempty"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
}

// SpecDocument is the exported JSON shape of a spec.
type SpecDocument struct {
	Name         string             `json:"name"`
	Overview     string             `json:"overview"`
	Requirements []spec.Requirement `json:"requirements"`
	Metadata     Metadata           `json:"metadata"`
}

// ChangeDocument is the exported JSON shape of a change.
type ChangeDocument struct {
	Name        string       `json:"name"`
	Why         string       `json:"why"`
	WhatChanges string       `json:"whatChanges"`
	Deltas      []spec.Delta `json:"deltas"`
	Metadata    Metadata     `json:"metadata"`
}

// NewSpecDocument wraps a parsed spec for export.
func NewSpecDocument(s *spec.Spec, sourcePath string) SpecDocument {
	return SpecDocument{
		Name:         s.Name,
		Overview:     s.Overview,
		Requirements: s.Requirements,
		Metadata: Metadata{
			Version:     Version,
			Format:      FormatSpec,
			SourcePath:  sourcePath,
			Frontmatter: s.Frontmatter,
		},
	}
}

// NewChangeDocument wraps a parsed change for export.
func NewChangeDocument(c *spec.Change, sourcePath string) ChangeDocument {
	return ChangeDocument{
		Name:        c.Name,
		Why:         c.Why,
		WhatChanges: c.WhatChanges,
		Deltas:      c.Deltas,
		Metadata: Metadata{
			Version:     Version,
			Format:      FormatChange,
			SourcePath:  sourcePath,
			Frontmatter: c.Frontmatter,
		},
	}
}

// SpecToJSON loads the spec at path and returns its JSON document.
func SpecToJSON(path string) (string, error) {
	s, err := spec.LoadSpec(path)
	if err != nil {
		return "", fmt.Errorf("converting %s: %w", path, err)
	}
	return Marshal(NewSpecDocument(s, path))
}

// ChangeToJSON loads the proposal at path, including delta specs next to
// it, and returns its JSON document.
func ChangeToJSON(path string) (string, error) {
	c, err := spec.LoadChangeFile(path)
	if err != nil {
		return "", fmt.Errorf("converting %s: %w", path, err)
	}
	return Marshal(NewChangeDocument(c, path))
}

// ChangeDirToJSON is ChangeToJSON for a change directory.
func ChangeDirToJSON(dir string) (string, error) {
	return ChangeToJSON(filepath.Join(dir, "proposal.md"))
}

// Marshal renders v as JSON indented by two spaces. Strings are kept
// verbatim apart from standard JSON escaping; '<', '>' and '&' are not
// escaped.
func Marshal(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encoding json: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// ReadSource returns a file's content for commands that print raw markdown.
func ReadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
