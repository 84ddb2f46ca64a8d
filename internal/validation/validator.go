package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/papapumpkin/openspec/internal/spec"
)

const (
	guideSpecSections = "Expected headers: \"## Purpose\" and \"## Requirements\". Example:\n" +
		"## Purpose\n[One paragraph describing the capability]\n\n" +
		"## Requirements\n### Requirement: [Name]\nThe system SHALL ...\n\n#### Scenario: [Name]\n- **WHEN** ...\n- **THEN** ..."
	guideChangeSections = "Expected headers: \"## Why\" and \"## What Changes\". Example:\n" +
		"## Why\n[1-2 sentences on the problem or opportunity]\n\n" +
		"## What Changes\n- **capability:** Add ...\n\nDelta specs live under specs/<capability>/spec.md."
)

// Validator runs schema checks against files on disk. The zero value is a
// non-strict validator.
type Validator struct {
	// Strict makes warnings invalidate reports.
	Strict bool
}

// New returns a Validator.
func New(strict bool) *Validator {
	return &Validator{Strict: strict}
}

// ValidateSpec parses and checks the spec at path. Read and parse failures
// are reported as error issues rather than returned.
func (v *Validator) ValidateSpec(path string) *Report {
	data, err := os.ReadFile(path)
	if err != nil {
		return v.fileError(err)
	}
	return v.ValidateSpecContent(filepath.Base(filepath.Dir(path)), string(data))
}

// ValidateSpecContent checks spec content that may not be on disk yet, such
// as a spec rebuilt during archive.
func (v *Validator) ValidateSpecContent(name, content string) *Report {
	s, err := spec.ParseSpec(content, name)
	if err != nil {
		return v.parseError(err)
	}
	return NewReport(CheckSpec(s), v.Strict)
}

// ValidateChange parses and checks a proposal.md together with any delta
// specs next to it.
func (v *Validator) ValidateChange(path string) *Report {
	c, err := spec.LoadChangeFile(path)
	if err != nil {
		return v.parseError(err)
	}
	return NewReport(CheckChange(c), v.Strict)
}

// ValidateChangeDir validates a change directory: the proposal schema and,
// when the change carries delta specs, the delta specs themselves.
func (v *Validator) ValidateChangeDir(dir string) *Report {
	proposal := v.ValidateChange(filepath.Join(dir, "proposal.md"))
	files, err := spec.DeltaSpecFiles(os.DirFS(dir))
	if err != nil || len(files) > 0 {
		return Merge(v.Strict, proposal, v.ValidateChangeDeltaSpecs(dir))
	}
	return proposal
}

func (v *Validator) fileError(err error) *Report {
	return NewReport([]Issue{{Level: LevelError, Path: "file", Message: err.Error()}}, v.Strict)
}

func (v *Validator) parseError(err error) *Report {
	msg := err.Error()
	var pe *spec.ParseError
	if errors.As(err, &pe) {
		switch pe.Kind {
		case spec.DocSpec:
			msg = fmt.Sprintf("%s. %s", msg, guideSpecSections)
		case spec.DocChange:
			msg = fmt.Sprintf("%s. %s", msg, guideChangeSections)
		}
	}
	slog.Debug("document failed to parse", "error", err)
	return NewReport([]Issue{{Level: LevelError, Path: "file", Message: msg}}, v.Strict)
}
