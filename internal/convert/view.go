package convert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/papapumpkin/openspec/internal/markdown"
	"github.com/papapumpkin/openspec/internal/spec"
)

var (
	// ErrConflictingFilters is returned when --requirements and -r are combined.
	ErrConflictingFilters = errors.New("options --requirements and --requirement cannot be used together")
	// ErrRequirementIndex is returned when -r names a requirement that does not exist.
	ErrRequirementIndex = errors.New("requirement index out of range")
)

// Filter narrows the requirements shown for a spec.
type Filter struct {
	RequirementsOnly bool // drop scenarios, keep every requirement
	NoScenarios      bool
	Index            int // 1-based; 0 selects all requirements
}

// Apply returns the filtered requirements. Requirement text is never altered;
// scenario lists are emptied when scenarios are excluded.
func (f Filter) Apply(reqs []spec.Requirement) ([]spec.Requirement, error) {
	if f.RequirementsOnly && f.Index != 0 {
		return nil, ErrConflictingFilters
	}
	selected := reqs
	if f.Index != 0 {
		if f.Index < 1 || f.Index > len(reqs) {
			return nil, fmt.Errorf("%w: requirement %d not found (spec has %d)", ErrRequirementIndex, f.Index, len(reqs))
		}
		selected = reqs[f.Index-1 : f.Index]
	}

	out := make([]spec.Requirement, len(selected))
	for i, r := range selected {
		out[i] = r
		if f.RequirementsOnly || f.NoScenarios {
			out[i].Scenarios = []spec.Scenario{}
		}
	}
	return out, nil
}

// ViewMetadata is the metadata block of show output.
type ViewMetadata struct {
	Version string `json:"version"`
	Format  string `json:"format"`
}

// SpecView is the JSON shape printed by "show <spec> --json".
type SpecView struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Overview         string             `json:"overview"`
	RequirementCount int                `json:"requirementCount"`
	Requirements     []spec.Requirement `json:"requirements"`
	Metadata         ViewMetadata       `json:"metadata"`
}

// ChangeView is the JSON shape printed by "show <change> --json".
type ChangeView struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	DeltaCount int          `json:"deltaCount"`
	Deltas     []spec.Delta `json:"deltas"`
}

// NewSpecView builds the show output for a spec. content is the raw source,
// used for the title.
func NewSpecView(id, content string, s *spec.Spec, f Filter) (*SpecView, error) {
	reqs, err := f.Apply(s.Requirements)
	if err != nil {
		return nil, err
	}
	return &SpecView{
		ID:               id,
		Title:            Title(content, id),
		Overview:         s.Overview,
		RequirementCount: len(reqs),
		Requirements:     reqs,
		Metadata:         ViewMetadata{Version: Version, Format: FormatSpec},
	}, nil
}

// NewChangeView builds the show output for a change.
func NewChangeView(id, content string, c *spec.Change) *ChangeView {
	return &ChangeView{
		ID:         id,
		Title:      Title(content, id),
		DeltaCount: len(c.Deltas),
		Deltas:     c.Deltas,
	}
}

// Title returns the text of the first level-1 heading, stripping a leading
// "Change:" or "Spec:" label, or fallback when there is none.
func Title(content, fallback string) string {
	_, body, err := markdown.SplitFrontmatter(content)
	if err != nil {
		body = content
	}
	for _, line := range markdown.Lines(body) {
		level, title, ok := markdown.Heading(line)
		if !ok || level != 1 {
			continue
		}
		for _, prefix := range []string{"Change:", "Spec:"} {
			title = strings.TrimPrefix(title, prefix)
		}
		if t := strings.TrimSpace(title); t != "" {
			return t
		}
	}
	return fallback
}
