package spec

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/papapumpkin/openspec/internal/markdown"
)

// metadataLine matches "**ID**: REQ-1" style lines that may precede the
// normative sentence of a requirement.
var metadataLine = regexp.MustCompile(`^\*\*[^*]+\*\*:`)

// ParseSpec parses a spec document. It fails with a *ParseError when the
// Purpose or Requirements section is missing; an empty Requirements section
// parses successfully and is left for validation to flag.
func ParseSpec(content, name string) (*Spec, error) {
	fm, body, err := markdown.SplitFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("spec %s: %w", name, err)
	}
	sections := markdown.Split(body, 2)

	purpose, ok := markdown.Find(sections, markdown.KindPurpose)
	if !ok {
		return nil, missing(DocSpec, "Purpose")
	}
	reqs, ok := markdown.Find(sections, markdown.KindRequirements)
	if !ok {
		return nil, missing(DocSpec, "Requirements")
	}

	s := &Spec{
		Name:         name,
		Overview:     purpose.Text(),
		Requirements: []Requirement{},
	}
	for _, sub := range reqs.Subsections(3) {
		s.Requirements = append(s.Requirements, requirementFrom(sub))
	}
	if fm != nil {
		s.Frontmatter = fm.Values
	}
	return s, nil
}

// ParseRequirementBlock parses a single "### ..." block, such as a delta
// spec entry, into a Requirement.
func ParseRequirementBlock(raw string) Requirement {
	subs := markdown.Split(raw, 3)
	if len(subs) == 0 {
		return Requirement{Text: strings.TrimSpace(raw), Scenarios: []Scenario{}}
	}
	return requirementFrom(subs[0])
}

// requirementFrom builds a Requirement from a level-3 section. Its text is the
// first non-empty, non-metadata line before the first level-4 heading,
// falling back to the heading itself.
func requirementFrom(sec markdown.Section) Requirement {
	r := Requirement{Scenarios: []Scenario{}}
	for _, line := range sec.Preamble(4) {
		t := strings.TrimSpace(line)
		if t == "" || metadataLine.MatchString(t) {
			continue
		}
		r.Text = t
		break
	}
	if r.Text == "" {
		r.Text = sec.Header
	}
	for _, sub := range sec.Subsections(4) {
		if sub.Kind != markdown.KindScenario {
			continue
		}
		r.Scenarios = append(r.Scenarios, Scenario{RawText: sub.Text()})
	}
	return r
}

// LoadSpec reads and parses a spec file. The spec name is the name of the
// directory containing the file.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec: %w", err)
	}
	return ParseSpec(string(data), filepath.Base(filepath.Dir(path)))
}
