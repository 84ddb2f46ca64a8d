package validation

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/papapumpkin/openspec/internal/delta"
	"github.com/papapumpkin/openspec/internal/spec"
)

const (
	guideNoSections = "No delta sections found. Add headers such as \"## ADDED Requirements\" " +
		"or move non-delta notes outside specs/."
	guideEmptySections = "were found, but no requirement entries parsed. Ensure each section includes at least one " +
		"\"### Requirement:\" block (REMOVED may use bullet list syntax)."
)

// ValidateChangeDeltaSpecs checks every delta spec under <dir>/specs: each
// ADDED or MODIFIED requirement needs SHALL or MUST (in its header or its
// text) and at least one scenario, and each file's operations must be
// internally consistent. A change with no parsable deltas is an error.
func (v *Validator) ValidateChangeDeltaSpecs(dir string) *Report {
	return NewReport(CheckDeltaSpecs(os.DirFS(dir)), v.Strict)
}

// CheckDeltaSpecs runs the delta spec checks against fsys, rooted at a change
// directory.
func CheckDeltaSpecs(fsys fs.FS) []Issue {
	var issues []Issue
	add := func(level Level, path, msg string) {
		issues = append(issues, Issue{Level: level, Path: path, Message: msg})
	}

	files, err := spec.DeltaSpecFiles(fsys)
	if err != nil {
		add(LevelError, "specs", err.Error())
		return issues
	}

	total := 0
	for _, f := range files {
		data, err := fs.ReadFile(fsys, f.Path)
		if err != nil {
			add(LevelError, f.Path, err.Error())
			continue
		}
		plan := delta.ParseDeltaSpec(string(data))
		total += plan.Count()

		if !plan.HasSections() {
			add(LevelError, f.Path, guideNoSections)
			continue
		}
		if plan.Count() == 0 {
			add(LevelError, f.Path, fmt.Sprintf("Delta sections %s %s", sectionList(plan.Sections), guideEmptySections))
			continue
		}

		checkBlocks := func(op delta.Op, blocks []delta.Block) {
			for _, b := range blocks {
				req := spec.ParseRequirementBlock(b.Raw)
				if !spec.ContainsKeyword(b.Name) && !spec.ContainsKeyword(req.Text) {
					add(LevelError, f.Path, fmt.Sprintf("%s %q must contain SHALL or MUST", op, b.Name))
				}
				if len(req.Scenarios) == 0 {
					add(LevelError, f.Path, fmt.Sprintf("%s %q must include at least one scenario", op, b.Name))
				}
			}
		}
		checkBlocks(delta.OpAdded, plan.Added)
		checkBlocks(delta.OpModified, plan.Modified)

		for _, c := range plan.Conflicts() {
			add(LevelError, f.Path, c.Message)
		}
	}

	if total == 0 {
		add(LevelError, "file", msgChangeNoDeltas+". "+guideNoDeltas)
	}
	return issues
}

func sectionList(ops []delta.Op) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = fmt.Sprintf("\"## %s Requirements\"", op)
	}
	return strings.Join(parts, ", ")
}
