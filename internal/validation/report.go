// Package validation checks parsed specs and changes against the OpenSpec
// schema and produces a Report of issues graded by severity.
package validation

// Level grades a validation issue. Values serialize upper-case.
type Level string

const (
	// LevelError marks an issue that always makes a report invalid.
	LevelError Level = "ERROR"
	// LevelWarning marks a content-quality issue; invalid only in strict mode.
	LevelWarning Level = "WARNING"
	// LevelInfo marks an advisory note that never affects validity.
	LevelInfo Level = "INFO"
)

// Issue is one finding, located by a path into the document (e.g.
// "requirements[0].scenarios", "specs/auth/spec.md").
type Issue struct {
	Level   Level  `json:"severity"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Summary counts issues by level.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
}

// Report is the result of validating one document or change directory.
type Report struct {
	Valid   bool    `json:"valid"`
	Issues  []Issue `json:"issues"`
	Summary Summary `json:"summary"`
}

// NewReport tallies issues and decides validity. In strict mode warnings
// also invalidate the report.
func NewReport(issues []Issue, strict bool) *Report {
	r := &Report{Issues: issues}
	if r.Issues == nil {
		r.Issues = []Issue{}
	}
	for _, is := range r.Issues {
		switch is.Level {
		case LevelError:
			r.Summary.Errors++
		case LevelWarning:
			r.Summary.Warnings++
		case LevelInfo:
			r.Summary.Info++
		}
	}
	r.Valid = r.Summary.Errors == 0 && (!strict || r.Summary.Warnings == 0)
	return r
}

// Merge combines several reports into one, re-evaluating validity.
func Merge(strict bool, reports ...*Report) *Report {
	var issues []Issue
	for _, r := range reports {
		if r != nil {
			issues = append(issues, r.Issues...)
		}
	}
	return NewReport(issues, strict)
}

// Errors returns only the error-level issues.
func (r *Report) Errors() []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if is.Level == LevelError {
			out = append(out, is)
		}
	}
	return out
}
