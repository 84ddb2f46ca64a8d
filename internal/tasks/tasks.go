// Package tasks counts checkbox progress in a change's tasks.md.
package tasks

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/papapumpkin/openspec/internal/markdown"
)

// FileName is the task list file inside a change directory.
const FileName = "tasks.md"

var (
	taskLine      = regexp.MustCompile(`^[-*]\s+\[[ xX]\]`)
	completedLine = regexp.MustCompile(`^[-*]\s+\[[xX]\]`)
)

// Progress is the checkbox tally of a task list.
type Progress struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// Incomplete returns the number of unchecked tasks.
func (p Progress) Incomplete() int {
	return p.Total - p.Completed
}

// Done reports whether there is at least one task and all are checked.
func (p Progress) Done() bool {
	return p.Total > 0 && p.Completed == p.Total
}

// Percent returns completion as 0..100, rounded down. A list with no tasks
// is 0%.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return p.Completed * 100 / p.Total
}

// String renders "2/5 tasks".
func (p Progress) String() string {
	return fmt.Sprintf("%d/%d tasks", p.Completed, p.Total)
}

// Count tallies "- [ ]" and "- [x]" lines (leading whitespace allowed).
func Count(content string) Progress {
	var p Progress
	for _, line := range markdown.Lines(content) {
		line = trimIndent(line)
		if !taskLine.MatchString(line) {
			continue
		}
		p.Total++
		if completedLine.MatchString(line) {
			p.Completed++
		}
	}
	return p
}

// CountFile tallies the task list at path. A missing file counts as no tasks.
func CountFile(path string) (Progress, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Progress{}, nil
	}
	if err != nil {
		return Progress{}, fmt.Errorf("reading tasks: %w", err)
	}
	return Count(string(data)), nil
}

func trimIndent(s string) string {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t') {
		s = s[1:]
	}
	return s
}
