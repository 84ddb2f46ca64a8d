package delta

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/papapumpkin/openspec/internal/markdown"
)

var (
	removedBullet = regexp.MustCompile("^\\s*[-*]\\s*`?###\\s*Requirement:\\s*(.+?)`?\\s*$")
	renameFrom    = regexp.MustCompile("^\\s*[-*]?\\s*FROM:\\s*`?(?:###\\s*Requirement:\\s*)?(.+?)`?\\s*$")
	renameTo      = regexp.MustCompile("^\\s*[-*]?\\s*TO:\\s*`?(?:###\\s*Requirement:\\s*)?(.+?)`?\\s*$")
)

// Op is a requirement operation keyword.
type Op string

// Requirement operations, listed in the order Apply runs them.
const (
	OpRenamed  Op = "RENAMED"
	OpRemoved  Op = "REMOVED"
	OpModified Op = "MODIFIED"
	OpAdded    Op = "ADDED"
)

// Rename maps an existing requirement name to a new one.
type Rename struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Plan is the parsed content of one delta spec: the typed requirement
// operations for a single capability.
type Plan struct {
	Added    []Block
	Modified []Block
	Removed  []string
	Renamed  []Rename

	// Sections records which operation headers were present, even when they
	// held no parsable entries.
	Sections []Op
}

// ParseDeltaSpec parses the "## ADDED|MODIFIED|REMOVED|RENAMED Requirements"
// sections of a delta spec. Section titles match case-insensitively;
// requirement names are trimmed.
func ParseDeltaSpec(content string) Plan {
	var p Plan
	for _, sec := range markdown.Split(content, 2) {
		if !sec.Kind.IsDelta() {
			continue
		}
		op := Op(sec.Kind.Operation())
		p.Sections = append(p.Sections, op)
		body := strings.Join(sec.Body, "\n")
		switch op {
		case OpAdded:
			p.Added = append(p.Added, ParseBlocks(body)...)
		case OpModified:
			p.Modified = append(p.Modified, ParseBlocks(body)...)
		case OpRemoved:
			p.Removed = append(p.Removed, parseRemoved(sec.Body)...)
		case OpRenamed:
			p.Renamed = append(p.Renamed, parseRenamed(sec.Body)...)
		}
	}
	return p
}

func parseRemoved(lines []string) []string {
	var names []string
	headings := markdown.HeadingLines(lines)
	for i, line := range lines {
		if headings[i] {
			if m := requirementHeader.FindStringSubmatch(line); m != nil {
				names = append(names, strings.TrimSpace(m[1]))
			}
			continue
		}
		if m := removedBullet.FindStringSubmatch(line); m != nil {
			names = append(names, strings.TrimSpace(m[1]))
		}
	}
	return names
}

func parseRenamed(lines []string) []Rename {
	var (
		out  []Rename
		from string
	)
	for _, line := range lines {
		if m := renameFrom.FindStringSubmatch(line); m != nil {
			from = strings.TrimSpace(m[1])
			continue
		}
		if m := renameTo.FindStringSubmatch(line); m != nil && from != "" {
			out = append(out, Rename{From: from, To: strings.TrimSpace(m[1])})
			from = ""
		}
	}
	return out
}

// Count returns the total number of operations in the plan.
func (p Plan) Count() int {
	return len(p.Added) + len(p.Modified) + len(p.Removed) + len(p.Renamed)
}

// HasSections reports whether any delta operation header was present.
func (p Plan) HasSections() bool {
	return len(p.Sections) > 0
}

// Conflict describes an inconsistency inside a single plan that would make
// its operations ambiguous regardless of the target spec.
type Conflict struct {
	Op      Op
	Name    string
	Message string
	Err     error // ErrStaleRenameReference or ErrInconsistentPlan
}

// Conflicts lists duplicate entries within a section and contradictory
// entries across sections. An empty result means the plan is internally
// consistent.
func (p Plan) Conflicts() []Conflict {
	var out []Conflict
	add := func(op Op, name string, err error, format string, args ...any) {
		out = append(out, Conflict{Op: op, Name: name, Message: fmt.Sprintf(format, args...), Err: err})
	}

	dup := func(op Op, names []string) map[string]bool {
		seen := make(map[string]bool, len(names))
		for _, n := range names {
			if seen[n] {
				add(op, n, ErrInconsistentPlan, "Duplicate requirement in %s: %q", op, n)
			}
			seen[n] = true
		}
		return seen
	}

	added := dup(OpAdded, blockNames(p.Added))
	modified := dup(OpModified, blockNames(p.Modified))
	removed := dup(OpRemoved, p.Removed)

	froms := make(map[string]bool, len(p.Renamed))
	tos := make(map[string]bool, len(p.Renamed))
	for _, r := range p.Renamed {
		if froms[r.From] {
			add(OpRenamed, r.From, ErrInconsistentPlan, "Duplicate FROM in RENAMED: %q", r.From)
		}
		if tos[r.To] {
			add(OpRenamed, r.To, ErrInconsistentPlan, "Duplicate TO in RENAMED: %q", r.To)
		}
		froms[r.From] = true
		tos[r.To] = true
	}

	for _, b := range p.Modified {
		if removed[b.Name] {
			add(OpModified, b.Name, ErrInconsistentPlan, "Requirement present in both MODIFIED and REMOVED: %q", b.Name)
		}
		if added[b.Name] {
			add(OpModified, b.Name, ErrInconsistentPlan, "Requirement present in both MODIFIED and ADDED: %q", b.Name)
		}
	}
	for _, b := range p.Added {
		if removed[b.Name] {
			add(OpAdded, b.Name, ErrInconsistentPlan, "Requirement present in both ADDED and REMOVED: %q", b.Name)
		}
	}
	for _, r := range p.Renamed {
		if modified[r.From] {
			add(OpModified, r.From, ErrStaleRenameReference, "MODIFIED references old name from RENAMED. Use new header for %q", r.To)
		}
		if added[r.To] {
			add(OpRenamed, r.To, ErrInconsistentPlan, "RENAMED TO collides with ADDED for %q", r.To)
		}
	}
	return out
}

func blockNames(blocks []Block) []string {
	names := make([]string, len(blocks))
	for i, b := range blocks {
		names[i] = b.Name
	}
	return names
}
