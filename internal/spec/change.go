package spec

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/papapumpkin/openspec/internal/delta"
	"github.com/papapumpkin/openspec/internal/markdown"
)

var (
	deltaBullet = regexp.MustCompile(`^\s*[-*]\s+\*\*([^*]+?)\*\*\s*:?\s*(.*)$`)
	wordPattern = regexp.MustCompile(`[A-Za-z]+`)
)

// verbOps maps description verbs (and their inflections) to operations.
var verbOps = map[string]Operation{
	"add": OpAdded, "adds": OpAdded, "added": OpAdded, "adding": OpAdded,
	"modify": OpModified, "modifies": OpModified, "modified": OpModified, "modifying": OpModified,
	"update": OpModified, "updates": OpModified, "updated": OpModified, "updating": OpModified,
	"change": OpModified, "changes": OpModified, "changed": OpModified, "changing": OpModified,
	"remove": OpRemoved, "removes": OpRemoved, "removed": OpRemoved, "removing": OpRemoved,
	"delete": OpRemoved, "deletes": OpRemoved, "deleted": OpRemoved, "deleting": OpRemoved,
	"rename": OpRenamed, "renames": OpRenamed, "renamed": OpRenamed, "renaming": OpRenamed,
}

// ParseChange parses a change proposal, deriving deltas from the bullet list
// in its What Changes section only.
func ParseChange(content, name string) (*Change, error) {
	fm, body, err := markdown.SplitFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("change %s: %w", name, err)
	}
	sections := markdown.Split(body, 2)

	why, ok := markdown.Find(sections, markdown.KindWhy)
	if !ok {
		return nil, missing(DocChange, "Why")
	}
	what, ok := markdown.Find(sections, markdown.KindWhatChanges)
	if !ok {
		return nil, missing(DocChange, "What Changes")
	}

	c := &Change{
		Name:        name,
		Why:         why.Text(),
		WhatChanges: what.Text(),
		Deltas:      BulletDeltas(what.Body),
	}
	if fm != nil {
		c.Frontmatter = fm.Values
	}
	return c, nil
}

// BulletDeltas extracts "- **<spec>:** <description>" bullets in order.
func BulletDeltas(lines []string) []Delta {
	deltas := []Delta{}
	for _, line := range lines {
		m := deltaBullet.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m[1]), ":"))
		if name == "" {
			continue
		}
		desc := strings.TrimSpace(m[2])
		deltas = append(deltas, Delta{Spec: name, Operation: InferOperation(desc), Description: desc})
	}
	return deltas
}

// opPriority is the order in which verb families are tried.
var opPriority = []Operation{OpAdded, OpModified, OpRemoved, OpRenamed}

// InferOperation returns the operation named by the verbs in description.
// When several verb families appear, the first in opPriority wins regardless
// of word position, so "Remove the update flow" is MODIFIED. Without a
// recognised verb the result is ADDED.
func InferOperation(description string) Operation {
	found := map[Operation]bool{}
	for _, w := range wordPattern.FindAllString(description, -1) {
		if op, ok := verbOps[strings.ToLower(w)]; ok {
			found[op] = true
		}
	}
	for _, op := range opPriority {
		if found[op] {
			return op
		}
	}
	return OpAdded
}

// DeltaFile locates one delta spec inside a change directory.
type DeltaFile struct {
	Capability string // path under specs/, e.g. "auth"
	Path       string // slash-separated, relative to the change directory
}

// DeltaSpecFiles lists the delta specs under specs/ in fsys, which must be
// rooted at a change directory. Results are sorted by capability. Two paths
// whose capabilities differ only in case are rejected.
func DeltaSpecFiles(fsys fs.FS) ([]DeltaFile, error) {
	matches, err := doublestar.Glob(fsys, "specs/**/spec.md")
	if err != nil {
		return nil, fmt.Errorf("scanning delta specs: %w", err)
	}
	sort.Strings(matches)

	var files []DeltaFile
	seen := make(map[string]string, len(matches))
	for _, m := range matches {
		capability := strings.TrimPrefix(path.Dir(m), "specs/")
		if capability == "specs" || capability == "" {
			continue
		}
		key := strings.ToLower(capability)
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %s and %s", delta.ErrDuplicateCapability, prev, m)
		}
		seen[key] = m
		files = append(files, DeltaFile{Capability: capability, Path: m})
	}
	return files, nil
}

// ParseChangeWithDeltas parses a change proposal and replaces bullet-derived
// deltas with entries from structured delta specs found in fsys (rooted at
// the change directory).
func ParseChangeWithDeltas(fsys fs.FS, content, name string) (*Change, error) {
	c, err := ParseChange(content, name)
	if err != nil {
		return nil, err
	}
	files, err := DeltaSpecFiles(fsys)
	if err != nil {
		return nil, err
	}

	structured := make(map[string][]Delta, len(files))
	order := make([]string, 0, len(files))
	for _, f := range files {
		data, err := fs.ReadFile(fsys, f.Path)
		if err != nil {
			return nil, fmt.Errorf("reading delta spec %s: %w", f.Path, err)
		}
		ds := DeltasFromPlan(f.Capability, delta.ParseDeltaSpec(string(data)))
		if len(ds) == 0 {
			continue
		}
		structured[f.Capability] = ds
		order = append(order, f.Capability)
	}
	c.Deltas = ResolveDeltas(c.Deltas, structured, order)
	return c, nil
}

// ResolveDeltas merges bullet deltas with structured ones. A capability with a
// structured source takes its entries from there, placed where its first
// bullet appeared; remaining bullets for it are dropped. Capabilities that only
// have structured deltas follow, in the given order.
func ResolveDeltas(bullets []Delta, structured map[string][]Delta, order []string) []Delta {
	out := []Delta{}
	placed := make(map[string]bool, len(structured))
	for _, b := range bullets {
		entries, ok := structured[b.Spec]
		if !ok {
			out = append(out, b)
			continue
		}
		if !placed[b.Spec] {
			out = append(out, entries...)
			placed[b.Spec] = true
		}
	}
	for _, capability := range order {
		if !placed[capability] {
			out = append(out, structured[capability]...)
			placed[capability] = true
		}
	}
	return out
}

// DeltasFromPlan converts a parsed delta spec into one Delta per entry,
// grouped by section in the order the sections first appear.
func DeltasFromPlan(capability string, p delta.Plan) []Delta {
	var out []Delta
	done := make(map[delta.Op]bool, 4)
	for _, op := range p.Sections {
		if done[op] {
			continue
		}
		done[op] = true
		switch op {
		case delta.OpAdded:
			for _, b := range p.Added {
				req := ParseRequirementBlock(b.Raw)
				out = append(out, Delta{Spec: capability, Operation: OpAdded,
					Description: "Add requirement: " + b.Name, Requirement: &req})
			}
		case delta.OpModified:
			for _, b := range p.Modified {
				req := ParseRequirementBlock(b.Raw)
				out = append(out, Delta{Spec: capability, Operation: OpModified,
					Description: "Modify requirement: " + b.Name, Requirement: &req})
			}
		case delta.OpRemoved:
			for _, n := range p.Removed {
				out = append(out, Delta{Spec: capability, Operation: OpRemoved,
					Description: "Remove requirement: " + n})
			}
		case delta.OpRenamed:
			for _, r := range p.Renamed {
				out = append(out, Delta{Spec: capability, Operation: OpRenamed,
					Description: fmt.Sprintf("Rename requirement: %s to %s", r.From, r.To),
					Rename:      &Rename{From: r.From, To: r.To}})
			}
		}
	}
	return out
}

// LoadChange reads <dir>/proposal.md and parses it together with the delta
// specs under <dir>/specs. The change name is the directory name.
func LoadChange(dir string) (*Change, error) {
	data, err := os.ReadFile(filepath.Join(dir, "proposal.md"))
	if err != nil {
		return nil, fmt.Errorf("reading proposal: %w", err)
	}
	return ParseChangeWithDeltas(os.DirFS(dir), string(data), filepath.Base(dir))
}

// LoadChangeFile parses a proposal at an arbitrary path, resolving delta specs
// relative to the file's directory.
func LoadChangeFile(file string) (*Change, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading proposal: %w", err)
	}
	dir := filepath.Dir(file)
	return ParseChangeWithDeltas(os.DirFS(dir), string(data), filepath.Base(dir))
}
