// Package delta parses delta specs and applies their requirement operations
// to a main spec document in memory. Blocks are matched by requirement name,
// compared after trimming, and the text of untouched requirements is carried
// over byte for byte.
package delta

import (
	"errors"
	"fmt"
	"strings"
)

// Counts tallies applied operations.
type Counts struct {
	Added    int `json:"added"`
	Modified int `json:"modified"`
	Removed  int `json:"removed"`
	Renamed  int `json:"renamed"`
}

// Add accumulates o into c.
func (c *Counts) Add(o Counts) {
	c.Added += o.Added
	c.Modified += o.Modified
	c.Removed += o.Removed
	c.Renamed += o.Renamed
}

// Total returns the number of operations counted.
func (c Counts) Total() int {
	return c.Added + c.Modified + c.Removed + c.Renamed
}

// Target is the main spec a plan is applied to.
type Target struct {
	Capability string
	ChangeID   string // used for the Purpose stub of a new spec
	Content    string // ignored when Exists is false
	Exists     bool
}

// Result is the rebuilt spec document for one capability. Nothing is written
// to disk by Apply.
type Result struct {
	Capability string
	Content    string
	Counts     Counts
	Created    bool
	Warnings   []string
}

// Apply resolves every operation in p against t and returns the rebuilt
// document. Operations run in a fixed order: RENAMED, REMOVED, MODIFIED,
// ADDED. The first unresolvable operation aborts with an *OpError and no
// partial result, as does a target that repeats a requirement name.
func Apply(t Target, p Plan) (*Result, error) {
	if err := checkConsistency(t.Capability, p); err != nil {
		return nil, err
	}

	content := t.Content
	res := &Result{Capability: t.Capability}
	if !t.Exists {
		if len(p.Modified) > 0 {
			return nil, &OpError{Capability: t.Capability, Op: OpModified, Header: p.Modified[0].Name, Err: ErrNewSpecOperation}
		}
		if len(p.Renamed) > 0 {
			return nil, &OpError{Capability: t.Capability, Op: OpRenamed, Header: p.Renamed[0].From, Err: ErrNewSpecOperation}
		}
		content = Skeleton(t.Capability, t.ChangeID)
		res.Created = true
	}

	sec := ExtractRequirementsSection(content)
	byName := make(map[string]Block, len(sec.Blocks))
	order := make([]string, 0, len(sec.Blocks))
	for _, b := range sec.Blocks {
		if _, dup := byName[b.Name]; dup {
			return nil, &OpError{Capability: t.Capability, Header: b.Name, Err: ErrDuplicateRequirement,
				Detail: "rename or merge the duplicate blocks before archiving"}
		}
		byName[b.Name] = b
		order = append(order, b.Name)
	}

	for _, r := range p.Renamed {
		b, ok := byName[r.From]
		if !ok {
			return nil, &OpError{Capability: t.Capability, Op: OpRenamed, Header: r.From, Err: ErrRequirementNotFound}
		}
		if _, taken := byName[r.To]; taken {
			return nil, &OpError{Capability: t.Capability, Op: OpRenamed, Header: r.To, Err: ErrRenameTargetExists}
		}
		delete(byName, r.From)
		byName[r.To] = renameBlock(b, r.To)
		for i, n := range order {
			if n == r.From {
				order[i] = r.To
			}
		}
		res.Counts.Renamed++
	}

	for _, name := range p.Removed {
		if _, ok := byName[name]; !ok {
			if res.Created {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("%s: REMOVED %q ignored for a new spec", t.Capability, name))
				continue
			}
			return nil, &OpError{Capability: t.Capability, Op: OpRemoved, Header: name, Err: ErrRequirementNotFound}
		}
		delete(byName, name)
		res.Counts.Removed++
	}

	for _, b := range p.Modified {
		if _, ok := byName[b.Name]; !ok {
			return nil, &OpError{Capability: t.Capability, Op: OpModified, Header: b.Name, Err: ErrRequirementNotFound}
		}
		byName[b.Name] = b
		res.Counts.Modified++
	}

	for _, b := range p.Added {
		if _, ok := byName[b.Name]; ok {
			return nil, &OpError{Capability: t.Capability, Op: OpAdded, Header: b.Name, Err: ErrRequirementExists}
		}
		byName[b.Name] = b
		order = append(order, b.Name)
		res.Counts.Added++
	}

	blocks := make([]Block, 0, len(byName))
	for _, name := range order {
		if b, ok := byName[name]; ok {
			blocks = append(blocks, b)
		}
	}
	res.Content = sec.Compose(blocks)
	return res, nil
}

// checkConsistency rejects plans whose entries contradict each other. A stale
// rename reference is reported ahead of other conflicts since it carries the
// most specific remediation.
func checkConsistency(capability string, p Plan) error {
	conflicts := p.Conflicts()
	if len(conflicts) == 0 {
		return nil
	}
	first := conflicts[0]
	for _, c := range conflicts {
		if errors.Is(c.Err, ErrStaleRenameReference) {
			first = c
			break
		}
	}
	oe := &OpError{Capability: capability, Op: first.Op, Header: first.Name, Err: first.Err, Detail: first.Message}
	if errors.Is(first.Err, ErrStaleRenameReference) {
		for _, r := range p.Renamed {
			if r.From == first.Name {
				oe.Detail = fmt.Sprintf("when a rename exists, MODIFIED must reference the NEW header %q", HeaderFor(r.To))
				break
			}
		}
	}
	return oe
}

func renameBlock(b Block, to string) Block {
	header := HeaderFor(to)
	raw := header
	if i := strings.IndexByte(b.Raw, '\n'); i >= 0 {
		raw = header + b.Raw[i:]
	}
	return Block{HeaderLine: header, Name: to, Raw: raw}
}
