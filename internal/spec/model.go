// Package spec holds the OpenSpec document model and the parsers that build
// it from markdown: a Spec (purpose plus requirements with scenarios) and a
// Change (why, what changes, and capability deltas).
package spec

import "strings"

// Operation is the kind of change a Delta applies to a capability.
type Operation string

// Delta operations.
const (
	OpAdded    Operation = "ADDED"
	OpModified Operation = "MODIFIED"
	OpRemoved  Operation = "REMOVED"
	OpRenamed  Operation = "RENAMED"
)

// Scenario is one acceptance example attached to a requirement.
type Scenario struct {
	RawText string `json:"rawText"`
}

// Requirement is one normative statement with its scenarios in document order.
type Requirement struct {
	Text      string     `json:"text"`
	Scenarios []Scenario `json:"scenarios"`
}

// HasKeyword reports whether the requirement text contains SHALL or MUST.
// The match is case-sensitive.
func (r Requirement) HasKeyword() bool {
	return ContainsKeyword(r.Text)
}

// ContainsKeyword reports whether s contains the literal token SHALL or MUST.
func ContainsKeyword(s string) bool {
	return strings.Contains(s, "SHALL") || strings.Contains(s, "MUST")
}

// Spec is a parsed capability specification. Name comes from the enclosing
// directory, not from the document.
type Spec struct {
	Name         string         `json:"name"`
	Overview     string         `json:"overview"`
	Requirements []Requirement  `json:"requirements"`
	Frontmatter  map[string]any `json:"-"`
}

// Rename carries the from/to names of a RENAMED delta.
type Rename struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Delta is one capability-scoped operation belonging to a Change.
type Delta struct {
	Spec        string       `json:"spec"`
	Operation   Operation    `json:"operation"`
	Description string       `json:"description"`
	Requirement *Requirement `json:"requirement,omitempty"`
	Rename      *Rename      `json:"rename,omitempty"`
}

// Change is a parsed change proposal. Name comes from the enclosing directory.
type Change struct {
	Name        string         `json:"name"`
	Why         string         `json:"why"`
	WhatChanges string         `json:"whatChanges"`
	Deltas      []Delta        `json:"deltas"`
	Frontmatter map[string]any `json:"-"`
}
