package markdown

import (
	"regexp"
	"strings"
)

// Kind classifies a section header. Contract headers (Purpose, Requirements,
// Why, What Changes) match case-sensitively; delta operation headers match
// case-insensitively.
type Kind int

// Section kinds recognised by the document format.
const (
	KindUnknown Kind = iota
	KindPurpose
	KindRequirements
	KindWhy
	KindWhatChanges
	KindAdded
	KindModified
	KindRemoved
	KindRenamed
	KindRequirement
	KindScenario
)

var (
	deltaHeaderPattern       = regexp.MustCompile(`(?i)^(ADDED|MODIFIED|REMOVED|RENAMED)\s+Requirements$`)
	requirementHeaderPattern = regexp.MustCompile(`^Requirement:\s*(.+?)\s*$`)
	scenarioHeaderPattern    = regexp.MustCompile(`^Scenario:\s*(.*?)\s*$`)
)

// KindOf classifies a trimmed header title.
func KindOf(title string) Kind {
	title = strings.TrimSpace(title)
	switch title {
	case "Purpose":
		return KindPurpose
	case "Requirements":
		return KindRequirements
	case "Why":
		return KindWhy
	case "What Changes":
		return KindWhatChanges
	}
	if m := deltaHeaderPattern.FindStringSubmatch(title); m != nil {
		switch strings.ToUpper(m[1]) {
		case "ADDED":
			return KindAdded
		case "MODIFIED":
			return KindModified
		case "REMOVED":
			return KindRemoved
		case "RENAMED":
			return KindRenamed
		}
	}
	if requirementHeaderPattern.MatchString(title) {
		return KindRequirement
	}
	if scenarioHeaderPattern.MatchString(title) {
		return KindScenario
	}
	return KindUnknown
}

// IsDelta reports whether k is one of the four delta operation sections.
func (k Kind) IsDelta() bool {
	return k == KindAdded || k == KindModified || k == KindRemoved || k == KindRenamed
}

// Operation returns the upper-case operation keyword for a delta kind, or ""
// for any other kind.
func (k Kind) Operation() string {
	switch k {
	case KindAdded:
		return "ADDED"
	case KindModified:
		return "MODIFIED"
	case KindRemoved:
		return "REMOVED"
	case KindRenamed:
		return "RENAMED"
	}
	return ""
}

// RequirementName extracts the trimmed name from a "Requirement: <name>"
// header title.
func RequirementName(title string) (string, bool) {
	m := requirementHeaderPattern.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ScenarioName extracts the name from a "Scenario: <name>" header title.
func ScenarioName(title string) (string, bool) {
	m := scenarioHeaderPattern.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return "", false
	}
	return m[1], true
}
