package validation

import (
	"fmt"

	"github.com/papapumpkin/openspec/internal/spec"
)

// Thresholds applied by the schema checks.
const (
	MinPurposeLength          = 50
	MinWhyLength              = 50
	MaxWhyLength              = 1000
	MaxRequirementTextLength  = 500
	MaxDeltasPerChange        = 10
	MinDeltaDescriptionLength = 10
)

const (
	msgScenarioEmpty         = "Scenario text cannot be empty"
	msgRequirementEmpty      = "Requirement text cannot be empty"
	msgRequirementNoShall    = "Requirement must contain SHALL or MUST keyword"
	msgRequirementNoScenario = "Requirement must have at least one scenario"
	msgRequirementTooLong    = "Requirement text is very long (>500 characters). Consider breaking it down."
	msgSpecNameEmpty         = "Spec name cannot be empty"
	msgPurposeEmpty          = "Purpose section cannot be empty"
	msgSpecNoRequirements    = "Spec must have at least one requirement"
	msgPurposeTooBrief       = "Purpose section is too brief (less than 50 characters)"
	msgChangeNameEmpty       = "Change name cannot be empty"
	msgWhyTooShort           = "Why section must be at least 50 characters"
	msgWhyTooLong            = "Why section should not exceed 1000 characters"
	msgWhatChangesEmpty      = "What Changes section cannot be empty"
	msgChangeNoDeltas        = "Change must have at least one delta"
	msgTooManyDeltas         = "Consider splitting changes with more than 10 deltas"
	msgDeltaSpecEmpty        = "Spec name cannot be empty"
	msgDeltaDescEmpty        = "Delta description cannot be empty"
	msgDeltaDescTooBrief     = "Delta description is too brief"

	guideScenarioFormat = "Scenarios must use level-4 headers. Convert bullet lists to:\n" +
		"#### Scenario: Short name\n- **WHEN** ...\n- **THEN** ...\n- **AND** ..."

	guideNoDeltas = "No deltas found. Ensure your change has a specs/ directory with capability folders " +
		"(e.g. specs/http-server/spec.md) containing .md files that use delta headers " +
		"(## ADDED/MODIFIED/REMOVED/RENAMED Requirements) and that each requirement includes at least one " +
		"\"#### Scenario:\" block. Tip: run \"openspec change show <change-id> --json --deltas-only\" to inspect parsed deltas."
)

// CheckSpec applies the spec schema to a parsed spec.
func CheckSpec(s *spec.Spec) []Issue {
	var issues []Issue
	add := func(level Level, path, msg string) {
		issues = append(issues, Issue{Level: level, Path: path, Message: msg})
	}

	if s.Name == "" {
		add(LevelError, "name", msgSpecNameEmpty)
	}
	if s.Overview == "" {
		add(LevelError, "overview", msgPurposeEmpty)
	} else if len(s.Overview) < MinPurposeLength {
		add(LevelWarning, "overview", msgPurposeTooBrief)
	}
	if len(s.Requirements) == 0 {
		add(LevelError, "requirements", msgSpecNoRequirements)
	}
	for i, r := range s.Requirements {
		issues = append(issues, checkRequirement(fmt.Sprintf("requirements[%d]", i), r, "")...)
	}
	return issues
}

// CheckChange applies the change schema to a parsed change.
func CheckChange(c *spec.Change) []Issue {
	var issues []Issue
	add := func(level Level, path, msg string) {
		issues = append(issues, Issue{Level: level, Path: path, Message: msg})
	}

	if c.Name == "" {
		add(LevelError, "name", msgChangeNameEmpty)
	}
	switch {
	case len(c.Why) < MinWhyLength:
		add(LevelError, "why", msgWhyTooShort)
	case len(c.Why) > MaxWhyLength:
		add(LevelError, "why", msgWhyTooLong)
	}
	if c.WhatChanges == "" {
		add(LevelError, "whatChanges", msgWhatChangesEmpty)
	}

	switch n := len(c.Deltas); {
	case n == 0:
		add(LevelError, "deltas", msgChangeNoDeltas+". "+guideNoDeltas)
	case n > MaxDeltasPerChange:
		add(LevelWarning, "deltas", msgTooManyDeltas)
	}

	for i, d := range c.Deltas {
		base := fmt.Sprintf("deltas[%d]", i)
		if d.Spec == "" {
			add(LevelError, base+".spec", msgDeltaSpecEmpty)
		}
		switch {
		case d.Description == "":
			add(LevelError, base+".description", msgDeltaDescEmpty)
		case len(d.Description) < MinDeltaDescriptionLength:
			add(LevelWarning, base+".description", msgDeltaDescTooBrief)
		}
		if d.Operation == spec.OpAdded || d.Operation == spec.OpModified {
			if d.Requirement == nil {
				add(LevelWarning, base+".requirement", fmt.Sprintf("%s delta should include requirements", d.Operation))
				continue
			}
			// Delta descriptions carry the requirement header, which may hold the keyword.
			issues = append(issues, checkRequirement(base+".requirement", *d.Requirement, d.Description)...)
		}
	}
	return issues
}

func checkRequirement(path string, r spec.Requirement, header string) []Issue {
	var issues []Issue
	add := func(level Level, p, msg string) {
		issues = append(issues, Issue{Level: level, Path: p, Message: msg})
	}

	switch {
	case r.Text == "":
		add(LevelError, path+".text", msgRequirementEmpty)
	case !r.HasKeyword() && !spec.ContainsKeyword(header):
		add(LevelError, path+".text", msgRequirementNoShall)
	}
	if len(r.Text) > MaxRequirementTextLength {
		add(LevelInfo, path+".text", msgRequirementTooLong)
	}
	if len(r.Scenarios) == 0 {
		add(LevelError, path+".scenarios", msgRequirementNoScenario+". "+guideScenarioFormat)
	}
	for j, sc := range r.Scenarios {
		if sc.RawText == "" {
			add(LevelError, fmt.Sprintf("%s.scenarios[%d]", path, j), msgScenarioEmpty)
		}
	}
	return issues
}
