package delta

import (
	"errors"
	"fmt"
)

// Sentinel errors for resolving delta operations against a main spec.
var (
	// ErrRequirementNotFound indicates a RENAMED, REMOVED or MODIFIED entry names
	// a requirement the target spec does not contain.
	ErrRequirementNotFound = errors.New("requirement not found")
	// ErrRequirementExists indicates an ADDED entry names a requirement that
	// already exists.
	ErrRequirementExists = errors.New("requirement already exists")
	// ErrRenameTargetExists indicates a RENAMED entry would overwrite an
	// existing requirement.
	ErrRenameTargetExists = errors.New("rename target already exists")
	// ErrStaleRenameReference indicates a MODIFIED entry uses the pre-rename
	// name of a requirement renamed in the same delta.
	ErrStaleRenameReference = errors.New("MODIFIED references the old name of a renamed requirement")
	// ErrNewSpecOperation indicates MODIFIED or RENAMED entries targeting a
	// capability that has no main spec yet.
	ErrNewSpecOperation = errors.New("only ADDED requirements are allowed for a new spec")
	// ErrInconsistentPlan indicates duplicate or contradictory entries within a
	// single delta spec.
	ErrInconsistentPlan = errors.New("inconsistent delta operations")
	// ErrDuplicateRequirement indicates the target spec declares the same
	// requirement name more than once, so blocks cannot be matched by name.
	ErrDuplicateRequirement = errors.New("requirement declared more than once in the main spec")
	// ErrDuplicateCapability indicates two delta specs in one change resolve to
	// the same capability.
	ErrDuplicateCapability = errors.New("multiple delta specs for the same capability")
)

// OpError records which operation failed for which capability. Op is empty
// when the target spec itself is unusable.
type OpError struct {
	Capability string
	Op         Op
	Header     string
	Detail     string // optional remediation text
	Err        error
}

// Error returns a message identifying the capability, operation and header.
func (e *OpError) Error() string {
	var msg string
	if e.Op == "" {
		msg = fmt.Sprintf("%s: delta validation failed - %q: %v", e.Capability, e.Header, e.Err)
	} else {
		msg = fmt.Sprintf("%s: delta validation failed - %s %q: %v", e.Capability, e.Op, e.Header, e.Err)
	}
	if e.Detail != "" {
		msg += "; " + e.Detail
	}
	return msg
}

// Unwrap returns the underlying sentinel for use with errors.Is.
func (e *OpError) Unwrap() error {
	return e.Err
}
