package spec

import (
	"errors"
	"fmt"
)

// ErrMissingSection indicates a required top-level section is absent.
var ErrMissingSection = errors.New("missing required section")

// DocumentKind distinguishes spec documents from change proposals.
type DocumentKind string

// Document kinds named in parse errors.
const (
	DocSpec   DocumentKind = "Spec"
	DocChange DocumentKind = "Change"
)

// ParseError reports a structural problem that prevents a document from
// being parsed at all.
type ParseError struct {
	Kind    DocumentKind
	Section string // the missing header text, e.g. "Purpose"
	Err     error
}

// Error returns e.g. "Spec must have a Purpose section".
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s must have a %s section", e.Kind, e.Section)
}

// Unwrap returns the underlying sentinel.
func (e *ParseError) Unwrap() error {
	return e.Err
}

func missing(kind DocumentKind, section string) error {
	return &ParseError{Kind: kind, Section: section, Err: ErrMissingSection}
}
