// Package archive moves a finished change into changes/archive after
// applying its delta specs to the main specs.
//
// A run validates the change, warns about unfinished tasks, rebuilds every
// affected main spec in memory, validates the rebuilt documents, and only
// then writes them and moves the change directory. Any failure before the
// writes leaves both the main specs and the change untouched.
package archive

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/papapumpkin/openspec/internal/delta"
	"github.com/papapumpkin/openspec/internal/fsutil"
	"github.com/papapumpkin/openspec/internal/i18n"
	"github.com/papapumpkin/openspec/internal/tasks"
	"github.com/papapumpkin/openspec/internal/telemetry"
	"github.com/papapumpkin/openspec/internal/validation"
	"github.com/papapumpkin/openspec/internal/workspace"
)

var (
	// ErrCancelled indicates the user declined a confirmation.
	ErrCancelled = errors.New("archive cancelled")
	// ErrAborted indicates the spec update failed before any file was written.
	ErrAborted = errors.New("aborted, no files were changed")
	// ErrValidationFailed indicates the change or a rebuilt spec is invalid.
	ErrValidationFailed = errors.New("validation failed")
	// ErrArchiveExists indicates the dated archive directory is already taken.
	ErrArchiveExists = errors.New("archive already exists")
	// ErrNoActiveChanges indicates there is nothing to pick from.
	ErrNoActiveChanges = errors.New("no active changes")
	// ErrChangeIDRequired indicates no id was given and no prompt is available.
	ErrChangeIDRequired = errors.New("change id required")
	// ErrConfirmationRequired indicates a default-no question came up with no
	// prompt to ask it on.
	ErrConfirmationRequired = errors.New("confirmation required, pass --yes")
	// ErrNoOperations indicates a delta spec holds no requirement operations.
	ErrNoOperations = errors.New("delta spec has no ADDED/MODIFIED/REMOVED/RENAMED operations")
)

// ValidationError carries the report that stopped an archive. Capability is
// empty when the change itself failed and set when a rebuilt main spec did.
type ValidationError struct {
	Capability string
	Report     *validation.Report
}

// Error summarises the failing report.
func (e *ValidationError) Error() string {
	n := len(e.Report.Errors())
	if e.Capability != "" {
		return fmt.Sprintf("rebuilt spec %s: %d error(s)", e.Capability, n)
	}
	return fmt.Sprintf("change validation: %d error(s)", n)
}

// Unwrap returns ErrValidationFailed.
func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// ExistsError names the dated archive directory that is already taken.
type ExistsError struct {
	Name string
}

// Error names the taken directory.
func (e *ExistsError) Error() string { return fmt.Sprintf("%s: %s", ErrArchiveExists, e.Name) }

// Unwrap returns ErrArchiveExists.
func (e *ExistsError) Unwrap() error { return ErrArchiveExists }

// AbortError is a spec update failure that stopped the archive before any
// file was written. It matches both ErrAborted and its cause.
type AbortError struct {
	Err error
}

// Error returns the cause's message.
func (e *AbortError) Error() string { return e.Err.Error() }

// Unwrap returns ErrAborted and the cause.
func (e *AbortError) Unwrap() []error { return []error{ErrAborted, e.Err} }

// Prompter asks the user to confirm or pick. A nil Prompter accepts
// default-yes questions and fails default-no ones with ErrConfirmationRequired.
type Prompter interface {
	Confirm(question string, defaultYes bool) (bool, error)
	Select(question string, options []string) (string, error)
}

// Options are the archive command flags.
type Options struct {
	Yes        bool // answer every confirmation with yes
	SkipSpecs  bool // archive without touching main specs
	NoValidate bool // skip change and rebuilt-spec validation
	Strict     bool // warnings fail validation
}

// Result describes a completed archive.
type Result struct {
	ChangeID     string
	ArchiveName  string
	Updates      []SpecUpdate // written main specs; empty when skipped
	Totals       delta.Counts
	SpecsSkipped bool
}

// Archiver runs archives against one workspace.
type Archiver struct {
	WS        *workspace.Workspace
	Out       io.Writer
	Catalog   *i18n.Catalog
	Prompt    Prompter
	Telemetry *telemetry.Emitter
	Now       func() time.Time
}

// Run archives change id. An empty id asks the Prompter to pick one.
func (a *Archiver) Run(id string, opts Options) (*Result, error) {
	if !fsutil.IsDir(a.WS.ChangesPath()) {
		return nil, workspace.ErrNoChangesDir
	}
	if id == "" {
		picked, err := a.pick()
		if err != nil {
			return nil, err
		}
		id = picked
	}
	dir := a.WS.ChangeDir(id)
	if id == workspace.ArchiveDir || !fsutil.IsDir(dir) {
		return nil, fmt.Errorf("%w: %s", workspace.ErrChangeNotFound, id)
	}
	a.emit(telemetry.Event{Kind: telemetry.KindArchiveStart, Change: id})

	if err := a.checkValidity(id, dir, opts); err != nil {
		return nil, a.abort(id, err)
	}
	if err := a.checkTasks(dir, opts); err != nil {
		return nil, a.abort(id, err)
	}

	res := &Result{ChangeID: id, ArchiveName: a.now().UTC().Format("2006-01-02") + "-" + id}
	archiveDir := filepath.Join(a.WS.ArchivePath(), res.ArchiveName)
	if fsutil.Exists(archiveDir) {
		return nil, a.abort(id, &ExistsError{Name: res.ArchiveName})
	}

	if opts.SkipSpecs {
		a.println(a.Catalog.T("archive.skip_specs"))
		res.SpecsSkipped = true
	} else if err := a.updateSpecs(id, opts, res); err != nil {
		return nil, a.abort(id, err)
	}

	if err := fsutil.MoveDir(dir, archiveDir); err != nil {
		if errors.Is(err, fsutil.ErrDestinationExists) {
			err = &ExistsError{Name: res.ArchiveName}
		}
		return nil, err
	}
	a.emit(telemetry.Event{Kind: telemetry.KindChangeArchived, Change: id,
		Data: map[string]string{"archive": res.ArchiveName}})
	a.println(a.Catalog.T("archive.done", "id", id, "name", res.ArchiveName))
	return res, nil
}

func (a *Archiver) pick() (string, error) {
	if a.Prompt == nil {
		return "", ErrChangeIDRequired
	}
	ids, err := a.WS.ChangeIDs()
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", ErrNoActiveChanges
	}
	return a.Prompt.Select(a.Catalog.T("archive.select_prompt"), ids)
}

// checkValidity validates the change's delta specs, which gate the archive.
// Proposal issues are reported but never block it.
func (a *Archiver) checkValidity(id, dir string, opts Options) error {
	if opts.NoValidate {
		a.println("⚠ " + a.Catalog.T("archive.validation_skipped"))
		if opts.Yes {
			return nil
		}
		ok, err := a.confirm(a.Catalog.T("archive.confirm_no_validate"), false)
		if err != nil {
			return err
		}
		if !ok {
			a.println(a.Catalog.T("archive.cancelled"))
			return ErrCancelled
		}
		return nil
	}

	v := validation.New(opts.Strict)
	proposal := filepath.Join(dir, workspace.ProposalFile)
	if fsutil.Exists(proposal) {
		if r := v.ValidateChange(proposal); len(r.Issues) > 0 {
			a.println(a.Catalog.T("archive.proposal_warnings", "count", len(r.Issues)))
			for _, is := range r.Issues {
				a.println(fmt.Sprintf("  - %s: %s", is.Path, is.Message))
			}
		}
	}

	updates, err := Collect(a.WS, id)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	if r := v.ValidateChangeDeltaSpecs(dir); !r.Valid {
		return &ValidationError{Report: r}
	}
	return nil
}

func (a *Archiver) checkTasks(dir string, opts Options) error {
	progress, err := tasks.CountFile(filepath.Join(dir, tasks.FileName))
	if err != nil {
		return err
	}
	n := progress.Incomplete()
	if n == 0 {
		return nil
	}
	if opts.Yes {
		a.println(a.Catalog.T("archive.tasks_yes", "count", n))
		return nil
	}
	ok, err := a.confirm(a.Catalog.T("archive.tasks_prompt", "count", n), false)
	if err != nil {
		return err
	}
	if !ok {
		a.println(a.Catalog.T("archive.cancelled"))
		return ErrCancelled
	}
	return nil
}

func (a *Archiver) updateSpecs(id string, opts Options, res *Result) error {
	updates, err := Collect(a.WS, id)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}

	a.println(a.Catalog.T("archive.specs_to_update"))
	for _, u := range updates {
		status := a.Catalog.T("archive.create")
		if u.Exists {
			status = a.Catalog.T("archive.update")
		}
		a.println(fmt.Sprintf("  %s: %s", u.Capability, status))
	}
	if !opts.Yes {
		ok, err := a.confirm(a.Catalog.T("archive.confirm_specs"), true)
		if err != nil {
			return err
		}
		if !ok {
			a.println(a.Catalog.T("archive.specs_skipped"))
			res.SpecsSkipped = true
			return nil
		}
	}

	if err := Build(updates, id); err != nil {
		return &AbortError{Err: err}
	}
	if !opts.NoValidate {
		v := validation.New(opts.Strict)
		for _, u := range updates {
			if r := v.ValidateSpecContent(u.Capability, u.Result.Content); !r.Valid {
				return &AbortError{Err: &ValidationError{Capability: u.Capability, Report: r}}
			}
		}
	}

	for _, u := range updates {
		if err := fsutil.WriteFileAtomic(u.Target, []byte(u.Result.Content), 0o644); err != nil {
			return err
		}
		a.emit(telemetry.Event{Kind: telemetry.KindSpecWritten, Change: id, Capability: u.Capability, Data: u.Result.Counts})
		a.printCounts(u)
		for _, w := range u.Result.Warnings {
			slog.Warn("archive", "capability", u.Capability, "warning", w)
		}
	}

	totals := Totals(updates)
	res.Updates = updates
	res.Totals = totals
	a.println(a.Catalog.T("archive.totals",
		"added", totals.Added, "modified", totals.Modified, "removed", totals.Removed, "renamed", totals.Renamed))
	a.println(a.Catalog.T("archive.specs_updated"))
	return nil
}

func (a *Archiver) printCounts(u SpecUpdate) {
	rel, err := filepath.Rel(a.WS.Root, u.Target)
	if err != nil {
		rel = u.Target
	}
	a.println(a.Catalog.T("archive.applying", "path", filepath.ToSlash(rel)))
	c := u.Result.Counts
	for _, line := range []struct {
		key string
		n   int
	}{
		{"archive.added", c.Added},
		{"archive.modified", c.Modified},
		{"archive.removed", c.Removed},
		{"archive.renamed", c.Renamed},
	} {
		if line.n > 0 {
			a.println("  " + a.Catalog.T(line.key, "count", line.n))
		}
	}
}

// abort records a failed run. Delta resolution failures print the abort
// notice here so every caller sees the same wording.
func (a *Archiver) abort(id string, err error) error {
	a.emit(telemetry.Event{Kind: telemetry.KindArchiveAborted, Change: id, Data: map[string]string{"error": err.Error()}})
	var ae *AbortError
	if errors.As(err, &ae) {
		var ve *ValidationError
		if !errors.As(ae.Err, &ve) {
			a.println(ae.Err.Error())
		}
		a.println(a.Catalog.T("archive.aborted"))
	}
	return err
}

func (a *Archiver) confirm(question string, def bool) (bool, error) {
	if a.Prompt == nil {
		if !def {
			return false, ErrConfirmationRequired
		}
		return true, nil
	}
	return a.Prompt.Confirm(question, def)
}

func (a *Archiver) emit(evt telemetry.Event) {
	if err := a.Telemetry.Emit(evt); err != nil {
		slog.Debug("telemetry", "error", err)
	}
}

func (a *Archiver) println(s string) {
	if a.Out != nil {
		fmt.Fprintln(a.Out, s)
	}
}

func (a *Archiver) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
