// Package workspace locates a project's OpenSpec directory and enumerates the
// changes and specs inside it.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/papapumpkin/openspec/internal/fsutil"
	"github.com/papapumpkin/openspec/internal/spec"
	"github.com/papapumpkin/openspec/internal/tasks"
)

// Directory and file names of the OpenSpec layout.
const (
	DefaultDir   = "openspec"
	SpecsDir     = "specs"
	ChangesDir   = "changes"
	ArchiveDir   = "archive"
	SpecFile     = "spec.md"
	ProposalFile = "proposal.md"
)

var (
	// ErrNoOpenSpecDir indicates the project has not been initialised.
	ErrNoOpenSpecDir = errors.New("no openspec directory")
	// ErrNoChangesDir indicates the openspec directory has no changes/ folder.
	ErrNoChangesDir = errors.New("no changes directory")
	// ErrChangeNotFound indicates no active change has the requested id.
	ErrChangeNotFound = errors.New("change not found")
	// ErrSpecNotFound indicates no spec has the requested id.
	ErrSpecNotFound = errors.New("spec not found")
)

// Workspace is an OpenSpec directory within a project.
type Workspace struct {
	Root string // project root
	Dir  string // the openspec directory, normally <Root>/openspec
}

// New returns the workspace for root without checking that it exists. An
// empty dirName means DefaultDir.
func New(root, dirName string) *Workspace {
	if dirName == "" {
		dirName = DefaultDir
	}
	return &Workspace{Root: root, Dir: filepath.Join(root, dirName)}
}

// Open returns the workspace for root, failing with ErrNoOpenSpecDir when
// the openspec directory is missing.
func Open(root, dirName string) (*Workspace, error) {
	w := New(root, dirName)
	if !fsutil.IsDir(w.Dir) {
		return nil, fmt.Errorf("%w: %s", ErrNoOpenSpecDir, w.Dir)
	}
	return w, nil
}

// SpecsPath returns <Dir>/specs.
func (w *Workspace) SpecsPath() string { return filepath.Join(w.Dir, SpecsDir) }

// ChangesPath returns <Dir>/changes.
func (w *Workspace) ChangesPath() string { return filepath.Join(w.Dir, ChangesDir) }

// ArchivePath returns <Dir>/changes/archive.
func (w *Workspace) ArchivePath() string { return filepath.Join(w.ChangesPath(), ArchiveDir) }

// ChangeDir returns the directory of an active change.
func (w *Workspace) ChangeDir(id string) string { return filepath.Join(w.ChangesPath(), id) }

// SpecPath returns the main spec file of a capability. Nested capability ids
// use forward slashes.
func (w *Workspace) SpecPath(id string) string {
	return filepath.Join(w.SpecsPath(), filepath.FromSlash(id), SpecFile)
}

// ChangeInfo summarises one active change.
type ChangeInfo struct {
	ID       string         `json:"name"`
	Dir      string         `json:"-"`
	Progress tasks.Progress `json:"progress"`
	Modified time.Time      `json:"lastModified"`
}

// Changes lists active changes sorted by id. The archive folder is
// excluded. A missing changes directory yields ErrNoChangesDir.
func (w *Workspace) Changes() ([]ChangeInfo, error) {
	entries, err := os.ReadDir(w.ChangesPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoChangesDir
	}
	if err != nil {
		return nil, fmt.Errorf("listing changes: %w", err)
	}

	out := []ChangeInfo{}
	for _, e := range entries {
		if !e.IsDir() || e.Name() == ArchiveDir {
			continue
		}
		dir := w.ChangeDir(e.Name())
		progress, err := tasks.CountFile(filepath.Join(dir, tasks.FileName))
		if err != nil {
			return nil, err
		}
		out = append(out, ChangeInfo{
			ID:       e.Name(),
			Dir:      dir,
			Progress: progress,
			Modified: lastModified(dir),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ChangeIDs lists active changes that have a proposal, sorted. A missing
// changes directory yields an empty list.
func (w *Workspace) ChangeIDs() ([]string, error) {
	changes, err := w.Changes()
	if errors.Is(err, ErrNoChangesDir) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for _, c := range changes {
		if fsutil.Exists(filepath.Join(c.Dir, ProposalFile)) {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

// HasChange reports whether an active change directory with a proposal
// exists for id.
func (w *Workspace) HasChange(id string) bool {
	if id == "" || id == ArchiveDir {
		return false
	}
	return fsutil.Exists(filepath.Join(w.ChangeDir(id), ProposalFile))
}

// SpecInfo summarises one main spec.
type SpecInfo struct {
	ID               string `json:"id"`
	Path             string `json:"-"`
	RequirementCount int    `json:"requirementCount"`
	Err              error  `json:"-"` // parse failure; RequirementCount is 0
}

// SpecIDs lists capability ids that have a spec.md under specs/, sorted.
// Nested capabilities are returned with forward slashes ("platform/api").
func (w *Workspace) SpecIDs() ([]string, error) {
	if !fsutil.IsDir(w.SpecsPath()) {
		return []string{}, nil
	}
	matches, err := doublestar.Glob(os.DirFS(w.SpecsPath()), "**/"+SpecFile)
	if err != nil {
		return nil, fmt.Errorf("scanning specs: %w", err)
	}
	ids := []string{}
	for _, m := range matches {
		if dir := path.Dir(m); dir != "." {
			ids = append(ids, dir)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Specs parses every main spec and reports its requirement count. A spec
// that fails to parse is still listed, with Err set.
func (w *Workspace) Specs() ([]SpecInfo, error) {
	ids, err := w.SpecIDs()
	if err != nil {
		return nil, err
	}
	out := make([]SpecInfo, 0, len(ids))
	for _, id := range ids {
		info := SpecInfo{ID: id, Path: w.SpecPath(id)}
		s, err := w.LoadSpec(id)
		if err != nil {
			info.Err = err
		} else {
			info.RequirementCount = len(s.Requirements)
		}
		out = append(out, info)
	}
	return out, nil
}

// HasSpec reports whether a main spec exists for id.
func (w *Workspace) HasSpec(id string) bool {
	return id != "" && fsutil.Exists(w.SpecPath(id))
}

// LoadSpec parses the main spec for id. The spec name is the capability id.
func (w *Workspace) LoadSpec(id string) (*spec.Spec, error) {
	data, err := os.ReadFile(w.SpecPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSpecNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading spec %s: %w", id, err)
	}
	return spec.ParseSpec(string(data), id)
}

// LoadChange parses an active change with its delta specs.
func (w *Workspace) LoadChange(id string) (*spec.Change, error) {
	if !w.HasChange(id) {
		return nil, fmt.Errorf("%w: %s", ErrChangeNotFound, id)
	}
	return spec.LoadChange(w.ChangeDir(id))
}

// lastModified returns the newest modification time of any file under dir,
// or the directory's own time when it holds no files.
func lastModified(dir string) time.Time {
	var latest time.Time
	_ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !d.IsDir() && info.ModTime().After(latest) {
			latest = info.ModTime()
		}
		return nil
	})
	if latest.IsZero() {
		if info, err := os.Stat(dir); err == nil {
			latest = info.ModTime()
		}
	}
	return latest
}
