package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/papapumpkin/openspec/internal/delta"
	"github.com/papapumpkin/openspec/internal/spec"
	"github.com/papapumpkin/openspec/internal/workspace"
)

// SpecUpdate pairs one delta spec of a change with the main spec it
// rewrites.
type SpecUpdate struct {
	Capability string
	Source     string // delta spec inside the change
	Target     string // main spec under specs/
	Exists     bool   // Target is present on disk

	Plan   delta.Plan
	Result *delta.Result // set by Build
}

// Collect lists the delta specs of a change and the main specs they target.
// Nothing is parsed yet.
func Collect(ws *workspace.Workspace, changeID string) ([]SpecUpdate, error) {
	dir := ws.ChangeDir(changeID)
	files, err := spec.DeltaSpecFiles(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	updates := make([]SpecUpdate, 0, len(files))
	for _, f := range files {
		target := ws.SpecPath(f.Capability)
		_, err := os.Stat(target)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("checking %s: %w", target, err)
		}
		updates = append(updates, SpecUpdate{
			Capability: f.Capability,
			Source:     filepath.Join(dir, filepath.FromSlash(f.Path)),
			Target:     target,
			Exists:     err == nil,
		})
	}
	return updates, nil
}

// Build parses every delta spec and applies it to its main spec in memory.
// All capabilities are resolved before Build returns; if any one fails, the
// error is returned and no update carries a Result, so a caller that only
// writes after a nil error never writes a partial set.
func Build(updates []SpecUpdate, changeID string) error {
	results := make([]*delta.Result, len(updates))
	for i := range updates {
		u := &updates[i]
		data, err := os.ReadFile(u.Source)
		if err != nil {
			return fmt.Errorf("reading delta spec %s: %w", u.Source, err)
		}
		u.Plan = delta.ParseDeltaSpec(string(data))
		if u.Plan.Count() == 0 {
			return fmt.Errorf("%s: %w", u.Capability, ErrNoOperations)
		}

		target := delta.Target{Capability: u.Capability, ChangeID: changeID, Exists: u.Exists}
		if u.Exists {
			content, err := os.ReadFile(u.Target)
			if err != nil {
				return fmt.Errorf("reading spec %s: %w", u.Target, err)
			}
			target.Content = string(content)
		}

		res, err := delta.Apply(target, u.Plan)
		if err != nil {
			return err
		}
		results[i] = res
	}
	for i := range updates {
		updates[i].Result = results[i]
	}
	return nil
}

// Totals sums the applied counts of every built update.
func Totals(updates []SpecUpdate) delta.Counts {
	var c delta.Counts
	for _, u := range updates {
		if u.Result != nil {
			c.Add(u.Result.Counts)
		}
	}
	return c
}
