package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/papapumpkin/openspec/internal/ansi"
	"github.com/papapumpkin/openspec/internal/workspace"
)

// Load reads a fresh Overview from the workspace.
func Load(ws *workspace.Workspace) (Overview, error) {
	changes, err := ws.Changes()
	if err != nil && !errors.Is(err, workspace.ErrNoChangesDir) {
		return Overview{}, err
	}
	specs, err := ws.Specs()
	if err != nil {
		return Overview{}, err
	}
	return NewOverview(changes, specs), nil
}

// Watch renders the dashboard, then renders it again after every batch of
// markdown changes reported by w until ctx is done or w stops. The screen is
// cleared between renders when colour is on.
func (d *Dashboard) Watch(ctx context.Context, ws *workspace.Workspace, w *workspace.Watcher) error {
	render := func() error {
		o, err := Load(ws)
		if err != nil {
			return err
		}
		if d.pal.On {
			fmt.Fprint(d.out, ansi.ClearScreen)
		}
		d.View(o)
		d.println("")
		d.println(d.style(colorMuted).Render(d.cat.T("view.watching")))
		return nil
	}

	if err := render(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Changes:
			if !ok {
				return nil
			}
			slog.Debug("dashboard refresh", "path", ev.Path, "removed", ev.Removed)
			if err := render(); err != nil {
				return err
			}
		}
	}
}
