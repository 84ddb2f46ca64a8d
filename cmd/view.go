package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/openspec/internal/dashboard"
	"github.com/papapumpkin/openspec/internal/workspace"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the OpenSpec dashboard",
	Long: `Prints a summary of specs and changes with task progress.

With --watch the dashboard is redrawn whenever a markdown file under
openspec/ changes, until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runView,
}

func init() {
	viewCmd.Flags().BoolP("watch", "w", false, "redraw on file changes")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	ws, err := e.workspace()
	if err != nil {
		return err
	}
	d := dashboard.New(e.out, e.cat, e.outColor())

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		o, err := dashboard.Load(ws)
		if err != nil {
			return err
		}
		d.View(o)
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchDashboard(ctx, d, ws)
}

func watchDashboard(ctx context.Context, d *dashboard.Dashboard, ws *workspace.Workspace) error {
	w, err := workspace.NewWatcher(ws.Dir)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Stop()
	return d.Watch(ctx, ws, w)
}
