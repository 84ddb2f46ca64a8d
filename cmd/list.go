package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/openspec/internal/dashboard"
	"github.com/papapumpkin/openspec/internal/workspace"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active changes, or specs with --specs",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().Bool("specs", false, "list specs instead of changes")
	listCmd.Flags().Bool("changes", false, "list changes (default)")
	listCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	ws, err := e.workspace()
	if err != nil {
		return err
	}
	specs, _ := cmd.Flags().GetBool("specs")
	asJSON, _ := cmd.Flags().GetBool("json")
	return e.list(ws, specs, asJSON)
}

// list prints changes or specs. Changes require a changes directory.
func (e *env) list(ws *workspace.Workspace, specs, asJSON bool) error {
	d := dashboard.New(e.out, e.cat, e.outColor())
	if specs {
		infos, err := ws.Specs()
		if err != nil {
			return err
		}
		if asJSON {
			return e.printJSON(map[string]any{"specs": infos})
		}
		d.ListSpecs(infos)
		return nil
	}

	changes, err := ws.Changes()
	if errors.Is(err, workspace.ErrNoChangesDir) {
		e.ui.Error(e.cat.T("common.no_changes_dir"))
		return errSilentExit
	}
	if err != nil {
		return err
	}
	if asJSON {
		return e.printJSON(map[string]any{"changes": changes})
	}
	d.ListChanges(changes)
	return nil
}
