package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/openspec/internal/workspace"
)

var updateCmd = &cobra.Command{
	Use:   "update [path]",
	Short: "Refresh OpenSpec instructions and configured AI tool files",
	Long: `Rewrites openspec/AGENTS.md and the managed block of the root AGENTS.md,
then refreshes the tool files that already exist. New tools are never added;
use init for that. A tool that fails to refresh is reported and skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	return e.update(e.projectRoot(args))
}

func (e *env) update(root string) error {
	em := e.telemetry(root)
	defer em.Close()
	sc := e.scaffolder(root)
	sc.Telemetry = em

	_, err := sc.Update()
	if errors.Is(err, workspace.ErrNoOpenSpecDir) {
		e.ui.Error(e.cat.T("common.no_openspec_dir"))
		return errSilentExit
	}
	return err
}
