package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/openspec/internal/archive"
	"github.com/papapumpkin/openspec/internal/workspace"
)

var archiveCmd = &cobra.Command{
	Use:   "archive [change-id]",
	Short: "Apply a change's delta specs and move it to the archive",
	Long: `Validates a change, merges its delta specs into the main specs, and moves
the change to changes/archive/YYYY-MM-DD-<id>. Nothing is written when any
delta fails to apply or a rebuilt spec is invalid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runArchive,
}

func init() {
	archiveCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompts")
	archiveCmd.Flags().Bool("skip-specs", false, "archive without updating main specs")
	archiveCmd.Flags().Bool("no-validate", false, "skip validation (not recommended)")
	archiveCmd.Flags().Bool("strict", false, "treat warnings as errors")
	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	ws, err := e.workspace()
	if err != nil {
		return err
	}

	opts := archive.Options{Strict: e.strict(cmd)}
	opts.Yes, _ = cmd.Flags().GetBool("yes")
	opts.SkipSpecs, _ = cmd.Flags().GetBool("skip-specs")
	opts.NoValidate, _ = cmd.Flags().GetBool("no-validate")

	var id string
	if len(args) > 0 {
		id = args[0]
	}
	return e.archive(ws, id, opts)
}

// archive runs the archive and turns its failures into user messages.
func (e *env) archive(ws *workspace.Workspace, id string, opts archive.Options) error {
	em := e.telemetry(ws.Root)
	defer em.Close()

	a := &archive.Archiver{
		WS:        ws,
		Out:       e.out,
		Catalog:   e.cat,
		Prompt:    e.prompter(),
		Telemetry: em,
	}
	_, err := a.Run(id, opts)
	return e.archiveError(id, err)
}

func (e *env) archiveError(id string, err error) error {
	var (
		ve *archive.ValidationError
		xe *archive.ExistsError
	)
	switch {
	case err == nil, errors.Is(err, archive.ErrCancelled):
		return nil
	case errors.As(err, &ve):
		if ve.Capability != "" {
			e.ui.Fail(e.cat.T("archive.rebuilt_invalid", "capability", ve.Capability))
			e.ui.Issues(ve.Report.Errors())
			return errSilentExit
		}
		e.ui.Issues(ve.Report.Issues)
		e.ui.Fail(e.cat.T("archive.validation_failed"))
	case errors.As(err, &xe):
		e.ui.Error(e.cat.T("archive.exists", "name", xe.Name))
	case errors.Is(err, workspace.ErrNoChangesDir):
		e.ui.Error(e.cat.T("common.no_changes_dir"))
	case errors.Is(err, workspace.ErrChangeNotFound):
		e.ui.Error(e.cat.T("archive.not_found", "id", id))
	case errors.Is(err, archive.ErrChangeIDRequired):
		e.ui.Error(e.cat.T("archive.need_id"))
	case errors.Is(err, archive.ErrConfirmationRequired):
		e.ui.Error(e.cat.T("archive.need_yes"))
	case errors.Is(err, archive.ErrNoActiveChanges):
		e.ui.Error(e.cat.T("archive.no_active"))
	case errors.Is(err, archive.ErrAborted):
		// The archiver has already printed the cause and the abort notice.
	default:
		return err
	}
	return errSilentExit
}
