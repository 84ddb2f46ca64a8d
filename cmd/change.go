package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/openspec/internal/convert"
	"github.com/papapumpkin/openspec/internal/tasks"
	"github.com/papapumpkin/openspec/internal/workspace"
)

var changeCmd = &cobra.Command{
	Use:   "change",
	Short: "Show, list and validate change proposals",
}

var changeShowCmd = &cobra.Command{
	Use:   "show [change-id]",
	Short: "Show a change proposal",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runChangeShow,
}

var changeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active changes",
	Args:  cobra.NoArgs,
	RunE:  runChangeList,
}

var changeValidateCmd = &cobra.Command{
	Use:   "validate [change-id]",
	Short: "Validate one change, or all active changes when no id is given",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runChangeValidate,
}

func init() {
	addShowFlags(changeShowCmd.Flags())

	changeListCmd.Flags().Bool("json", false, "output as JSON")
	changeListCmd.Flags().Bool("long", false, "show title, delta count and task status")

	changeValidateCmd.Flags().Bool("strict", false, "treat warnings as errors")
	changeValidateCmd.Flags().Bool("json", false, "output validation results as JSON")

	changeCmd.AddCommand(changeShowCmd, changeListCmd, changeValidateCmd)
	rootCmd.AddCommand(changeCmd)
}

func runChangeShow(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	ws, err := e.workspace()
	if err != nil {
		return err
	}
	id, err := e.itemArg(args, ws.ChangeIDs, "change.select")
	if err != nil {
		return err
	}
	return e.show(ws, id, workspace.TypeChange, readShowOptions(cmd))
}

// changeEntry is one row of change list --json.
type changeEntry struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	DeltaCount int            `json:"deltaCount"`
	TaskStatus tasks.Progress `json:"taskStatus"`
}

func runChangeList(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	ws, err := e.workspace()
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	long, _ := cmd.Flags().GetBool("long")
	return e.listChangeIDs(ws, asJSON, long)
}

// listChangeIDs prints active changes that have a proposal. A change whose
// proposal fails to parse is still listed with zero deltas.
func (e *env) listChangeIDs(ws *workspace.Workspace, asJSON, long bool) error {
	ids, err := ws.ChangeIDs()
	if err != nil {
		return err
	}
	entries := make([]changeEntry, 0, len(ids))
	for _, id := range ids {
		entry := changeEntry{ID: id, Title: id}
		if content, err := convert.ReadSource(filepath.Join(ws.ChangeDir(id), workspace.ProposalFile)); err == nil {
			entry.Title = convert.Title(content, id)
		}
		if c, err := ws.LoadChange(id); err == nil {
			entry.DeltaCount = len(c.Deltas)
		}
		if p, err := tasks.CountFile(filepath.Join(ws.ChangeDir(id), tasks.FileName)); err == nil {
			entry.TaskStatus = p
		}
		entries = append(entries, entry)
	}

	if asJSON {
		return e.printJSON(entries)
	}
	if len(entries) == 0 {
		e.ui.Info(e.cat.T("list.no_changes"))
		return nil
	}
	for _, c := range entries {
		if long {
			fmt.Fprintf(e.out, "%s: %s [%s] [%s]\n", c.ID, c.Title,
				e.cat.T("change.deltas", "count", c.DeltaCount), c.TaskStatus)
			continue
		}
		fmt.Fprintln(e.out, c.ID)
	}
	return nil
}

func runChangeValidate(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	ws, err := e.workspace()
	if err != nil {
		return err
	}
	opts := validateOptions{typ: workspace.TypeChange, strict: e.strict(cmd)}
	opts.json, _ = cmd.Flags().GetBool("json")
	if len(args) == 0 {
		opts.changes = true
		return e.validate(ws, "", opts)
	}
	return e.validate(ws, args[0], opts)
}
