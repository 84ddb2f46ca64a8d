package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/openspec/internal/convert"
	"github.com/papapumpkin/openspec/internal/workspace"
)

var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "Show, list and validate specs",
}

var specShowCmd = &cobra.Command{
	Use:   "show [spec-id]",
	Short: "Show a spec",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSpecShow,
}

var specListCmd = &cobra.Command{
	Use:   "list",
	Short: "List specs",
	Args:  cobra.NoArgs,
	RunE:  runSpecList,
}

var specValidateCmd = &cobra.Command{
	Use:   "validate [spec-id]",
	Short: "Validate one spec, or all specs when no id is given",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSpecValidate,
}

func init() {
	addShowFlags(specShowCmd.Flags())

	specListCmd.Flags().Bool("json", false, "output as JSON")
	specListCmd.Flags().Bool("long", false, "show title and requirement count")

	specValidateCmd.Flags().Bool("strict", false, "treat warnings as errors")
	specValidateCmd.Flags().Bool("json", false, "output validation results as JSON")

	specCmd.AddCommand(specShowCmd, specListCmd, specValidateCmd)
	rootCmd.AddCommand(specCmd)
}

func runSpecShow(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	ws, err := e.workspace()
	if err != nil {
		return err
	}
	id, err := e.itemArg(args, ws.SpecIDs, "spec.select")
	if err != nil {
		return err
	}
	return e.show(ws, id, workspace.TypeSpec, readShowOptions(cmd))
}

// specEntry is one row of spec list --json.
type specEntry struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	RequirementCount int    `json:"requirementCount"`
}

func runSpecList(cmd *cobra.Command, _ []string) error {
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
	return e.listSpecIDs(ws, asJSON, long)
}

func (e *env) listSpecIDs(ws *workspace.Workspace, asJSON, long bool) error {
	specs, err := ws.Specs()
	if err != nil {
		return err
	}
	entries := make([]specEntry, 0, len(specs))
	for _, s := range specs {
		title := s.ID
		if content, err := convert.ReadSource(s.Path); err == nil {
			title = convert.Title(content, s.ID)
		}
		entries = append(entries, specEntry{ID: s.ID, Title: title, RequirementCount: s.RequirementCount})
	}

	if asJSON {
		return e.printJSON(entries)
	}
	if len(entries) == 0 {
		e.ui.Info(e.cat.T("list.no_specs"))
		return nil
	}
	for _, s := range entries {
		if long {
			fmt.Fprintf(e.out, "%s: %s [%s]\n", s.ID, s.Title, e.cat.T("list.requirements", "count", s.RequirementCount))
			continue
		}
		fmt.Fprintln(e.out, s.ID)
	}
	return nil
}

func runSpecValidate(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	ws, err := e.workspace()
	if err != nil {
		return err
	}
	opts := validateOptions{typ: workspace.TypeSpec, strict: e.strict(cmd)}
	opts.json, _ = cmd.Flags().GetBool("json")
	if len(args) == 0 {
		opts.specs = true
		return e.validate(ws, "", opts)
	}
	return e.validate(ws, args[0], opts)
}

// itemArg returns the id argument, or asks the user to pick one from list.
// Without a terminal a missing id is an error.
func (e *env) itemArg(args []string, list func() ([]string, error), questionKey string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	p := e.prompter()
	if p == nil {
		e.ui.Info(e.cat.T("show.need_item"))
		return "", errSilentExit
	}
	ids, err := list()
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		e.ui.Info(e.cat.T("show.need_item"))
		return "", errSilentExit
	}
	return p.Select(e.cat.T(questionKey), ids)
}
