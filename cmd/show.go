package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/papapumpkin/openspec/internal/convert"
	"github.com/papapumpkin/openspec/internal/workspace"
)

var showCmd = &cobra.Command{
	Use:   "show [item]",
	Short: "Show a change or spec",
	Long: `Prints a change proposal or a spec. Markdown is printed as-is; --json
prints the parsed document. The item type is detected unless --type is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().String("type", "", "item type when ambiguous: change|spec")
	addShowFlags(showCmd.Flags())
	rootCmd.AddCommand(showCmd)
}

// addShowFlags registers the output flags shared by show, spec show and
// change show.
func addShowFlags(fs *pflag.FlagSet) {
	fs.Bool("json", false, "output as JSON")
	fs.Bool("deltas-only", false, "show only the deltas of a change")
	fs.Bool("requirements", false, "show only requirements, without scenarios (specs, JSON only)")
	fs.Bool("no-scenarios", false, "exclude scenario content (specs, JSON only)")
	fs.IntP("requirement", "r", 0, "show only the requirement with this 1-based index (specs, JSON only)")
}

// showOptions are the parsed output flags.
type showOptions struct {
	json       bool
	deltasOnly bool
	filter     convert.Filter
	changed    []string // spec-only flags that were set
}

func readShowOptions(cmd *cobra.Command) showOptions {
	var o showOptions
	o.json, _ = cmd.Flags().GetBool("json")
	o.deltasOnly, _ = cmd.Flags().GetBool("deltas-only")
	o.filter.RequirementsOnly, _ = cmd.Flags().GetBool("requirements")
	o.filter.NoScenarios, _ = cmd.Flags().GetBool("no-scenarios")
	o.filter.Index, _ = cmd.Flags().GetInt("requirement")
	for _, name := range []string{"requirements", "no-scenarios", "requirement"} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			o.changed = append(o.changed, "--"+name)
		}
	}
	return o
}

func runShow(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	typeFlag, _ := cmd.Flags().GetString("type")
	typ, err := parseItemType(typeFlag)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		e.ui.Info(e.cat.T("show.need_item"))
		return errSilentExit
	}
	ws, err := e.workspace()
	if err != nil {
		return err
	}
	return e.show(ws, args[0], typ, readShowOptions(cmd))
}

// show resolves id and prints it.
func (e *env) show(ws *workspace.Workspace, id string, typ workspace.ItemType, opts showOptions) error {
	resolved, err := e.resolveItem(ws, id, typ)
	if err != nil {
		return err
	}
	if resolved == workspace.TypeChange {
		return e.showChange(ws, id, opts)
	}
	return e.showSpec(ws, id, opts)
}

func (e *env) showChange(ws *workspace.Workspace, id string, opts showOptions) error {
	content, err := convert.ReadSource(filepath.Join(ws.ChangeDir(id), workspace.ProposalFile))
	if err != nil {
		return err
	}
	if !opts.json && !opts.deltasOnly {
		fmt.Fprint(e.out, content)
		return nil
	}
	if len(opts.changed) > 0 {
		e.ui.Warn(e.cat.T("show.flags_ignored", "flags", strings.Join(opts.changed, ", ")))
	}
	c, err := ws.LoadChange(id)
	if err != nil {
		return err
	}
	if opts.json {
		return e.printJSON(convert.NewChangeView(id, content, c))
	}
	for _, d := range c.Deltas {
		fmt.Fprintf(e.out, "%s %s: %s\n", d.Operation, d.Spec, d.Description)
	}
	return nil
}

func (e *env) showSpec(ws *workspace.Workspace, id string, opts showOptions) error {
	content, err := convert.ReadSource(ws.SpecPath(id))
	if err != nil {
		return err
	}
	if !opts.json {
		fmt.Fprint(e.out, content)
		return nil
	}
	s, err := ws.LoadSpec(id)
	if err != nil {
		return err
	}
	view, err := convert.NewSpecView(id, content, s, opts.filter)
	if err != nil {
		return err
	}
	return e.printJSON(view)
}

// printJSON writes v to stdout as indented JSON.
func (e *env) printJSON(v any) error {
	data, err := convert.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, data)
	return nil
}
