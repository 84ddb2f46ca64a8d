package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/openspec/internal/convert"
	"github.com/papapumpkin/openspec/internal/validation"
	"github.com/papapumpkin/openspec/internal/workspace"
)

// validateJSONVersion is the version field of validate --json output.
const validateJSONVersion = "1.0"

var validateCmd = &cobra.Command{
	Use:   "validate [item]",
	Short: "Validate changes and specs",
	Long: `Checks changes and specs against the OpenSpec schema.

Pass an item id to validate one change or spec, or use --all, --changes or
--specs for bulk validation. Exits 1 when anything is invalid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Bool("all", false, "validate all changes and specs")
	validateCmd.Flags().Bool("changes", false, "validate all changes")
	validateCmd.Flags().Bool("specs", false, "validate all specs")
	validateCmd.Flags().String("type", "", "item type when ambiguous: change|spec")
	validateCmd.Flags().Bool("strict", false, "treat warnings as errors")
	validateCmd.Flags().Bool("json", false, "output validation results as JSON")
	rootCmd.AddCommand(validateCmd)
}

// validateOptions selects what validate checks and how it reports.
type validateOptions struct {
	all     bool
	changes bool
	specs   bool
	typ     workspace.ItemType
	strict  bool
	json    bool
}

func (o validateOptions) bulk() bool {
	return o.all || o.changes || o.specs
}

func runValidate(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	typeFlag, _ := cmd.Flags().GetString("type")
	typ, err := parseItemType(typeFlag)
	if err != nil {
		return err
	}
	opts := validateOptions{typ: typ, strict: e.strict(cmd)}
	opts.all, _ = cmd.Flags().GetBool("all")
	opts.changes, _ = cmd.Flags().GetBool("changes")
	opts.specs, _ = cmd.Flags().GetBool("specs")
	opts.json, _ = cmd.Flags().GetBool("json")

	ws, err := e.workspace()
	if err != nil {
		return err
	}
	var item string
	if len(args) > 0 {
		item = args[0]
	}
	return e.validate(ws, item, opts)
}

// itemResult is one validated item. It is also the JSON shape of an entry
// in validate --json output.
type itemResult struct {
	ID         string             `json:"id"`
	Type       workspace.ItemType `json:"type"`
	Valid      bool               `json:"valid"`
	Issues     []validation.Issue `json:"issues"`
	DurationMS int64              `json:"durationMs"`
	report     *validation.Report
}

// tally counts items by outcome.
type tally struct {
	Items  int `json:"items"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

func (t *tally) add(valid bool) {
	t.Items++
	if valid {
		t.Passed++
	} else {
		t.Failed++
	}
}

// validateOutput is the document printed by validate --json.
type validateOutput struct {
	Items   []itemResult `json:"items"`
	Summary struct {
		Totals tally                        `json:"totals"`
		ByType map[workspace.ItemType]tally `json:"byType"`
	} `json:"summary"`
	Version string `json:"version"`
}

func newValidateOutput(results []itemResult) validateOutput {
	out := validateOutput{Items: results, Version: validateJSONVersion}
	if out.Items == nil {
		out.Items = []itemResult{}
	}
	out.Summary.ByType = map[workspace.ItemType]tally{}
	for _, r := range results {
		out.Summary.Totals.add(r.Valid)
		t := out.Summary.ByType[r.Type]
		t.add(r.Valid)
		out.Summary.ByType[r.Type] = t
	}
	return out
}

// validate runs one item or a bulk selection and reports the results. It
// returns errSilentExit when anything failed.
func (e *env) validate(ws *workspace.Workspace, item string, opts validateOptions) error {
	if item == "" && !opts.bulk() {
		picked, err := e.pickValidateScope()
		if err != nil {
			return err
		}
		picked.strict, picked.json = opts.strict, opts.json
		opts = picked
	}

	v := validation.New(opts.strict)
	var results []itemResult
	if item != "" {
		typ, err := e.resolveItem(ws, item, opts.typ)
		if err != nil {
			return err
		}
		results = append(results, validateItem(v, ws, item, typ))
	} else {
		if opts.all || opts.changes {
			ids, err := ws.ChangeIDs()
			if err != nil {
				return err
			}
			for _, id := range ids {
				results = append(results, validateItem(v, ws, id, workspace.TypeChange))
			}
		}
		if opts.all || opts.specs {
			ids, err := ws.SpecIDs()
			if err != nil {
				return err
			}
			for _, id := range ids {
				results = append(results, validateItem(v, ws, id, workspace.TypeSpec))
			}
		}
	}

	out := newValidateOutput(results)
	if opts.json {
		data, err := convert.Marshal(out)
		if err != nil {
			return err
		}
		fmt.Fprintln(e.out, data)
	} else {
		for _, r := range results {
			e.ui.Report(kindLabel(r.Type), r.ID, r.report)
		}
		if item == "" {
			e.ui.Totals(out.Summary.Totals.Passed, out.Summary.Totals.Failed)
		}
	}
	if out.Summary.Totals.Failed > 0 {
		return errSilentExit
	}
	return nil
}

// pickValidateScope asks what to validate when neither an item nor a bulk
// flag was given. Without a terminal it prints a hint and fails.
func (e *env) pickValidateScope() (validateOptions, error) {
	p := e.prompter()
	if p == nil {
		e.ui.Info(e.cat.T("validate.nothing"))
		return validateOptions{}, errSilentExit
	}
	all := e.cat.T("validate.pick_all")
	changes := e.cat.T("validate.pick_changes")
	specs := e.cat.T("validate.pick_specs")
	choice, err := p.Select(e.cat.T("validate.pick"), []string{all, changes, specs})
	if err != nil {
		return validateOptions{}, err
	}
	switch choice {
	case changes:
		return validateOptions{changes: true}, nil
	case specs:
		return validateOptions{specs: true}, nil
	default:
		return validateOptions{all: true}, nil
	}
}

func validateItem(v *validation.Validator, ws *workspace.Workspace, id string, typ workspace.ItemType) itemResult {
	start := time.Now()
	var r *validation.Report
	if typ == workspace.TypeChange {
		r = v.ValidateChangeDir(ws.ChangeDir(id))
	} else {
		r = v.ValidateSpec(ws.SpecPath(id))
	}
	return itemResult{
		ID:         id,
		Type:       typ,
		Valid:      r.Valid,
		Issues:     r.Issues,
		DurationMS: time.Since(start).Milliseconds(),
		report:     r,
	}
}

// kindLabel capitalises an item type for status lines.
func kindLabel(t workspace.ItemType) string {
	s := string(t)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
