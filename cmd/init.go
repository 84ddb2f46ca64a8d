package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/openspec/internal/configurators"
	"github.com/papapumpkin/openspec/internal/scaffold"
	"github.com/papapumpkin/openspec/internal/templates"
	"github.com/papapumpkin/openspec/internal/tui"
	"github.com/papapumpkin/openspec/internal/workspace"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize OpenSpec in a project",
	Long: `Creates openspec/ with specs/, changes/ and the agent instructions, and
configures the chosen AI tools.

On a terminal the tools are picked interactively. Otherwise pass --tools
with "all", "none" or a comma-separated list of tool ids; the tools key of
the config file is used when the flag is absent. Running init again extends
the tool configuration without touching existing instructions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("tools", "", fmt.Sprintf("AI tools to configure (%s)", strings.Join(scaffold.AvailableValues(), ", ")))
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	var flag *string
	if f := cmd.Flags().Lookup("tools"); f != nil && f.Changed {
		v := f.Value.String()
		flag = &v
	}
	return e.initProject(e.projectRoot(args), flag)
}

// initProject runs init in root. flag is the --tools value, nil when the
// flag was not given.
func (e *env) initProject(root string, flag *string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", root, err)
	}

	em := e.telemetry(root)
	defer em.Close()
	sc := e.scaffolder(root)
	sc.Telemetry = em

	ids, err := e.chooseTools(sc, flag)
	if errors.Is(err, tui.ErrCancelled) {
		e.ui.Info(e.cat.T("common.cancelled"))
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := sc.Init(ids); err != nil {
		e.ui.Fail(err.Error())
		return errSilentExit
	}
	return nil
}

func (e *env) scaffolder(root string) *scaffold.Scaffolder {
	return &scaffold.Scaffolder{
		WS:        workspace.New(root, e.cfg.Dir),
		CodexHome: configurators.CodexHome(e.cfg.CodexHome),
		Templates: templates.For(e.cat.Locale()),
		Out:       e.out,
		Catalog:   e.cat,
	}
}

// chooseTools decides which tools init configures. An explicit --tools
// value wins, then the interactive picker, then the tools config key.
// Without any of these the tools already configured are refreshed.
func (e *env) chooseTools(sc *scaffold.Scaffolder, flag *string) ([]string, error) {
	switch {
	case flag != nil:
		return e.parseTools(*flag)
	case e.interactive:
		labels := tui.PickerLabels{
			Title:      e.cat.T("init.select_tools"),
			Configured: e.cat.T("init.already_configured"),
		}
		items := tui.ItemsFrom(configurators.Tools(), sc.Configured())
		return tui.PickTools(labels, items, tui.WithInput(e.in), tui.WithOutput(e.ui.Writer()))
	case len(e.cfg.Tools) > 0:
		return e.parseTools(strings.Join(e.cfg.Tools, ","))
	default:
		ids := sc.Configured()
		if ids == nil {
			ids = []string{}
		}
		return ids, nil
	}
}

// parseTools wraps scaffold.ParseTools with localized messages.
func (e *env) parseTools(value string) ([]string, error) {
	ids, err := scaffold.ParseTools(value)
	var ite *scaffold.InvalidToolError
	switch {
	case err == nil:
		return ids, nil
	case errors.As(err, &ite):
		e.ui.Error(e.cat.T("init.invalid_tools", "tools", strings.Join(ite.IDs, ", ")))
		e.ui.Info(e.cat.T("init.available", "values", strings.Join(scaffold.AvailableValues(), ", ")))
	case errors.Is(err, scaffold.ErrReservedMix):
		e.ui.Error(e.cat.T("init.mixed_reserved"))
	default:
		return nil, err
	}
	return nil, errSilentExit
}
