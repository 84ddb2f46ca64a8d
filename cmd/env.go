package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/openspec/internal/ansi"
	"github.com/papapumpkin/openspec/internal/archive"
	"github.com/papapumpkin/openspec/internal/config"
	"github.com/papapumpkin/openspec/internal/i18n"
	"github.com/papapumpkin/openspec/internal/telemetry"
	"github.com/papapumpkin/openspec/internal/ui"
	"github.com/papapumpkin/openspec/internal/workspace"
)

// env is everything a command needs from its surroundings: configuration,
// messages, where to write, and whether a human is at the keyboard.
type env struct {
	cfg         config.Config
	cat         *i18n.Catalog
	root        string
	out         io.Writer // machine output and command transcripts
	ui          *ui.Printer
	in          io.Reader
	color       bool
	interactive bool
}

// newEnv builds the environment for cmd. Colour and prompts are only
// enabled when the corresponding stream is a terminal.
func newEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cat, err := i18n.Load(i18n.Detect(cfg.Lang, os.Getenv))
	if err != nil {
		return nil, err
	}
	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	errOut := cmd.ErrOrStderr()
	color := false
	if f, ok := errOut.(*os.File); ok {
		color = ansi.Enabled(f, cfg.NoColor)
	}
	in := cmd.InOrStdin()
	interactive := false
	if f, ok := in.(*os.File); ok && !cfg.NoInteractive {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return &env{
		cfg:         cfg,
		cat:         cat,
		root:        root,
		out:         cmd.OutOrStdout(),
		ui:          ui.NewWriter(errOut, cat, color),
		in:          in,
		color:       color,
		interactive: interactive,
	}, nil
}

// workspace opens the project's openspec directory, reporting a missing
// one with the init hint.
func (e *env) workspace() (*workspace.Workspace, error) {
	return e.workspaceAt(e.root)
}

func (e *env) workspaceAt(root string) (*workspace.Workspace, error) {
	ws, err := workspace.Open(root, e.cfg.Dir)
	if errors.Is(err, workspace.ErrNoOpenSpecDir) {
		e.ui.Error(e.cat.T("common.no_openspec_dir"))
		return nil, errSilentExit
	}
	return ws, err
}

// prompter returns the interactive prompter, or nil when nobody can answer.
func (e *env) prompter() archive.Prompter {
	if !e.interactive {
		return nil
	}
	return ui.NewPrompter(e.in, e.ui.Writer(), e.ui.Palette())
}

// telemetry returns the audit stream when enabled. The file is opened on
// the first event, so a command that fails early leaves nothing behind.
func (e *env) telemetry(root string) *telemetry.Emitter {
	if !e.cfg.Telemetry.Enabled {
		return nil
	}
	path := e.cfg.Telemetry.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	slog.Debug("audit stream", "path", path)
	return telemetry.NewLazyEmitter(path)
}

// strict reports whether --strict was passed or configured.
func (e *env) strict(cmd *cobra.Command) bool {
	if f := cmd.Flags().Lookup("strict"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetBool("strict")
		return v
	}
	return e.cfg.Strict
}

// projectRoot resolves an optional [path] argument against the working
// directory.
func (e *env) projectRoot(args []string) string {
	if len(args) == 0 || args[0] == "" {
		return e.root
	}
	if filepath.IsAbs(args[0]) {
		return args[0]
	}
	return filepath.Join(e.root, args[0])
}

// outColor reports whether stdout takes colour.
func (e *env) outColor() bool {
	if f, ok := e.out.(*os.File); ok {
		return ansi.Enabled(f, e.cfg.NoColor)
	}
	return false
}
