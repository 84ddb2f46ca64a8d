package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/openspec/internal/telemetry"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View the JSONL audit log of archive, init and update",
	Long: `Reads and formats the audit file written when telemetry.enabled is set.

With --run, only events of that run id are shown.
With --follow (-f), watches the file for new events (like tail -f).`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().String("run", "", "only show events of this run id")
	auditCmd.Flags().String("change", "", "only show events of this change")
	auditCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	rootCmd.AddCommand(auditCmd)
}

// auditFilter selects which events are printed.
type auditFilter struct {
	run    string
	change string
}

func (f auditFilter) match(evt telemetry.Event) bool {
	return (f.run == "" || evt.RunID == f.run) && (f.change == "" || evt.Change == f.change)
}

func runAudit(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	var filter auditFilter
	filter.run, _ = cmd.Flags().GetString("run")
	filter.change, _ = cmd.Flags().GetString("change")
	follow, _ := cmd.Flags().GetBool("follow")

	path := e.cfg.Telemetry.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.root, path)
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("audit: no audit file at %s (set telemetry.enabled in .openspec.yaml)", path)
	}
	if err != nil {
		return fmt.Errorf("audit: open %s: %w", path, err)
	}
	defer f.Close()

	if err := printEvents(e.out, f, filter); err != nil {
		return fmt.Errorf("audit: read %s: %w", path, err)
	}
	if !follow {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return tailFollow(ctx, e.out, f, path, filter)
}

// printEvents prints every complete line available from r.
func printEvents(w io.Writer, r io.Reader, filter auditFilter) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		printEvent(w, scanner.Text(), filter)
	}
	return scanner.Err()
}

// tailFollow watches the file for new data using fsnotify and prints new
// events until ctx is done.
func tailFollow(ctx context.Context, w io.Writer, f *os.File, path string, filter auditFilter) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("audit: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("audit: watch %s: %w", path, err)
	}

	reader := bufio.NewReader(f)
	var partial string
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) {
				continue
			}
			// Read all complete lines; a half-written line waits for the
			// next write.
			for {
				chunk, err := reader.ReadString('\n')
				partial += chunk
				if err != nil {
					break
				}
				printEvent(w, partial, filter)
				partial = ""
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("audit: watch %s: %w", path, err)
		}
	}
}

// printEvent decodes a JSONL line and prints a human-readable representation.
func printEvent(w io.Writer, line string, filter auditFilter) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	var evt telemetry.Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		fmt.Fprintf(w, "??? %s\n", line)
		return
	}
	if !filter.match(evt) {
		return
	}

	parts := []string{
		fmt.Sprintf("[%s]", evt.Timestamp.Local().Format(time.DateTime)),
		evt.Kind,
	}
	if evt.Change != "" {
		parts = append(parts, "change="+evt.Change)
	}
	if evt.Capability != "" {
		parts = append(parts, "capability="+evt.Capability)
	}
	if evt.Tool != "" {
		parts = append(parts, "tool="+evt.Tool)
	}
	if evt.Data != nil {
		if m, ok := evt.Data.(map[string]any); ok {
			parts = append(parts, formatDataMap(m))
		} else {
			data, _ := json.Marshal(evt.Data)
			parts = append(parts, string(data))
		}
	}

	fmt.Fprintln(w, strings.Join(parts, " "))
}

// formatDataMap formats a data map as key=value pairs sorted by key.
func formatDataMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, m[k])
	}
	return b.String()
}
