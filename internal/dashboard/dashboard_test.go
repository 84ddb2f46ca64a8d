package dashboard

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papapumpkin/openspec/internal/i18n"
	"github.com/papapumpkin/openspec/internal/tasks"
	"github.com/papapumpkin/openspec/internal/workspace"
)

var ansiSeq = regexp.MustCompile("\x1b\\[[0-9;]*m")

func plain(s string) string { return ansiSeq.ReplaceAllString(s, "") }

func newDashboard(t *testing.T) (*Dashboard, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	d := New(&buf, i18n.MustLoad(i18n.English), false)
	d.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	return d, &buf
}

func change(id string, done, total int) workspace.ChangeInfo {
	return workspace.ChangeInfo{ID: id, Progress: tasks.Progress{Completed: done, Total: total}}
}

func TestListChanges(t *testing.T) {
	t.Parallel()

	d, buf := newDashboard(t)
	partial := change("partial", 1, 3)
	partial.Modified = time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC)
	d.ListChanges([]workspace.ChangeInfo{
		change("completed", 2, 2),
		change("no-tasks", 0, 0),
		partial,
	})

	lines := strings.Split(plain(buf.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "Changes:", lines[0])
	assert.Contains(t, lines[1], "completed")
	assert.Contains(t, lines[1], "✓ Complete")
	assert.Contains(t, lines[2], "no-tasks")
	assert.Contains(t, lines[2], "No tasks")
	assert.Contains(t, lines[3], "1/3 tasks")
	assert.Contains(t, lines[3], "3 days ago")
}

func TestListChangesEmpty(t *testing.T) {
	t.Parallel()

	d, buf := newDashboard(t)
	d.ListChanges(nil)
	assert.Equal(t, "No active changes found.\n", buf.String())
}

func TestListSpecs(t *testing.T) {
	t.Parallel()

	d, buf := newDashboard(t)
	d.ListSpecs([]workspace.SpecInfo{{ID: "auth", RequirementCount: 3}})
	out := plain(buf.String())
	assert.Contains(t, out, "Specs:")
	assert.Contains(t, out, "auth")
	assert.Contains(t, out, "requirements 3")
}

func TestNewOverviewOrdering(t *testing.T) {
	t.Parallel()

	o := NewOverview(
		[]workspace.ChangeInfo{
			change("gamma-change", 2, 3),
			change("beta-change", 1, 2),
			change("delta-change", 1, 2),
			change("alpha-change", 0, 2),
			change("zeta-done", 4, 4),
			change("empty", 0, 0),
		},
		[]workspace.SpecInfo{
			{ID: "small", RequirementCount: 1},
			{ID: "big", RequirementCount: 7},
			{ID: "mid", RequirementCount: 3},
		},
	)

	var active, completed, specs []string
	for _, c := range o.Active {
		active = append(active, c.ID)
	}
	for _, c := range o.Completed {
		completed = append(completed, c.ID)
	}
	for _, s := range o.Specs {
		specs = append(specs, s.ID)
	}
	assert.Equal(t, []string{"alpha-change", "beta-change", "delta-change", "gamma-change"}, active)
	assert.Equal(t, []string{"empty", "zeta-done"}, completed)
	assert.Equal(t, []string{"big", "mid", "small"}, specs)
	assert.Equal(t, 11, o.Requirements())
	assert.Equal(t, tasks.Progress{Completed: 4, Total: 9}, o.TaskProgress())
}

func TestView(t *testing.T) {
	t.Parallel()

	d, buf := newDashboard(t)
	d.View(NewOverview(
		[]workspace.ChangeInfo{change("add-2fa", 1, 2), change("done", 1, 1)},
		[]workspace.SpecInfo{{ID: "auth", RequirementCount: 2}},
	))

	out := plain(buf.String())
	for _, want := range []string{
		"OpenSpec Dashboard",
		"Specifications: 1 specs, 2 requirements",
		"Active Changes: 1 in progress",
		"Completed Changes: 1",
		"Task Progress: 1/2 (50% complete)",
		"◉ add-2fa",
		"[██████████░░░░░░░░░░] 50%",
		"✓ done",
		"▪ auth",
		"2 requirements",
	} {
		assert.Contains(t, out, want)
	}
}

func TestViewOmitsEmptySections(t *testing.T) {
	t.Parallel()

	d, buf := newDashboard(t)
	d.View(NewOverview(nil, nil))
	out := plain(buf.String())
	assert.NotContains(t, out, "Task Progress")
	assert.NotContains(t, out, "◉")
	assert.NotContains(t, out, "▪")
}

func TestPercentRounds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, percent(tasks.Progress{}))
	assert.Equal(t, 67, percent(tasks.Progress{Completed: 2, Total: 3}))
	assert.Equal(t, 33, percent(tasks.Progress{Completed: 1, Total: 3}))
	assert.Equal(t, 100, percent(tasks.Progress{Completed: 5, Total: 5}))
}

// syncBuffer guards a buffer written by the watch loop and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchRerendersOnChange(t *testing.T) {
	root := t.TempDir()
	ws := workspace.New(root, "")
	changeDir := ws.ChangeDir("add-2fa")
	require.NoError(t, os.MkdirAll(changeDir, 0o755))
	require.NoError(t, os.MkdirAll(ws.SpecsPath(), 0o755))
	tasksFile := filepath.Join(changeDir, tasks.FileName)
	require.NoError(t, os.WriteFile(tasksFile, []byte("- [ ] one\n- [ ] two\n"), 0o644))

	var out syncBuffer
	d := New(&out, i18n.MustLoad(i18n.English), false)

	w, err := workspace.NewWatcher(ws.Dir)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Watch(ctx, ws, w) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "[░░░░░░░░░░░░░░░░░░░░] 0%")
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(tasksFile, []byte("- [x] one\n- [ ] two\n"), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "50%")
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
