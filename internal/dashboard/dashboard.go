// Package dashboard renders the list and view commands: plain listings of
// active changes and specs, and a summary dashboard with progress bars that
// can re-render whenever the openspec directory changes.
package dashboard

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"

	"github.com/papapumpkin/openspec/internal/ansi"
	"github.com/papapumpkin/openspec/internal/i18n"
	"github.com/papapumpkin/openspec/internal/tasks"
	"github.com/papapumpkin/openspec/internal/workspace"
)

// Layout widths.
const (
	nameWidth = 30
	barWidth  = 20
	ruleWidth = 60
)

// Semantic colours.
var (
	colorTitle    = lipgloss.Color("#00BFFF")
	colorActive   = lipgloss.Color("#FFD700")
	colorComplete = lipgloss.Color("#00E676")
	colorSpec     = lipgloss.Color("#5B8DEF")
	colorProgress = lipgloss.Color("#C678DD")
	colorMuted    = lipgloss.Color("#8C8C8C")
)

// Dashboard writes listings and the overview to one writer.
type Dashboard struct {
	out io.Writer
	cat *i18n.Catalog
	pal ansi.Palette
	r   *lipgloss.Renderer
	now func() time.Time
}

// New returns a Dashboard on w. Without color every style renders as plain
// text.
func New(w io.Writer, cat *i18n.Catalog, color bool) *Dashboard {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Dashboard{out: w, cat: cat, pal: ansi.Palette{On: color}, r: r, now: time.Now}
}

func (d *Dashboard) style(c lipgloss.Color) lipgloss.Style {
	return d.r.NewStyle().Foreground(c)
}

func (d *Dashboard) println(s string) {
	fmt.Fprintln(d.out, s)
}

// ListChanges prints active changes with their task status and age.
func (d *Dashboard) ListChanges(changes []workspace.ChangeInfo) {
	if len(changes) == 0 {
		d.println(d.cat.T("list.no_changes"))
		return
	}
	d.println(d.cat.T("list.changes"))
	muted := d.style(colorMuted)
	for _, c := range changes {
		line := fmt.Sprintf("  %-*s %-14s", nameWidth, c.ID, d.taskStatus(c.Progress))
		if !c.Modified.IsZero() {
			line += " " + muted.Render(humanize.RelTime(c.Modified, d.now(), "ago", "from now"))
		}
		d.println(strings.TrimRight(line, " "))
	}
}

func (d *Dashboard) taskStatus(p tasks.Progress) string {
	switch {
	case p.Total == 0:
		return d.cat.T("list.no_tasks")
	case p.Done():
		return d.style(colorComplete).Render(d.cat.T("list.complete"))
	default:
		return p.String()
	}
}

// ListSpecs prints specs with their requirement counts.
func (d *Dashboard) ListSpecs(specs []workspace.SpecInfo) {
	if len(specs) == 0 {
		d.println(d.cat.T("list.no_specs"))
		return
	}
	d.println(d.cat.T("list.specs"))
	for _, s := range specs {
		d.println(fmt.Sprintf("  %-*s %s", nameWidth, s.ID, d.cat.T("list.requirements", "count", s.RequirementCount)))
	}
}

// Overview is the data behind the view dashboard.
type Overview struct {
	Active    []workspace.ChangeInfo // in progress, least complete first
	Completed []workspace.ChangeInfo // all tasks checked, or no tasks
	Specs     []workspace.SpecInfo   // most requirements first
}

// NewOverview splits changes into active and completed and orders
// everything for display. The inputs are not modified.
func NewOverview(changes []workspace.ChangeInfo, specs []workspace.SpecInfo) Overview {
	var o Overview
	for _, c := range changes {
		if c.Progress.Total == 0 || c.Progress.Completed == c.Progress.Total {
			o.Completed = append(o.Completed, c)
		} else {
			o.Active = append(o.Active, c)
		}
	}
	slices.SortStableFunc(o.Active, func(a, b workspace.ChangeInfo) int {
		// Cross-multiplied to compare completed/total without rounding.
		pa := a.Progress.Completed * b.Progress.Total
		pb := b.Progress.Completed * a.Progress.Total
		return cmp.Or(cmp.Compare(pa, pb), cmp.Compare(a.ID, b.ID))
	})
	slices.SortStableFunc(o.Completed, func(a, b workspace.ChangeInfo) int {
		return cmp.Compare(a.ID, b.ID)
	})
	o.Specs = slices.Clone(specs)
	slices.SortStableFunc(o.Specs, func(a, b workspace.SpecInfo) int {
		return cmp.Or(cmp.Compare(b.RequirementCount, a.RequirementCount), cmp.Compare(a.ID, b.ID))
	})
	return o
}

// Requirements sums requirement counts across specs.
func (o Overview) Requirements() int {
	n := 0
	for _, s := range o.Specs {
		n += s.RequirementCount
	}
	return n
}

// TaskProgress sums the task lists of active changes.
func (o Overview) TaskProgress() tasks.Progress {
	var p tasks.Progress
	for _, c := range o.Active {
		p.Total += c.Progress.Total
		p.Completed += c.Progress.Completed
	}
	return p
}

// percent rounds to the nearest whole percent.
func percent(p tasks.Progress) int {
	if p.Total == 0 {
		return 0
	}
	return (p.Completed*200 + p.Total) / (p.Total * 2)
}

// View prints the dashboard.
func (d *Dashboard) View(o Overview) {
	bold := d.r.NewStyle().Bold(true)
	heading := func(c lipgloss.Color, key string) {
		d.println("")
		d.println(d.style(c).Bold(true).Render(d.cat.T(key)))
		d.println(strings.Repeat("─", ruleWidth))
	}
	dot := func(c lipgloss.Color) string { return d.style(c).Render("●") }

	d.println("")
	d.println(bold.Render(d.cat.T("view.title")))
	d.println("")
	d.println(strings.Repeat("═", ruleWidth))

	d.println(bold.Render(d.cat.T("view.summary")))
	d.println("  " + dot(colorTitle) + " " + d.cat.T("view.specs_line", "specs", len(o.Specs), "requirements", o.Requirements()))
	d.println("  " + dot(colorActive) + " " + d.cat.T("view.active_line", "count", len(o.Active)))
	d.println("  " + dot(colorComplete) + " " + d.cat.T("view.completed_line", "count", len(o.Completed)))
	if p := o.TaskProgress(); p.Total > 0 {
		d.println("  " + dot(colorProgress) + " " +
			d.cat.T("view.progress_line", "done", p.Completed, "total", p.Total, "percent", percent(p)))
	}

	if len(o.Active) > 0 {
		heading(colorTitle, "view.active")
		for _, c := range o.Active {
			d.println(fmt.Sprintf("  %s %s %s %s",
				d.style(colorActive).Render("◉"),
				bold.Render(fmt.Sprintf("%-*s", nameWidth, c.ID)),
				d.pal.Bar(c.Progress.Completed, c.Progress.Total, barWidth),
				d.style(colorMuted).Render(fmt.Sprintf("%d%%", percent(c.Progress)))))
		}
	}

	if len(o.Completed) > 0 {
		heading(colorComplete, "view.completed")
		for _, c := range o.Completed {
			d.println("  " + d.style(colorComplete).Render("✓") + " " + c.ID)
		}
	}

	if len(o.Specs) > 0 {
		heading(colorSpec, "view.specifications")
		for _, s := range o.Specs {
			d.println(fmt.Sprintf("  %s %s %s",
				d.style(colorSpec).Render("▪"),
				bold.Render(fmt.Sprintf("%-*s", nameWidth, s.ID)),
				d.style(colorMuted).Render(d.cat.T("view.requirement_count", "count", s.RequirementCount))))
		}
	}

	d.println("")
	d.println(strings.Repeat("═", ruleWidth))
}
