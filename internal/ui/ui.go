// Package ui renders status lines, validation reports and prompts on the
// terminal. Machine-readable output never goes through it.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/papapumpkin/openspec/internal/ansi"
	"github.com/papapumpkin/openspec/internal/i18n"
	"github.com/papapumpkin/openspec/internal/validation"
)

// Printer writes user-facing status lines to stderr.
type Printer struct {
	w   io.Writer
	pal ansi.Palette
	cat *i18n.Catalog
}

// New returns a Printer on stderr. Colour is used only when color is true.
func New(cat *i18n.Catalog, color bool) *Printer {
	return NewWriter(os.Stderr, cat, color)
}

// NewWriter returns a Printer on w.
func NewWriter(w io.Writer, cat *i18n.Catalog, color bool) *Printer {
	return &Printer{w: w, pal: ansi.Palette{On: color}, cat: cat}
}

// Writer returns the destination of the Printer's output.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Catalog returns the message catalog the Printer was built with.
func (p *Printer) Catalog() *i18n.Catalog {
	return p.cat
}

// Palette returns the Printer's colour palette.
func (p *Printer) Palette() ansi.Palette {
	return p.pal
}

// Success prints msg behind a green check.
func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.w, p.pal.Paint("✓ ", ansi.Green, ansi.Bold)+msg)
}

// Fail prints msg behind a red cross.
func (p *Printer) Fail(msg string) {
	fmt.Fprintln(p.w, p.pal.Paint("✗ ", ansi.Red, ansi.Bold)+msg)
}

// Warn prints msg behind a warning sign.
func (p *Printer) Warn(msg string) {
	fmt.Fprintln(p.w, p.pal.Paint("⚠ ", ansi.Yellow, ansi.Bold)+msg)
}

// Error prints msg as an error line.
func (p *Printer) Error(msg string) {
	fmt.Fprintln(p.w, p.pal.Paint("error: ", ansi.Red, ansi.Bold)+msg)
}

// Info prints msg dimmed.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.w, p.pal.Paint(msg, ansi.Dim))
}

// Bullet prints msg as an indented list item.
func (p *Printer) Bullet(msg string) {
	fmt.Fprintln(p.w, "  "+p.pal.Paint("• ", ansi.Cyan)+msg)
}

// Line writes msg unadorned.
func (p *Printer) Line(msg string) {
	fmt.Fprintln(p.w, msg)
}

// Report prints the outcome of validating one item followed by its issues.
func (p *Printer) Report(kind, id string, r *validation.Report) {
	if r.Valid {
		p.Success(p.cat.T("validate.valid", "kind", kind, "id", id))
	} else {
		p.Fail(p.cat.T("validate.invalid", "kind", kind, "id", id))
	}
	p.Issues(r.Issues)
}

// Issues prints one line per issue, tagged with its level.
func (p *Printer) Issues(issues []validation.Issue) {
	for _, is := range issues {
		var glyph, tag string
		switch is.Level {
		case validation.LevelError:
			glyph, tag = p.pal.Paint("✗", ansi.Red), "[ERROR]"
		case validation.LevelWarning:
			glyph, tag = p.pal.Paint("⚠", ansi.Yellow), "[WARNING]"
		default:
			glyph, tag = p.pal.Paint("ℹ", ansi.Blue), "[INFO]"
		}
		loc := is.Path
		if loc == "" {
			loc = "file"
		}
		fmt.Fprintf(p.w, "  %s %s %s: %s\n", glyph, tag, loc, is.Message)
	}
}

// Totals prints the pass/fail line of a bulk validation.
func (p *Printer) Totals(passed, failed int) {
	msg := p.cat.T("validate.totals", "passed", passed, "failed", failed, "total", passed+failed)
	if failed > 0 {
		p.Fail(msg)
		return
	}
	p.Success(msg)
}
