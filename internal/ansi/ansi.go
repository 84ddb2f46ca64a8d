// Package ansi provides ANSI escape code constants and helpers for terminal output.
// All colored/styled terminal output should reference these constants to avoid duplication.
package ansi

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ANSI SGR (Select Graphic Rendition) codes.
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Blue    = "\033[34m"
	Yellow  = "\033[33m"
	Green   = "\033[32m"
	Red     = "\033[31m"
	Cyan    = "\033[36m"
	Magenta = "\033[35m"
)

// ANSI screen control codes.
const (
	// ClearScreen clears the terminal and moves the cursor home.
	ClearScreen = "\033[2J\033[H"
)

// Progress bar glyphs.
const (
	BarFilled = "█"
	BarEmpty  = "░"
	BarNone   = "─"
)

// Enabled reports whether colour should be written to f: it must be a
// terminal, NO_COLOR must be unset, and noColor must be false.
func Enabled(f *os.File, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Palette wraps text in SGR codes when On is set and returns it unchanged
// otherwise.
type Palette struct {
	On bool
}

// Paint wraps s in the given codes.
func (p Palette) Paint(s string, codes ...string) string {
	if !p.On || len(codes) == 0 {
		return s
	}
	return strings.Join(codes, "") + s + Reset
}

// Bar renders a width-wide progress bar for completed out of total. A list
// with no items renders as a dim rule.
func (p Palette) Bar(completed, total, width int) string {
	if total <= 0 {
		return p.Paint(strings.Repeat(BarNone, width), Dim)
	}
	filled := (completed*width*2 + total) / (total * 2)
	filled = min(max(filled, 0), width)
	return "[" + p.Paint(strings.Repeat(BarFilled, filled), Green) +
		p.Paint(strings.Repeat(BarEmpty, width-filled), Dim) + "]"
}
