// Package tui holds the interactive terminal screens of openspec. Today that
// is the multi-select AI tool picker shown by init on a terminal.
package tui

import (
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user leaves the picker without
// confirming.
var ErrCancelled = errors.New("selection cancelled")

// Program is an alias for tea.Program, exposed so callers don't need
// to import bubbletea directly.
type Program = tea.Program

// NewPickerProgram creates a BubbleTea program running the tool picker.
func NewPickerProgram(m PickerModel, opts ...tea.ProgramOption) *Program {
	return tea.NewProgram(m, opts...)
}

// PickTools runs the picker until the user confirms or cancels and returns
// the chosen tool ids.
func PickTools(labels PickerLabels, items []ToolItem, opts ...tea.ProgramOption) ([]string, error) {
	final, err := NewPickerProgram(NewPicker(labels, items), opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("TUI error: %w", err)
	}
	m, ok := final.(PickerModel)
	if !ok || m.Cancelled || !m.Confirmed {
		return nil, ErrCancelled
	}
	return m.Chosen(), nil
}

// WithOutput returns a program option that directs TUI output to the given writer.
// Useful for testing or redirecting output.
func WithOutput(w io.Writer) tea.ProgramOption {
	return tea.WithOutput(w)
}

// WithInput returns a program option that reads key presses from r.
func WithInput(r io.Reader) tea.ProgramOption {
	return tea.WithInput(r)
}
