package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/papapumpkin/openspec/internal/configurators"
)

// ToolItem is one row of the picker.
type ToolItem struct {
	ID         string
	Name       string
	Native     bool // listed under the natively supported section
	Configured bool // files already present; preselected
}

// ItemsFrom builds picker rows for tools, marking those whose ids appear in
// configured.
func ItemsFrom(tools []configurators.Tool, configured []string) []ToolItem {
	set := make(map[string]bool, len(configured))
	for _, id := range configured {
		set[id] = true
	}
	items := make([]ToolItem, 0, len(tools))
	for _, t := range tools {
		items = append(items, ToolItem{
			ID:         t.ID,
			Name:       t.Name,
			Native:     t.Category == configurators.CategoryNative,
			Configured: set[t.ID],
		})
	}
	return items
}

// PickerLabels are the localized strings the picker shows.
type PickerLabels struct {
	Title      string
	Native     string
	Other      string
	Configured string
}

// PickerModel is a multi-select list of AI tools. Native tools are listed
// before the others; configured tools start selected.
type PickerModel struct {
	Labels    PickerLabels
	Items     []ToolItem
	Selected  map[string]bool
	Cursor    int
	Width     int
	Keys      KeyMap
	Confirmed bool
	Cancelled bool
}

// NewPicker returns a picker over items.
func NewPicker(labels PickerLabels, items []ToolItem) PickerModel {
	ordered := make([]ToolItem, 0, len(items))
	for _, native := range []bool{true, false} {
		for _, it := range items {
			if it.Native == native {
				ordered = append(ordered, it)
			}
		}
	}
	selected := make(map[string]bool)
	for _, it := range ordered {
		if it.Configured {
			selected[it.ID] = true
		}
	}
	return PickerModel{
		Labels:   labels,
		Items:    ordered,
		Selected: selected,
		Width:    80,
		Keys:     DefaultKeyMap(),
	}
}

// Init implements tea.Model.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Quit):
			m.Cancelled = true
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Confirm):
			m.Confirmed = true
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Up):
			if m.Cursor > 0 {
				m.Cursor--
			}
		case key.Matches(msg, m.Keys.Down):
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
			}
		case key.Matches(msg, m.Keys.Toggle):
			if m.Cursor < len(m.Items) {
				id := m.Items[m.Cursor].ID
				m.Selected = toggled(m.Selected, id)
			}
		case key.Matches(msg, m.Keys.All):
			m.Selected = make(map[string]bool, len(m.Items))
			for _, it := range m.Items {
				m.Selected[it.ID] = true
			}
		case key.Matches(msg, m.Keys.None):
			m.Selected = make(map[string]bool)
		}
	}
	return m, nil
}

// toggled copies sel with id flipped so earlier model values stay intact.
func toggled(sel map[string]bool, id string) map[string]bool {
	out := make(map[string]bool, len(sel)+1)
	for k, v := range sel {
		out[k] = v
	}
	if out[id] {
		delete(out, id)
	} else {
		out[id] = true
	}
	return out
}

// View implements tea.Model.
func (m PickerModel) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(m.Labels.Title))
	b.WriteString("\n")

	section := -1
	for i, it := range m.Items {
		s := 1
		if it.Native {
			s = 0
		}
		if s != section {
			section = s
			label := m.Labels.Other
			if it.Native {
				label = m.Labels.Native
			}
			if label != "" {
				b.WriteString("\n" + styleSection.Render(label) + "\n")
			}
		}

		indicator := " "
		if i == m.Cursor {
			indicator = styleSelectionIndicator.Render(selectionIndicator)
		}
		box := styleRowNormal.Render(iconUnchecked)
		if m.Selected[it.ID] {
			box = styleRowChecked.Render(iconChecked)
		}
		name := styleRowNormal.Render(it.Name)
		if i == m.Cursor {
			name = styleRowSelected.Render(it.Name)
		}
		line := indicator + " " + box + " " + name
		if it.Configured && m.Labels.Configured != "" {
			line += " " + styleRowNote.Render("("+m.Labels.Configured+")")
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(Footer{Width: m.Width, Keys: m.Keys, Selected: len(m.Chosen()), Total: len(m.Items)}.View())
	return b.String()
}

// Chosen returns the selected ids in display order.
func (m PickerModel) Chosen() []string {
	ids := []string{}
	for _, it := range m.Items {
		if m.Selected[it.ID] {
			ids = append(ids, it.ID)
		}
	}
	return ids
}
