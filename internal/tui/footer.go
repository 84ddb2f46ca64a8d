package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// CompactWidth is the terminal width below which the footer shows keys
// without their descriptions.
const CompactWidth = 60

// Footer is the hint line under the picker: the selection count followed by
// the enabled key bindings.
type Footer struct {
	Width    int
	Keys     KeyMap
	Selected int
	Total    int
}

func (f Footer) bindings() []key.Binding {
	km := f.Keys
	return []key.Binding{km.Up, km.Down, km.Toggle, km.All, km.None, km.Confirm, km.Quit}
}

// View renders the footer on one line.
func (f Footer) View() string {
	compact := f.Width < CompactWidth
	parts := []string{styleFooterKey.Render(fmt.Sprintf("%d/%d", f.Selected, f.Total))}
	for _, b := range f.bindings() {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		hint := styleFooterKey.Render(h.Key)
		if !compact {
			hint += styleFooterSep.Render(":") + styleFooterDesc.Render(h.Desc)
		}
		parts = append(parts, hint)
	}
	gap := "  "
	if compact {
		gap = " "
	}
	return styleFooter.Width(f.Width).Render(strings.Join(parts, styleFooterSep.Render(gap)))
}
