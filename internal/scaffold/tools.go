package scaffold

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/papapumpkin/openspec/internal/configurators"
)

// Reserved --tools values.
const (
	ToolsAll  = "all"
	ToolsNone = "none"
)

var (
	// ErrInvalidTool is returned when --tools names an unknown tool.
	ErrInvalidTool = errors.New("invalid tool")
	// ErrReservedMix is returned when "all" or "none" is combined with ids.
	ErrReservedMix = errors.New(`cannot combine reserved values "all" or "none" with specific tool IDs`)
)

// InvalidToolError lists the unknown ids of a --tools value.
type InvalidToolError struct {
	IDs []string
}

// Error names the unknown ids and every accepted value.
func (e *InvalidToolError) Error() string {
	return fmt.Sprintf("Invalid tool(s): %s. Available values: %s",
		strings.Join(e.IDs, ", "), strings.Join(AvailableValues(), ", "))
}

// Unwrap returns ErrInvalidTool.
func (e *InvalidToolError) Unwrap() error { return ErrInvalidTool }

// AvailableValues lists what --tools accepts.
func AvailableValues() []string {
	return append([]string{ToolsAll, ToolsNone}, configurators.IDs()...)
}

// ParseTools resolves a --tools value to tool ids. Ids are comma separated,
// trimmed and matched case-insensitively; duplicates collapse. "all" selects
// every tool and "none" selects nothing, and neither may be combined with
// other ids.
func ParseTools(value string) ([]string, error) {
	var raw []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			raw = append(raw, p)
		}
	}
	if len(raw) == 0 {
		return nil, &InvalidToolError{IDs: []string{strings.TrimSpace(value)}}
	}

	reserved := slices.Contains(raw, ToolsAll) || slices.Contains(raw, ToolsNone)
	if reserved {
		if len(raw) > 1 {
			return nil, ErrReservedMix
		}
		if raw[0] == ToolsAll {
			return configurators.IDs(), nil
		}
		return []string{}, nil
	}

	var ids, unknown []string
	for _, id := range raw {
		if _, ok := configurators.Lookup(id); !ok {
			unknown = append(unknown, id)
			continue
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	if len(unknown) > 0 {
		return nil, &InvalidToolError{IDs: unknown}
	}
	return ids, nil
}
