package cmd

import (
	"fmt"
	"strings"

	"github.com/papapumpkin/openspec/internal/workspace"
)

// maxSuggestions caps the "Did you mean" list.
const maxSuggestions = 5

// parseItemType validates a --type value. The empty string means "detect".
func parseItemType(s string) (workspace.ItemType, error) {
	switch t := workspace.ItemType(strings.ToLower(strings.TrimSpace(s))); t {
	case "", workspace.TypeChange, workspace.TypeSpec:
		return t, nil
	default:
		return "", fmt.Errorf("invalid --type %q (want change or spec)", s)
	}
}

// resolveItem decides what id refers to. An explicit type only checks that
// the item exists. Ambiguous and unknown ids are reported on the printer.
func (e *env) resolveItem(ws *workspace.Workspace, id string, typ workspace.ItemType) (workspace.ItemType, error) {
	m := ws.Resolve(id)
	switch {
	case typ == workspace.TypeChange && m.Change, typ == workspace.TypeSpec && m.Spec:
		return typ, nil
	case typ != "":
		return "", e.unknownItem(ws, id, typ)
	case m.Ambiguous():
		e.ui.Error(e.cat.T("show.ambiguous", "item", id))
		e.ui.Info(e.cat.T("show.pass_type"))
		return "", errSilentExit
	case m.Change:
		return workspace.TypeChange, nil
	case m.Spec:
		return workspace.TypeSpec, nil
	default:
		return "", e.unknownItem(ws, id, "")
	}
}

// unknownItem prints the not-found message with the nearest candidates of
// the requested type, or of both types when typ is empty.
func (e *env) unknownItem(ws *workspace.Workspace, id string, typ workspace.ItemType) error {
	var candidates []string
	if typ != workspace.TypeSpec {
		ids, err := ws.ChangeIDs()
		if err != nil {
			return err
		}
		candidates = append(candidates, ids...)
	}
	if typ != workspace.TypeChange {
		ids, err := ws.SpecIDs()
		if err != nil {
			return err
		}
		candidates = append(candidates, ids...)
	}

	e.ui.Error(e.cat.T("show.unknown", "item", id))
	if s := workspace.Suggest(id, candidates, maxSuggestions); len(s) > 0 {
		e.ui.Info(e.cat.T("show.did_you_mean", "suggestions", strings.Join(s, ", ")))
	}
	return errSilentExit
}
