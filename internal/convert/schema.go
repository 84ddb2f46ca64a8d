package convert

import (
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
)

// ErrUnknownSchema is returned for a schema name other than "spec" or "change".
var ErrUnknownSchema = errors.New("unknown schema")

// SchemaNames lists the documents Schema can describe.
func SchemaNames() []string {
	return []string{"spec", "change"}
}

// Schema returns the JSON Schema of the exported spec or change document.
func Schema(name string) (string, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
	}
	var s *jsonschema.Schema
	switch name {
	case "spec":
		s = r.Reflect(&SpecDocument{})
		s.Title = "OpenSpec spec"
	case "change":
		s = r.Reflect(&ChangeDocument{})
		s.Title = "OpenSpec change"
	default:
		return "", fmt.Errorf("%w %q (want one of %v)", ErrUnknownSchema, name, SchemaNames())
	}
	return Marshal(s)
}
