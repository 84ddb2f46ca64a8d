package convert

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papapumpkin/openspec/internal/spec"
)

const specWithSpecialChars = `# Special "Quoted" Spec

## Purpose
Handles quotes "like this", backslashes \ and <angle> & ampersands.

## Requirements

### Requirement: Escapes
The system SHALL keep "quoted" text and C:\paths intact.

#### Scenario: multi-line
- **WHEN** a line says "hi"
- **THEN** the next line keeps \n literally
`

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "specs", "escapes", "spec.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSpecToJSONRoundTrip(t *testing.T) {
	t.Parallel()

	path := writeSpec(t, specWithSpecialChars)
	out, err := SpecToJSON(path)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "{\n  \"name\": \"escapes\""), out)
	assert.Contains(t, out, "<angle> & ampersands")

	var doc SpecDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	s, err := spec.LoadSpec(path)
	require.NoError(t, err)
	require.Len(t, doc.Requirements, len(s.Requirements))
	assert.Equal(t, s.Requirements[0].Text, doc.Requirements[0].Text)
	assert.Equal(t, s.Requirements[0].Scenarios[0].RawText, doc.Requirements[0].Scenarios[0].RawText)
	assert.Contains(t, doc.Requirements[0].Scenarios[0].RawText, "\n- **THEN**")
	assert.Equal(t, FormatSpec, doc.Metadata.Format)
	assert.Equal(t, path, doc.Metadata.SourcePath)
	assert.Nil(t, doc.Metadata.Frontmatter)
}

func TestSpecToJSONFrontmatter(t *testing.T) {
	t.Parallel()

	path := writeSpec(t, "+++\nowner = \"platform\"\n+++\n"+specWithSpecialChars)
	out, err := SpecToJSON(path)
	require.NoError(t, err)
	assert.Contains(t, out, `"frontmatter": {`)
	assert.Contains(t, out, `"owner": "platform"`)
}

func TestChangeToJSON(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "add-login")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "proposal.md"), []byte(
		"# Change: Add login\n\n## Why\nBecause.\n\n## What Changes\n- **auth:** Add login\n- **session:** Remove cookies\n"), 0o644))

	out, err := ChangeDirToJSON(dir)
	require.NoError(t, err)

	var doc ChangeDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "add-login", doc.Name)
	assert.Equal(t, FormatChange, doc.Metadata.Format)
	require.Len(t, doc.Deltas, 2)
	assert.Equal(t, spec.OpRemoved, doc.Deltas[1].Operation)
	assert.NotContains(t, out, `"requirement"`)
}

func TestFilterApply(t *testing.T) {
	t.Parallel()

	reqs := []spec.Requirement{
		{Text: "one", Scenarios: []spec.Scenario{{RawText: "a"}}},
		{Text: "two", Scenarios: []spec.Scenario{{RawText: "b"}}},
	}

	tests := []struct {
		name    string
		filter  Filter
		want    []spec.Requirement
		wantErr error
	}{
		{name: "all", filter: Filter{}, want: reqs},
		{
			name:   "no scenarios",
			filter: Filter{NoScenarios: true},
			want:   []spec.Requirement{{Text: "one", Scenarios: []spec.Scenario{}}, {Text: "two", Scenarios: []spec.Scenario{}}},
		},
		{name: "index", filter: Filter{Index: 2}, want: reqs[1:]},
		{name: "index out of range", filter: Filter{Index: 3}, wantErr: ErrRequirementIndex},
		{name: "conflict", filter: Filter{RequirementsOnly: true, Index: 1}, wantErr: ErrConflictingFilters},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.filter.Apply(reqs)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Len(t, reqs[0].Scenarios, 1, "input must not be modified")
}

func TestTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Add login", Title("# Change: Add login\n\n## Why\n", "x"))
	assert.Equal(t, "Auth", Title("---\na: 1\n---\n# Auth\n", "x"))
	assert.Equal(t, "fallback", Title("## Purpose\n", "fallback"))
}

func TestNewSpecView(t *testing.T) {
	t.Parallel()

	s, err := spec.ParseSpec(specWithSpecialChars, "escapes")
	require.NoError(t, err)

	v, err := NewSpecView("escapes", specWithSpecialChars, s, Filter{RequirementsOnly: true})
	require.NoError(t, err)
	assert.Equal(t, `Special "Quoted" Spec`, v.Title)
	assert.Equal(t, 1, v.RequirementCount)
	assert.Empty(t, v.Requirements[0].Scenarios)
	assert.NotEmpty(t, s.Requirements[0].Scenarios)
}

func TestSchema(t *testing.T) {
	t.Parallel()

	out, err := Schema("spec")
	require.NoError(t, err)
	assert.Contains(t, out, `"requirements"`)
	assert.Contains(t, out, `"rawText"`)

	out, err = Schema("change")
	require.NoError(t, err)
	assert.Contains(t, out, `"whatChanges"`)

	_, err = Schema("project")
	require.ErrorIs(t, err, ErrUnknownSchema)
}
