package spec

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papapumpkin/openspec/internal/delta"
)

const authSpec = `# User Authentication Spec

## Purpose
This specification defines the requirements for user authentication.

## Requirements

### The system SHALL provide secure user authentication
Users need to be able to log in securely.

#### Scenario: Successful login
Given a user with valid credentials
When they submit the login form
Then they are authenticated

### The system SHALL handle invalid login attempts
The system must handle incorrect credentials.

#### Scenario: Invalid credentials
Given a user with invalid credentials
and the account is not locked
When they submit the login form
Then they see an error message`

func TestParseSpec(t *testing.T) {
	t.Parallel()

	s, err := ParseSpec(authSpec, "user-auth")
	require.NoError(t, err)

	assert.Equal(t, "user-auth", s.Name)
	assert.Contains(t, s.Overview, "requirements for user authentication")
	require.Len(t, s.Requirements, 2)
	assert.Equal(t, "Users need to be able to log in securely.", s.Requirements[0].Text)
	require.Len(t, s.Requirements[0].Scenarios, 1)
	assert.Equal(t,
		"Given a user with valid credentials\nWhen they submit the login form\nThen they are authenticated",
		s.Requirements[0].Scenarios[0].RawText)
	assert.Contains(t, s.Requirements[1].Scenarios[0].RawText, "and the account is not locked")
}

func TestParseSpecMissingSections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no purpose", "# T\n\n## Requirements\n\n### R\nThe system SHALL x.\n", "must have a Purpose section"},
		{"no requirements", "# T\n\n## Purpose\nSomething.\n", "must have a Requirements section"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseSpec(tt.content, "t")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.True(t, errors.Is(err, ErrMissingSection))

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, DocSpec, pe.Kind)
		})
	}
}

func TestParseSpecRequirementText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "heading fallback",
			body: "### The system SHALL use heading text when no content\n\n#### Scenario: Test\nGiven test\n",
			want: "The system SHALL use heading text when no content",
		},
		{
			name: "first non-empty line",
			body: "### Requirement heading\n\nThis is the actual requirement text.\nThis is additional description.\n\n#### Scenario: Test\nGiven test\n",
			want: "This is the actual requirement text.",
		},
		{
			name: "metadata skipped",
			body: "### Requirement: Logging\n**ID**: REQ-1\n**Priority**: high\n\nThe system SHALL log events.\n\n#### Scenario: s\nok\n",
			want: "The system SHALL log events.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := ParseSpec("# T\n\n## Purpose\nTest overview\n\n## Requirements\n\n"+tt.body, "t")
			require.NoError(t, err)
			require.Len(t, s.Requirements, 1)
			assert.Equal(t, tt.want, s.Requirements[0].Text)
		})
	}
}

func TestParseSpecEmptyRequirements(t *testing.T) {
	t.Parallel()

	s, err := ParseSpec("# T\n\n## Purpose\nText\n\n## Requirements\n", "t")
	require.NoError(t, err)
	assert.NotNil(t, s.Requirements)
	assert.Empty(t, s.Requirements)
}

func TestParseSpecFrontmatter(t *testing.T) {
	t.Parallel()

	s, err := ParseSpec("---\nowner: platform\n---\n"+authSpec, "user-auth")
	require.NoError(t, err)
	assert.Equal(t, "platform", s.Frontmatter["owner"])
	assert.Len(t, s.Requirements, 2)
}

func TestParseChange(t *testing.T) {
	t.Parallel()

	content := `# Add User Authentication

## Why
We need to implement user authentication to secure the application and protect user data from unauthorized access.

## What Changes
- **user-auth:** Add new user authentication specification
- **api-endpoints:** Modify to include authentication endpoints
- **database:** Remove old session management tables
- **naming**: Rename the login requirement`

	c, err := ParseChange(content, "add-user-auth")
	require.NoError(t, err)

	assert.Equal(t, "add-user-auth", c.Name)
	assert.Contains(t, c.Why, "secure the application")
	assert.Contains(t, c.WhatChanges, "user-auth")
	require.Len(t, c.Deltas, 4)

	want := []struct {
		spec string
		op   Operation
	}{
		{"user-auth", OpAdded},
		{"api-endpoints", OpModified},
		{"database", OpRemoved},
		{"naming", OpRenamed},
	}
	for i, w := range want {
		assert.Equal(t, w.spec, c.Deltas[i].Spec)
		assert.Equal(t, w.op, c.Deltas[i].Operation)
	}
	assert.Contains(t, c.Deltas[0].Description, "Add new user authentication")
}

func TestParseChangeErrors(t *testing.T) {
	t.Parallel()

	_, err := ParseChange("# T\n\n## What Changes\n- **t:** Add t", "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must have a Why section")

	_, err = ParseChange("# T\n\n## Why\nBecause we need it", "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must have a What Changes section")
}

func TestParseChangeWithoutDeltas(t *testing.T) {
	t.Parallel()

	c, err := ParseChange("# T\n\n## Why\nReasons.\n\n## What Changes\nSome general description of changes without specific deltas", "t")
	require.NoError(t, err)
	assert.NotNil(t, c.Deltas)
	assert.Empty(t, c.Deltas)
}

func TestParseChangeCRLF(t *testing.T) {
	t.Parallel()

	content := strings.Join([]string{
		"# CRLF Change", "", "## Why", "Reasons on Windows editors should parse like POSIX environments.", "",
		"## What Changes", "- **alpha:** Add cross-platform parsing coverage",
	}, "\r\n")
	c, err := ParseChange(content, "crlf-change")
	require.NoError(t, err)
	assert.Contains(t, c.Why, "Windows editors should parse")
	require.Len(t, c.Deltas, 1)
	assert.Equal(t, "alpha", c.Deltas[0].Spec)
}

func TestInferOperation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc string
		want Operation
	}{
		{"Add a new requirement", OpAdded},
		{"Update retry policy", OpModified},
		{"Changed defaults", OpModified},
		{"Delete legacy flow", OpRemoved},
		{"Rename X to Y", OpRenamed},
		{"Remove then add", OpAdded},
		{"Remove the update flow", OpModified},
		{"Rename and delete the old flow", OpRemoved},
		{"Renamed", OpRenamed},
		{"Address feedback", OpAdded},
		{"", OpAdded},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InferOperation(tt.desc), tt.desc)
	}
}

const proposal = "# Test Change\n\n## Why\nWe need it because reasons that are sufficiently long.\n\n## What Changes\n" +
	"- **bar:** Update bar behaviour\n" +
	"- **foo:** Add something via bullets (should be overridden)\n" +
	"- **foo:** Another foo bullet\n"

func TestParseChangeWithDeltasPrefersDeltaSpecs(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"specs/foo/spec.md": {Data: []byte("# Delta for Foo\n\n## ADDED Requirements\n\n### Requirement: New thing\nThe system SHALL do new things.\n\n#### Scenario: basic\nGiven X\nWhen Y\nThen Z\n\n" +
			"## RENAMED Requirements\n- FROM: `### Requirement: Old`\n- TO: `### Requirement: Fresh`\n")},
		"specs/zed/spec.md": {Data: []byte("## REMOVED Requirements\n- `### Requirement: Legacy`\n")},
	}

	c, err := ParseChangeWithDeltas(fsys, proposal, "test-change")
	require.NoError(t, err)
	require.Len(t, c.Deltas, 4)

	assert.Equal(t, "bar", c.Deltas[0].Spec)
	assert.Equal(t, OpModified, c.Deltas[0].Operation)

	assert.Equal(t, "foo", c.Deltas[1].Spec)
	assert.Equal(t, OpAdded, c.Deltas[1].Operation)
	assert.Equal(t, "Add requirement: New thing", c.Deltas[1].Description)
	require.NotNil(t, c.Deltas[1].Requirement)
	assert.Equal(t, "The system SHALL do new things.", c.Deltas[1].Requirement.Text)
	assert.Len(t, c.Deltas[1].Requirement.Scenarios, 1)

	assert.Equal(t, OpRenamed, c.Deltas[2].Operation)
	assert.Equal(t, &Rename{From: "Old", To: "Fresh"}, c.Deltas[2].Rename)

	assert.Equal(t, "zed", c.Deltas[3].Spec)
	assert.Equal(t, "Remove requirement: Legacy", c.Deltas[3].Description)
}

func TestDeltaSpecFilesRejectsCaseCollision(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"specs/Auth/spec.md": {Data: []byte("## ADDED Requirements\n")},
		"specs/auth/spec.md": {Data: []byte("## ADDED Requirements\n")},
	}
	_, err := DeltaSpecFiles(fsys)
	require.ErrorIs(t, err, delta.ErrDuplicateCapability)
}

func TestDeltaSpecFilesNested(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"specs/spec.md":              {Data: []byte("ignored")},
		"specs/platform/api/spec.md": {Data: []byte("x")},
		"specs/auth/spec.md":         {Data: []byte("x")},
		"specs/auth/notes.md":        {Data: []byte("x")},
	}
	files, err := DeltaSpecFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []DeltaFile{
		{Capability: "auth", Path: "specs/auth/spec.md"},
		{Capability: "platform/api", Path: "specs/platform/api/spec.md"},
	}, files)
}

func TestLoadChange(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "add-foo")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "specs", "foo"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "proposal.md"), []byte(proposal), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "specs", "foo", "spec.md"),
		[]byte("## MODIFIED Requirements\n### Requirement: Thing\nThe system MUST change.\n"), 0o644))

	c, err := LoadChange(dir)
	require.NoError(t, err)
	assert.Equal(t, "add-foo", c.Name)
	require.Len(t, c.Deltas, 2)
	assert.Equal(t, "Modify requirement: Thing", c.Deltas[1].Description)
}

func TestLoadSpecUsesDirectoryName(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "specs", "user-auth")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "spec.md")
	require.NoError(t, os.WriteFile(path, []byte(authSpec), 0o644))

	s, err := LoadSpec(path)
	require.NoError(t, err)
	assert.Equal(t, "user-auth", s.Name)
}
