// Package templates renders the files OpenSpec writes into a project: the
// openspec/AGENTS.md workflow guide, project.md, the short instruction stub
// shared by root AGENTS.md and per-tool instruction files, and the bodies of
// the proposal/apply/archive slash commands. Every template exists in each
// supported locale.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/papapumpkin/openspec/internal/i18n"
)

//go:embed content
var contentFS embed.FS

// Markers delimit the OpenSpec-managed block inside files users also edit.
const (
	MarkerStart = "<!-- OPENSPEC:START -->"
	MarkerEnd   = "<!-- OPENSPEC:END -->"
)

// SlashCommand identifies one of the generated slash commands.
type SlashCommand string

// Slash commands, in the order they are written.
const (
	Proposal SlashCommand = "proposal"
	Apply    SlashCommand = "apply"
	Archive  SlashCommand = "archive"
)

// SlashCommands returns every slash command id.
func SlashCommands() []SlashCommand {
	return []SlashCommand{Proposal, Apply, Archive}
}

// ProjectContext fills in project.md.
type ProjectContext struct {
	ProjectName string
	Description string
	TechStack   []string
}

// Set renders templates for one locale.
type Set struct {
	locale i18n.Locale
}

// For returns the template set of locale.
func For(locale i18n.Locale) Set {
	return Set{locale: locale}
}

// Agents returns openspec/AGENTS.md.
func (s Set) Agents() string {
	return s.read("agents.md")
}

// Stub returns the short instruction block placed between markers in root
// AGENTS.md, CLAUDE.md and the other tool instruction files.
func (s Set) Stub() string {
	return strings.TrimSpace(s.read("stub.md"))
}

// Project renders openspec/project.md.
func (s Set) Project(ctx ProjectContext) (string, error) {
	if ctx.ProjectName == "" {
		ctx.ProjectName = "Project"
	}
	tmpl, err := template.New("project").Parse(s.read("project.md.tmpl"))
	if err != nil {
		return "", fmt.Errorf("parsing project template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("rendering project template: %w", err)
	}
	return buf.String(), nil
}

// SlashBody returns the marker-wrapped body of a slash command.
func (s Set) SlashBody(id SlashCommand) string {
	guardrails := strings.TrimSpace(s.read("slash_guardrails.md"))
	body := strings.TrimSpace(s.read("slash_" + string(id) + ".md"))
	if id == Proposal {
		// The proposal body opens with one more guardrail bullet.
		return guardrails + "\n" + body
	}
	return guardrails + "\n\n" + body
}

// read loads a template, falling back to English when the locale lacks it.
func (s Set) read(name string) string {
	for _, loc := range []i18n.Locale{s.locale, i18n.English} {
		data, err := contentFS.ReadFile("content/" + string(loc) + "/" + name)
		if err == nil {
			return string(data)
		}
	}
	return ""
}
