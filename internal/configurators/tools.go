// Package configurators keeps per-assistant instruction and slash command
// files in sync with the OpenSpec templates. Each supported assistant is a
// Tool; a Tool owns an optional instruction file (CLAUDE.md and friends) and
// an optional set of proposal/apply/archive slash command files, all of which
// carry an OpenSpec-managed block between markers.
package configurators

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/papapumpkin/openspec/internal/templates"
)

// Category groups tools in the picker.
type Category string

// Tool categories.
const (
	CategoryNative Category = "native"
	CategoryOther  Category = "other"
)

// Tool describes one supported AI assistant.
type Tool struct {
	ID           string
	Name         string
	SuccessLabel string
	Category     Category

	// Instruction is the project-relative instruction file, or "".
	Instruction string

	slashPath   func(id templates.SlashCommand) string
	frontmatter func(id templates.SlashCommand) string
	bodySuffix  string
	global      bool // slash files live under CODEX_HOME, not the project
}

// HasSlashCommands reports whether the tool gets slash command files.
func (t Tool) HasSlashCommands() bool {
	return t.slashPath != nil
}

var descriptions = map[templates.SlashCommand]string{
	templates.Proposal: "Scaffold a new OpenSpec change and validate strictly.",
	templates.Apply:    "Implement an approved OpenSpec change and keep tasks in sync.",
	templates.Archive:  "Archive a deployed OpenSpec change and update specs.",
}

var argumentHints = map[templates.SlashCommand]string{
	templates.Proposal: "request or feature description",
	templates.Apply:    "change-id",
	templates.Archive:  "change-id",
}

var claudeTags = map[templates.SlashCommand]string{
	templates.Proposal: "[openspec, change]",
	templates.Apply:    "[openspec, apply]",
	templates.Archive:  "[openspec, archive]",
}

// Description returns the one-line description of a slash command.
func Description(id templates.SlashCommand) string {
	return descriptions[id]
}

func title(id templates.SlashCommand) string {
	s := string(id)
	return strings.ToUpper(s[:1]) + s[1:]
}

func yamlFrontmatter(lines ...string) string {
	return "---\n" + strings.Join(lines, "\n") + "\n---"
}

func nested(dir string) func(templates.SlashCommand) string {
	return func(id templates.SlashCommand) string {
		return filepath.Join(dir, string(id)+".md")
	}
}

func prefixed(dir, suffix string) func(templates.SlashCommand) string {
	return func(id templates.SlashCommand) string {
		return filepath.Join(dir, "openspec-"+string(id)+suffix)
	}
}

func claudeStyle(id templates.SlashCommand) string {
	return yamlFrontmatter(
		"name: OpenSpec: "+title(id),
		"description: "+descriptions[id],
		"category: OpenSpec",
		"tags: "+claudeTags[id],
	)
}

func descriptionOnly(id templates.SlashCommand) string {
	return yamlFrontmatter("description: " + descriptions[id])
}

func withArgumentHint(id templates.SlashCommand) string {
	return yamlFrontmatter(
		"description: "+descriptions[id],
		"argument-hint: "+argumentHints[id],
	)
}

// Tools returns every supported tool in display order.
func Tools() []Tool {
	return []Tool{
		{
			ID: "auggie", Name: "Auggie (Augment CLI)", SuccessLabel: "Auggie", Category: CategoryNative,
			slashPath: prefixed(filepath.Join(".augment", "commands"), ".md"), frontmatter: withArgumentHint,
		},
		{
			ID: "claude", Name: "Claude Code", SuccessLabel: "Claude Code", Category: CategoryNative,
			Instruction: "CLAUDE.md",
			slashPath:   nested(filepath.Join(".claude", "commands", "openspec")), frontmatter: claudeStyle,
		},
		{
			ID: "cline", Name: "Cline", SuccessLabel: "Cline", Category: CategoryNative,
			Instruction: "CLINE.md",
			slashPath:   prefixed(".clinerules", ".md"),
			frontmatter: func(id templates.SlashCommand) string {
				return "# OpenSpec: " + title(id) + "\n\n" + descriptions[id]
			},
		},
		{
			ID: "codebuddy", Name: "CodeBuddy Code (CLI)", SuccessLabel: "CodeBuddy Code", Category: CategoryNative,
			Instruction: "CODEBUDDY.md",
			slashPath:   nested(filepath.Join(".codebuddy", "commands", "openspec")),
			frontmatter: func(id templates.SlashCommand) string {
				return yamlFrontmatter(
					"name: OpenSpec: "+title(id),
					"description: "+descriptions[id],
					"argument-hint: "+argumentHints[id],
				)
			},
		},
		{
			ID: "crush", Name: "Crush", SuccessLabel: "Crush", Category: CategoryNative,
			slashPath: nested(filepath.Join(".crush", "commands", "openspec")), frontmatter: claudeStyle,
		},
		{
			ID: "cursor", Name: "Cursor", SuccessLabel: "Cursor", Category: CategoryNative,
			slashPath: prefixed(filepath.Join(".cursor", "commands"), ".md"),
			frontmatter: func(id templates.SlashCommand) string {
				return yamlFrontmatter(
					"name: /openspec-"+string(id),
					"id: openspec-"+string(id),
					"category: OpenSpec",
					"description: "+descriptions[id],
				)
			},
		},
		{
			ID: "factory", Name: "Factory Droid", SuccessLabel: "Factory Droid", Category: CategoryNative,
			slashPath: prefixed(filepath.Join(".factory", "commands"), ".md"), frontmatter: withArgumentHint,
			bodySuffix: "\n\n$ARGUMENTS",
		},
		{
			ID: "opencode", Name: "OpenCode", SuccessLabel: "OpenCode", Category: CategoryNative,
			slashPath: prefixed(filepath.Join(".opencode", "command"), ".md"),
			frontmatter: func(id templates.SlashCommand) string {
				return yamlFrontmatter("agent: build", "description: "+descriptions[id]) + "\n\n$ARGUMENTS"
			},
		},
		{
			ID: "kilocode", Name: "Kilo Code", SuccessLabel: "Kilo Code", Category: CategoryNative,
			slashPath: prefixed(filepath.Join(".kilocode", "workflows"), ".md"),
		},
		{
			ID: "trae", Name: "Trae IDE", SuccessLabel: "Trae IDE", Category: CategoryOther,
			Instruction: filepath.Join(".trae", "rules", "project_rules.md"),
		},
		{
			ID: "windsurf", Name: "Windsurf", SuccessLabel: "Windsurf", Category: CategoryNative,
			slashPath: prefixed(filepath.Join(".windsurf", "workflows"), ".md"),
			frontmatter: func(id templates.SlashCommand) string {
				return yamlFrontmatter("description: "+descriptions[id], "auto_execution_mode: 3")
			},
		},
		{
			ID: "codex", Name: "Codex", SuccessLabel: "Codex", Category: CategoryNative,
			slashPath: prefixed("prompts", ".md"), global: true,
			frontmatter: func(id templates.SlashCommand) string {
				return withArgumentHint(id) + "\n\n$ARGUMENTS"
			},
		},
		{
			ID: "github-copilot", Name: "GitHub Copilot", SuccessLabel: "GitHub Copilot", Category: CategoryNative,
			slashPath: prefixed(filepath.Join(".github", "prompts"), ".prompt.md"),
			frontmatter: func(id templates.SlashCommand) string {
				return descriptionOnly(id) + "\n\n$ARGUMENTS"
			},
		},
		{
			ID: "amazon-q", Name: "Amazon Q Developer", SuccessLabel: "Amazon Q Developer", Category: CategoryNative,
			slashPath: prefixed(filepath.Join(".amazonq", "prompts"), ".md"), frontmatter: descriptionOnly,
		},
		{
			ID: "agents", Name: "AGENTS.md (works with Amp, VS Code, …)", SuccessLabel: "your AGENTS.md-compatible assistant",
			Category: CategoryOther, Instruction: "AGENTS.md",
		},
	}
}

// IDs returns every tool id in display order.
func IDs() []string {
	tools := Tools()
	ids := make([]string, len(tools))
	for i, t := range tools {
		ids[i] = t.ID
	}
	return ids
}

// Lookup finds a tool by id.
func Lookup(id string) (Tool, bool) {
	for _, t := range Tools() {
		if t.ID == id {
			return t, true
		}
	}
	return Tool{}, false
}

// SortedIDs returns ids sorted for stable error messages.
func SortedIDs() []string {
	ids := IDs()
	sort.Strings(ids)
	return ids
}

// Validate resolves tool ids, returning an error listing any unknown ones.
func Validate(ids []string) ([]Tool, error) {
	var (
		out     []Tool
		unknown []string
	)
	for _, id := range ids {
		t, ok := Lookup(id)
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		out = append(out, t)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, strings.Join(unknown, ", "))
	}
	return out, nil
}
