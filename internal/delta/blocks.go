package delta

import (
	"regexp"
	"strings"

	"github.com/papapumpkin/openspec/internal/markdown"
)

var (
	requirementHeader  = regexp.MustCompile(`^###\s*Requirement:\s*(.+?)\s*$`)
	requirementsHeader = regexp.MustCompile(`(?i)^##\s+Requirements\s*$`)
	levelTwoHeader     = regexp.MustCompile(`^##\s`)
)

// Block is one "### Requirement:" block with its raw text preserved.
type Block struct {
	HeaderLine string // the "### Requirement: <name>" line as written
	Name       string // trimmed requirement name
	Raw        string // header line plus body, trailing blank lines trimmed
}

// RequirementsSection is a spec document cut around its "## Requirements"
// section so the blocks can be rewritten without touching anything else.
type RequirementsSection struct {
	Before     string // everything before the section header
	HeaderLine string
	Preamble   string // text between the header and the first block
	Blocks     []Block
	After      string // the next level-2 section onwards
}

// HeaderFor returns the canonical header line for a requirement name.
func HeaderFor(name string) string {
	return "### Requirement: " + strings.TrimSpace(name)
}

// ExtractRequirementsSection splits content around its "## Requirements"
// section. When the document has none, an empty section is synthesised at
// the end of the document.
func ExtractRequirementsSection(content string) RequirementsSection {
	lines := markdown.Lines(content)
	headings := markdown.HeadingLines(lines)

	start := -1
	for i, line := range lines {
		if headings[i] && requirementsHeader.MatchString(line) {
			start = i
			break
		}
	}
	if start < 0 {
		return RequirementsSection{
			Before:     strings.TrimRight(strings.Join(lines, "\n"), "\n"),
			HeaderLine: "## Requirements",
		}
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if headings[i] && levelTwoHeader.MatchString(lines[i]) {
			end = i
			break
		}
	}

	preamble, blocks := splitBlocks(lines[start+1:end])
	return RequirementsSection{
		Before:     strings.Join(lines[:start], "\n"),
		HeaderLine: lines[start],
		Preamble:   preamble,
		Blocks:     blocks,
		After:      strings.Join(lines[end:], "\n"),
	}
}

// ParseBlocks returns the requirement blocks found in a section body,
// discarding anything before the first block.
func ParseBlocks(body string) []Block {
	_, blocks := splitBlocks(markdown.Lines(body))
	return blocks
}

func splitBlocks(lines []string) (string, []Block) {
	headings := markdown.HeadingLines(lines)

	var (
		preamble []string
		blocks   []Block
		current  []string
		name     string
	)
	flush := func() {
		if current == nil {
			return
		}
		blocks = append(blocks, Block{
			HeaderLine: current[0],
			Name:       name,
			Raw:        strings.TrimRight(strings.Join(current, "\n"), "\n \t"),
		})
		current = nil
	}
	for i, line := range lines {
		if headings[i] {
			if m := requirementHeader.FindStringSubmatch(line); m != nil {
				flush()
				name = strings.TrimSpace(m[1])
				current = []string{line}
				continue
			}
		}
		if current == nil {
			preamble = append(preamble, line)
			continue
		}
		current = append(current, line)
	}
	flush()
	return strings.TrimSpace(strings.Join(preamble, "\n")), blocks
}

// Compose reassembles a document from its cut section and the given blocks.
func (s RequirementsSection) Compose(blocks []Block) string {
	var parts []string
	if p := strings.TrimSpace(s.Preamble); p != "" {
		parts = append(parts, p)
	}
	for _, b := range blocks {
		parts = append(parts, strings.TrimRight(b.Raw, "\n \t"))
	}

	var sb strings.Builder
	if before := strings.TrimRight(s.Before, "\n \t"); before != "" {
		sb.WriteString(before)
		sb.WriteString("\n\n")
	}
	sb.WriteString(s.HeaderLine)
	sb.WriteString("\n")
	if len(parts) > 0 {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(parts, "\n\n"))
		sb.WriteString("\n")
	}
	if after := strings.Trim(s.After, "\n"); after != "" {
		sb.WriteString("\n")
		sb.WriteString(after)
		sb.WriteString("\n")
	}
	return collapseBlankLines(sb.String())
}

func collapseBlankLines(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}

// Skeleton returns the document synthesised for a capability that has no
// main spec yet.
func Skeleton(capability, changeID string) string {
	return "# " + capability + " Specification\n\n" +
		"## Purpose\n" +
		"TBD - created by archiving change " + changeID + ". Update Purpose after archive.\n\n" +
		"## Requirements\n"
}
