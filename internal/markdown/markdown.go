// Package markdown splits loosely structured markdown documents into headed
// sections. It is not a CommonMark parser: it only understands ATX headings,
// fenced code blocks (so headings inside fences are ignored), and the small
// set of section titles the OpenSpec document format relies on.
package markdown

import (
	"regexp"
	"strings"
)

var headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*$`)

// Normalize converts CRLF and lone CR line endings to LF.
func Normalize(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}

// Lines normalizes content and splits it into lines.
func Lines(content string) []string {
	return strings.Split(Normalize(content), "\n")
}

// Heading reports whether line is an ATX heading and returns its level and
// trimmed title text. Closing hashes ("## Title ##") are not stripped.
func Heading(line string) (level int, title string, ok bool) {
	m := headingPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	return len(m[1]), strings.TrimSpace(m[2]), true
}

// IsFence reports whether line opens or closes a fenced code block.
func IsFence(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "```") || strings.HasPrefix(t, "~~~")
}

// HeadingLines returns, for every line, whether it is a heading outside a
// fenced code block. Callers that scan lines with their own patterns use it to
// skip example markdown quoted inside fences.
func HeadingLines(lines []string) []bool {
	out := make([]bool, len(lines))
	inFence := false
	for i, line := range lines {
		if IsFence(line) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		_, _, out[i] = Heading(line)
	}
	return out
}

// Section is one headed span of a document. Body holds every line between
// the heading and the next heading of equal or lower level, so deeper
// headings stay inside Body until a caller splits it at the next level.
type Section struct {
	Level  int
	Header string
	Kind   Kind
	Body   []string
}

// Text returns the section body joined with newlines and trimmed.
func (s Section) Text() string {
	return strings.TrimSpace(strings.Join(s.Body, "\n"))
}

// Split returns the sections of exactly the given heading level, in document
// order. Headings of a lower level close the current section without opening
// a new one; deeper headings are kept in the body.
func Split(content string, level int) []Section {
	return SplitLines(Lines(content), level)
}

// SplitLines is Split over pre-split, already normalized lines.
func SplitLines(lines []string, level int) []Section {
	var (
		sections []Section
		current  *Section
	)
	headings := HeadingLines(lines)
	for i, line := range lines {
		if headings[i] {
			lvl, title, _ := Heading(line)
			if lvl <= level {
				if current != nil {
					sections = append(sections, *current)
					current = nil
				}
				if lvl == level {
					current = &Section{Level: lvl, Header: title, Kind: KindOf(title)}
				}
				continue
			}
		}
		if current != nil {
			current.Body = append(current.Body, line)
		}
	}
	if current != nil {
		sections = append(sections, *current)
	}
	return sections
}

// Subsections splits the section body at the given deeper level.
func (s Section) Subsections(level int) []Section {
	return SplitLines(s.Body, level)
}

// Preamble returns the body lines that precede the first heading of the given
// level or shallower.
func (s Section) Preamble(level int) []string {
	headings := HeadingLines(s.Body)
	for i, line := range s.Body {
		if !headings[i] {
			continue
		}
		if lvl, _, _ := Heading(line); lvl <= level {
			return s.Body[:i]
		}
	}
	return s.Body
}

// Find returns the first section of the given kind.
func Find(sections []Section, kind Kind) (Section, bool) {
	for _, s := range sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return Section{}, false
}
