package markdown

import (
	"errors"
	"fmt"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnterminatedFrontmatter indicates an opening frontmatter delimiter
// without a matching closing delimiter.
var ErrUnterminatedFrontmatter = errors.New("missing closing frontmatter delimiter")

// Frontmatter holds the decoded metadata block at the top of a document.
type Frontmatter struct {
	Format string // "yaml" or "toml"
	Values map[string]any
}

// SplitFrontmatter strips an optional YAML ("---") or TOML ("+++")
// frontmatter block from the start of content. A document without
// frontmatter returns a nil Frontmatter and the normalized content unchanged.
func SplitFrontmatter(content string) (*Frontmatter, string, error) {
	content = Normalize(content)
	var delim, format string
	switch {
	case strings.HasPrefix(content, "---\n"):
		delim, format = "---", "yaml"
	case strings.HasPrefix(content, "+++\n"):
		delim, format = "+++", "toml"
	default:
		return nil, content, nil
	}

	rest := content[len(delim)+1:]
	var raw, body string
	switch {
	case strings.HasPrefix(rest, delim+"\n") || rest == delim:
		body = strings.TrimPrefix(strings.TrimPrefix(rest, delim), "\n")
	default:
		idx := strings.Index(rest, "\n"+delim+"\n")
		if idx < 0 {
			if !strings.HasSuffix(rest, "\n"+delim) {
				return nil, "", fmt.Errorf("%s frontmatter: %w", delim, ErrUnterminatedFrontmatter)
			}
			idx = len(rest) - len(delim) - 1
		}
		raw = rest[:idx]
		body = strings.TrimPrefix(rest[idx+1+len(delim):], "\n")
	}

	values := map[string]any{}
	if strings.TrimSpace(raw) != "" {
		var err error
		if format == "yaml" {
			err = yaml.Unmarshal([]byte(raw), &values)
		} else {
			err = toml.Unmarshal([]byte(raw), &values)
		}
		if err != nil {
			return nil, "", fmt.Errorf("parsing %s frontmatter: %w", format, err)
		}
	}
	return &Frontmatter{Format: format, Values: values}, strings.TrimLeft(body, "\n"), nil
}
