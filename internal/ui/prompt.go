package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/papapumpkin/openspec/internal/ansi"
)

// maxAttempts bounds how often a prompt re-asks after unusable input.
const maxAttempts = 3

// ErrNoAnswer is returned when a prompt gets no usable answer.
var ErrNoAnswer = errors.New("no answer")

// Prompter asks yes/no and pick-one questions on a line-oriented terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	pal ansi.Palette
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer, pal ansi.Palette) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, pal: pal}
}

// Confirm asks a yes/no question. An empty answer or end of input picks
// defaultYes.
func (p *Prompter) Confirm(question string, defaultYes bool) (bool, error) {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	for range maxAttempts {
		fmt.Fprintf(p.out, "%s %s %s ", p.pal.Paint("?", ansi.Cyan, ansi.Bold), question, p.pal.Paint(hint, ansi.Dim))
		line, err := p.readLine()
		if err != nil && line == "" {
			fmt.Fprintln(p.out)
			if errors.Is(err, io.EOF) {
				return defaultYes, nil
			}
			return false, err
		}
		switch strings.ToLower(line) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
	return false, ErrNoAnswer
}

// Select lists options and returns the one picked by number or by name.
func (p *Prompter) Select(question string, options []string) (string, error) {
	if len(options) == 0 {
		return "", ErrNoAnswer
	}
	fmt.Fprintf(p.out, "%s %s\n", p.pal.Paint("?", ansi.Cyan, ansi.Bold), question)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %s %s\n", p.pal.Paint(strconv.Itoa(i+1)+")", ansi.Dim), opt)
	}
	for range maxAttempts {
		fmt.Fprintf(p.out, "%s ", p.pal.Paint(">", ansi.Cyan))
		line, err := p.readLine()
		if n, convErr := strconv.Atoi(line); convErr == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		for _, opt := range options {
			if line != "" && line == opt {
				return opt, nil
			}
		}
		if err != nil {
			fmt.Fprintln(p.out)
			return "", fmt.Errorf("%w: %w", ErrNoAnswer, err)
		}
	}
	return "", ErrNoAnswer
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	return strings.TrimSpace(line), err
}
