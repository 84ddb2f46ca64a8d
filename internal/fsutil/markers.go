package fsutil

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// UpdateFileWithMarkers writes content between start and end in the file at
// path. A new file holds just the marked block. An existing file without
// markers gets the block prepended. An existing block is replaced in place,
// leaving text outside the markers untouched. Running it twice with the same
// content yields the same bytes.
func UpdateFileWithMarkers(path, content, start, end string) error {
	existing, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return WriteFileAtomic(path, []byte(start+"\n"+content+"\n"+end), 0o644)
	case err != nil:
		return fmt.Errorf("reading %s: %w", path, err)
	}

	merged, err := MergeMarkers(string(existing), content, start, end)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if merged == string(existing) {
		return nil
	}
	return WriteFileAtomic(path, []byte(merged), 0o644)
}

// MergeMarkers is the in-memory form of UpdateFileWithMarkers for an
// existing file. Markers count only when they sit alone on a line; inline
// mentions in prose are ignored.
func MergeMarkers(existing, content, start, end string) (string, error) {
	block := start + "\n" + content + "\n" + end

	si := markerIndex(existing, start, 0)
	from := 0
	if si >= 0 {
		from = si + len(start)
	}
	ei := markerIndex(existing, end, from)

	switch {
	case si >= 0 && ei >= 0:
		return existing[:si] + block + existing[ei+len(end):], nil
	case si < 0 && ei < 0:
		return block + "\n\n" + existing, nil
	default:
		return "", fmt.Errorf("%w: found start: %t, found end: %t", ErrInvalidMarkers, si >= 0, ei >= 0)
	}
}

// markerIndex returns the offset of the first occurrence of marker at or
// after from that is the only non-blank text on its line, or -1.
func markerIndex(s, marker string, from int) int {
	for from <= len(s) {
		i := strings.Index(s[from:], marker)
		if i < 0 {
			return -1
		}
		i += from
		lineStart := strings.LastIndexByte(s[:i], '\n') + 1
		lineEnd := len(s)
		if j := strings.IndexByte(s[i:], '\n'); j >= 0 {
			lineEnd = i + j
		}
		if strings.TrimSpace(s[lineStart:lineEnd]) == marker {
			return i
		}
		from = i + len(marker)
	}
	return -1
}

// HasMarkers reports whether content holds start and end, each alone on its
// line, in that order.
func HasMarkers(content, start, end string) bool {
	si := markerIndex(content, start, 0)
	if si < 0 {
		return false
	}
	return markerIndex(content, end, si+len(start)) >= 0
}
