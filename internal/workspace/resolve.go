package workspace

import (
	"sort"
	"strings"
)

// ItemType says whether an item id names a change or a spec.
type ItemType string

// Item types accepted by --type.
const (
	TypeChange ItemType = "change"
	TypeSpec   ItemType = "spec"
)

// Match is the outcome of resolving an item id against the workspace.
type Match struct {
	Change bool
	Spec   bool
}

// Ambiguous reports whether the id names both a change and a spec.
func (m Match) Ambiguous() bool { return m.Change && m.Spec }

// Found reports whether the id names anything.
func (m Match) Found() bool { return m.Change || m.Spec }

// Resolve looks id up as both an active change and a main spec.
func (w *Workspace) Resolve(id string) Match {
	return Match{Change: w.HasChange(id), Spec: w.HasSpec(id)}
}

// Suggest returns up to limit candidates closest to id by edit distance,
// nearest first. Ties keep name order.
func Suggest(id string, candidates []string, limit int) []string {
	type scored struct {
		name string
		dist int
	}
	hits := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		hits = append(hits, scored{c, Levenshtein(strings.ToLower(id), strings.ToLower(c))})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].name < hits[j].name
	})
	out := []string{}
	for i := 0; i < len(hits) && i < limit; i++ {
		out = append(out, hits[i].name)
	}
	return out
}

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
