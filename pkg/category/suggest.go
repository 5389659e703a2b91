package category

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/matzehuels/partimport/pkg/fold"
)

// Suggestion is a candidate category for a path that did not resolve.
type Suggestion struct {
	ID    ID
	Path  []string
	Score float64 // 0..1, higher is closer
}

// Suggest ranks assignable categories by similarity to path and returns at
// most n of them, best first.
//
// The search terms are the path's last segment and its last two segments
// joined by a space. Each category is scored against its name, its aliases
// and its own last two path components; the best pairing counts. Ties keep
// tree order.
func (r *Resolver) Suggest(path []string, n int) []Suggestion {
	if len(path) == 0 || n <= 0 {
		return nil
	}
	terms := []string{
		fold.Key(path[len(path)-1]),
		fold.Key(strings.Join(path[max(0, len(path)-2):], " ")),
	}

	t := r.tree
	var out []Suggestion
	for node := range t.Walk() {
		if !t.Assignable(node.ID) {
			continue
		}
		full := t.PathOf(node.ID)
		names := append([]string{node.Name, strings.Join(full[max(0, len(full)-2):], " ")}, node.Aliases...)

		var best float64
		for _, name := range names {
			key := fold.Key(name)
			for _, term := range terms {
				best = max(best, ratio(term, key))
			}
		}
		out = append(out, Suggestion{ID: node.ID, Path: full, Score: best})
	}

	slices.SortStableFunc(out, func(a, b Suggestion) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ratio is the Levenshtein similarity of a and b in [0, 1].
func ratio(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
