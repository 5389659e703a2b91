package parameter

import (
	"cmp"
	"maps"
	"slices"

	"github.com/agnivade/levenshtein"

	"github.com/matzehuels/partimport/pkg/fold"
)

// Candidate is a raw supplier parameter offered as the value of a
// parameter that could not be matched by name.
type Candidate struct {
	Name  string  // raw supplier name
	Value string  // raw supplier value
	Score float64 // 0..1, higher is closer
}

// Suggest ranks the raw parameters by similarity to the parameter name and
// returns at most n of them, best first.
//
// Each raw pair is scored by its best partial match, on either its name or
// its value, against the parameter's name and aliases. Ties keep the raw
// names in lexical order.
func (r *Resolver) Suggest(name string, raw map[string]string, n int) []Candidate {
	if n <= 0 || len(raw) == 0 {
		return nil
	}
	terms := []string{fold.Key(name)}
	if def, ok := r.schema.Lookup(name); ok {
		terms = terms[:0]
		for _, t := range append([]string{def.Name}, def.Aliases...) {
			terms = append(terms, fold.Key(t))
		}
	}

	out := make([]Candidate, 0, len(raw))
	for _, rawName := range slices.Sorted(maps.Keys(raw)) {
		value := raw[rawName]
		var best float64
		for _, term := range terms {
			best = max(best, partialRatio(term, fold.Key(rawName)), partialRatio(term, fold.Key(value)))
		}
		out = append(out, Candidate{Name: rawName, Value: value, Score: best})
	}

	slices.SortStableFunc(out, func(a, b Candidate) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// partialRatio is the best Levenshtein similarity of the shorter of a and b
// against any window of the same length in the longer one.
func partialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		if len(long) == 0 {
			return 1
		}
		return 0
	}

	s := string(short)
	var best float64
	for i := 0; i+len(short) <= len(long); i++ {
		d := levenshtein.ComputeDistance(s, string(long[i:i+len(short)]))
		best = max(best, 1-float64(d)/float64(len(short)))
		if best == 1 {
			break
		}
	}
	return best
}
