// Package fold computes the lookup keys used by the category and parameter
// alias indices.
//
// Supplier data mixes compatibility characters (U+00B5 MICRO SIGN versus
// U+03BC GREEK SMALL LETTER MU, U+2126 OHM SIGN versus U+03A9) and
// inconsistent capitalization. Key folds both away so that an index lookup
// stays an exact map hit.
package fold

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Key returns the canonical lookup key for s: surrounding whitespace
// trimmed, NFKC-normalized and Unicode case-folded.
//
// A new Caser is created per call because cases.Caser is stateful and must
// not be shared between goroutines.
func Key(s string) string {
	s = norm.NFKC.String(strings.TrimSpace(s))
	return cases.Fold().String(s)
}

// Equal reports whether a and b have the same lookup key.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}
