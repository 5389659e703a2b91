// Package units parses supplier parameter values such as "5mV", "4,7 µF" or
// "10kOhm" and rewrites them into a parameter's canonical unit.
//
// Magnitudes are kept as [decimal.Decimal] so that prefix scaling is exact:
// "5mV" normalized to "V" yields exactly 0.005, not 0.005000000000000001.
//
// The contract is deliberately forgiving. [Normalize] never loses data: when
// a value cannot be interpreted, the raw string is returned unchanged together
// with an error the caller records as a warning.
package units

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrNoNumber is returned when a value contains digits but does not start
	// with a numeric magnitude (e.g. "approx. 5V").
	ErrNoNumber = errors.New("no leading numeric magnitude")

	// ErrUnknownUnit is returned when the suffix after the magnitude is not
	// the expected unit, optionally preceded by an SI prefix.
	ErrUnknownUnit = errors.New("unrecognized unit")
)

// Value is a parameter value after normalization.
//
// Text is what gets written to the inventory system. For normalized values
// it is "<magnitude> <unit>"; otherwise it equals Raw.
type Value struct {
	Raw       string           `json:"raw"`
	Text      string           `json:"text"`
	Magnitude *decimal.Decimal `json:"magnitude,omitempty"`
	Unit      string           `json:"unit,omitempty"`
}

// Verbatim wraps s as a value that was not unit-normalized.
func Verbatim(s string) Value {
	return Value{Raw: s, Text: s}
}

// String returns the display text.
func (v Value) String() string { return v.Text }

// Normalized reports whether the value carries a parsed magnitude.
func (v Value) Normalized() bool { return v.Magnitude != nil }

// prefix is an SI prefix symbol with its power of ten. Only bare prefixes
// may stand without the unit, as in "10K" for a resistance.
type prefix struct {
	symbol string
	exp    int32
	bare   bool
}

// prefixes is ordered so that multi-character symbols are tried first.
// "u" and "K" are accepted spellings found in supplier data for micro and kilo.
var prefixes = []prefix{
	{"da", 1, false},
	{"Y", 24, false}, {"Z", 21, false}, {"E", 18, false}, {"P", 15, false},
	{"T", 12, false}, {"G", 9, true}, {"M", 6, true},
	{"k", 3, true}, {"K", 3, true}, {"h", 2, false},
	{"d", -1, false}, {"c", -2, false}, {"m", -3, true},
	{"μ", -6, true}, {"u", -6, true}, {"n", -9, true}, {"p", -12, true},
	{"f", -15, false}, {"a", -18, false}, {"z", -21, false}, {"y", -24, false},
}

// unitAliases maps spellings seen in supplier data to a canonical symbol.
// Keys are NFKC-normalized, so U+2126 OHM SIGN is already U+03A9 here.
var unitAliases = map[string]string{
	"ohm":  "Ω",
	"ohms": "Ω",
	"Ohm":  "Ω",
	"Ohms": "Ω",
	"OHM":  "Ω",
	"sec":  "s",
	"Sec":  "s",
	"hz":   "Hz",
	"HZ":   "Hz",
	"deg":  "°",
}

var (
	numberRe = regexp.MustCompile(`^([+-]?(?:\d+(?:[.,]\d+)?|[.,]\d+)(?:[eE][+-]?\d+)?)\s*(.*)$`)
	// thousandsRe matches a comma that may be a thousands separator.
	thousandsRe = regexp.MustCompile(`\d,\d{3}(?:[eE]|$)`)
)

// Canonical returns the canonical spelling of a unit symbol.
func Canonical(unit string) string {
	u := norm.NFKC.String(strings.TrimSpace(unit))
	if c, ok := unitAliases[u]; ok {
		return c
	}
	return u
}

// Normalize rewrites raw into unit.
//
// Outcomes:
//   - raw has no digits at all: returned verbatim, nil error
//   - raw is "<number>[ ][prefix]<unit>" or a bare "<number>[prefix]": the
//     scaled magnitude in unit, nil error. A single comma is a decimal
//     point unless exactly three digits follow it ("1,000" is ambiguous).
//     Bare prefixes are limited to G, M, k, K, m, µ, u, n and p.
//   - anything else: returned verbatim with an error wrapping [ErrNoNumber]
//     or [ErrUnknownUnit]
func Normalize(raw, unit string) (Value, error) {
	v := Verbatim(raw)
	s := norm.NFKC.String(strings.TrimSpace(raw))
	if !strings.ContainsFunc(s, unicode.IsDigit) {
		return v, nil
	}

	m := numberRe.FindStringSubmatch(s)
	if m == nil {
		return v, fmt.Errorf("%w in %q", ErrNoNumber, raw)
	}
	if thousandsRe.MatchString(m[1]) {
		return v, fmt.Errorf("%w in %q: ambiguous comma", ErrNoNumber, raw)
	}
	mag, err := decimal.NewFromString(strings.Replace(m[1], ",", ".", 1))
	if err != nil {
		return v, fmt.Errorf("%w in %q: %v", ErrNoNumber, raw, err)
	}

	exp, err := scale(strings.TrimSpace(m[2]), unit)
	if err != nil {
		return v, fmt.Errorf("%q: %w", raw, err)
	}

	n := mag.Shift(exp)
	v.Magnitude = &n
	v.Unit = unit
	v.Text = n.String() + " " + unit
	return v, nil
}

// scale returns the power of ten that converts suffix into unit.
func scale(suffix, unit string) (int32, error) {
	target := Canonical(unit)
	if suffix == "" || Canonical(suffix) == target {
		return 0, nil
	}
	for _, p := range prefixes {
		rest, ok := strings.CutPrefix(suffix, p.symbol)
		if !ok {
			continue
		}
		if (rest == "" && p.bare) || (rest != "" && Canonical(rest) == target) {
			return p.exp, nil
		}
	}
	return 0, fmt.Errorf("%w %q (want %s)", ErrUnknownUnit, suffix, unit)
}
