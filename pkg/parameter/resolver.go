package parameter

import (
	"slices"
	"strings"

	"github.com/matzehuels/partimport/pkg/units"
)

// SkipReason explains why a raw parameter was not mapped. Skipping is a
// normal outcome: suppliers report many parameters that are irrelevant to a
// given category.
type SkipReason string

const (
	// SkipUnknown means no definition has the raw name as name or alias.
	SkipUnknown SkipReason = "unknown"
	// SkipNotApplicable means the definition exists but is not in the
	// category's effective parameter set.
	SkipNotApplicable SkipReason = "not_applicable"
	// SkipEmpty means the value was empty after sanitization (e.g. "-").
	SkipEmpty SkipReason = "empty"
	// SkipDuplicate means an earlier raw parameter already supplied a
	// value for the same definition. The first one wins.
	SkipDuplicate SkipReason = "duplicate"
)

// Set is a set of canonical parameter names.
type Set map[string]struct{}

// NewSet returns a set holding names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Outcome is the result of resolving one raw parameter.
type Outcome struct {
	Definition *Definition
	Value      units.Value
	Skipped    SkipReason
	// Warning is set when unit normalization failed and Value holds the
	// sanitized raw string instead.
	Warning string
}

// OK reports whether the parameter was mapped.
func (o Outcome) OK() bool { return o.Skipped == "" }

// Resolver maps raw supplier parameters onto a [Schema].
type Resolver struct {
	schema *Schema
}

// NewResolver creates a resolver over schema.
func NewResolver(schema *Schema) *Resolver {
	return &Resolver{schema: schema}
}

// Resolve looks rawName up by name or alias and, if the definition is in
// allowed, sanitizes rawValue and normalizes it into the definition's unit.
func (r *Resolver) Resolve(rawName, rawValue string, allowed Set) Outcome {
	def, ok := r.schema.Lookup(rawName)
	if !ok {
		return Outcome{Skipped: SkipUnknown}
	}
	if !allowed.Has(def.Name) {
		return Outcome{Definition: def, Skipped: SkipNotApplicable}
	}
	return r.value(def, rawValue)
}

// ResolveAs sanitizes and normalizes rawValue for the parameter name, as
// chosen by a user rather than matched from the supplier's name.
func (r *Resolver) ResolveAs(name, rawValue string) Outcome {
	def, ok := r.schema.Lookup(name)
	if !ok {
		return Outcome{Skipped: SkipUnknown}
	}
	return r.value(def, rawValue)
}

func (r *Resolver) value(def *Definition, rawValue string) Outcome {
	value := Sanitize(rawValue)
	if value == "" {
		return Outcome{Definition: def, Skipped: SkipEmpty}
	}
	if def.Unit == "" {
		return Outcome{Definition: def, Value: units.Verbatim(value)}
	}

	v, err := units.Normalize(value, def.Unit)
	out := Outcome{Definition: def, Value: v}
	if err != nil {
		out.Warning = err.Error()
	}
	return out
}

var sanitizer = strings.NewReplacer(
	"±", "",
	"ohms", "ohm",
	"Ohms", "ohm",
	"Ohm", "ohm",
)

// Sanitize cleans a raw supplier value: surrounding whitespace is trimmed,
// a lone "-" (suppliers' placeholder for "not applicable") becomes empty,
// "±" is dropped and the "Ohm"/"ohms" spellings become "ohm".
func Sanitize(value string) string {
	value = strings.TrimSpace(value)
	if value == "-" {
		return ""
	}
	return strings.TrimSpace(sanitizer.Replace(value))
}
