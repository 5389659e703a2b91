// Package parameter implements the parameter schema and the resolver that
// maps raw supplier parameter names and values onto it.
//
// A [Schema] is built once from configuration and is read-only afterwards,
// so it may be shared across goroutines without locking.
package parameter

import (
	"slices"

	"github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/fold"
	"github.com/matzehuels/partimport/pkg/units"
)

// Definition is a user-defined parameter.
type Definition struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
}

// Spec is the declarative description of one parameter, as read from the
// parameters file.
type Spec struct {
	Name        string
	Description string
	Unit        string
	Aliases     []string
}

// Schema is the registry of parameter definitions with a precomputed
// name/alias index.
type Schema struct {
	defs  []Definition
	index map[string]int // folded name or alias -> defs index
}

// BuildSchema validates specs and builds the schema.
//
// It fails with a config error (see [errors.IsConfig]) when a name is
// invalid or when a name or alias collides with any other name or alias
// in the schema, compared case-insensitively.
func BuildSchema(specs []Spec) (*Schema, error) {
	s := &Schema{
		defs:  make([]Definition, 0, len(specs)),
		index: make(map[string]int, len(specs)*2),
	}

	for _, spec := range specs {
		if err := errors.ValidateName(spec.Name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfig, err, "parameter %q", spec.Name)
		}
		i := len(s.defs)
		def := Definition{
			Name:        spec.Name,
			Description: spec.Description,
			Unit:        spec.Unit,
			Aliases:     slices.Clone(spec.Aliases),
		}
		if def.Description == "" {
			def.Description = def.Name
		}
		if def.Unit != "" {
			def.Unit = units.Canonical(def.Unit)
		}

		if err := s.claim(def.Name, i, def.Name); err != nil {
			return nil, err
		}
		for _, alias := range def.Aliases {
			if fold.Equal(alias, def.Name) {
				continue
			}
			if err := s.claim(alias, i, def.Name); err != nil {
				return nil, err
			}
		}
		s.defs = append(s.defs, def)
	}
	return s, nil
}

func (s *Schema) claim(token string, i int, name string) error {
	key := fold.Key(token)
	if key == "" {
		return errors.New(errors.ErrCodeInvalidTree, "parameter %q has an empty alias", name)
	}
	if owner, ok := s.index[key]; ok && owner != i {
		return errors.New(errors.ErrCodeDuplicateAlias,
			"%q is used by both parameter %q and parameter %q", token, s.defs[owner].Name, name)
	}
	s.index[key] = i
	return nil
}

// Lookup finds a definition by name or alias, case-insensitively.
func (s *Schema) Lookup(token string) (*Definition, bool) {
	i, ok := s.index[fold.Key(token)]
	if !ok {
		return nil, false
	}
	return &s.defs[i], true
}

// Has reports whether name is the canonical name of a definition.
func (s *Schema) Has(name string) bool {
	def, ok := s.Lookup(name)
	return ok && def.Name == name
}

// Definitions returns all definitions in declaration order.
func (s *Schema) Definitions() []Definition {
	return slices.Clone(s.defs)
}

// Len returns the number of definitions.
func (s *Schema) Len() int { return len(s.defs) }
