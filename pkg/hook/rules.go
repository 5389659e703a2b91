package hook

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/parameter"
	"github.com/matzehuels/partimport/pkg/part"
	"github.com/matzehuels/partimport/pkg/units"
)

// File is the hooks.yaml document.
//
//	hooks:
//	  - builtin: trim-description
//	  - name: smd-resistors
//	    when:
//	      category: [Electronics, Passives, Resistors]
//	      parameter: {name: Package, match: "^(0402|0603|0805)"}
//	    actions:
//	      - append_category: SMD
//	      - set_parameter: {name: Mounting Type, value: Surface Mount}
//	      - set_description: "{manufacturer} {mpn} {param:Resistance}"
type File struct {
	Hooks []RuleSpec `yaml:"hooks"`
}

// RuleSpec declares one hook. Exactly one of Builtin or Actions is set.
type RuleSpec struct {
	Name    string    `yaml:"name"`
	Builtin string    `yaml:"builtin"`
	When    Condition `yaml:"when"`
	Actions []Action  `yaml:"actions"`
}

// Condition restricts a rule to matching parts. Empty fields match
// everything.
type Condition struct {
	// Category is a prefix of the part's category path, compared
	// case-insensitively.
	Category  []string    `yaml:"category"`
	Supplier  string      `yaml:"supplier"`
	Parameter *ParamMatch `yaml:"parameter"`
}

// ParamMatch matches a resolved parameter value against a regular
// expression.
type ParamMatch struct {
	Name  string `yaml:"name"`
	Match string `yaml:"match"`
}

// Action is one mutation. Exactly one field is set.
type Action struct {
	AppendCategory  string      `yaml:"append_category"`
	SetCategory     []string    `yaml:"set_category"`
	SetParameter    *NameValue  `yaml:"set_parameter"`
	RenameParameter *RenameSpec `yaml:"rename_parameter"`
	DeleteParameter string      `yaml:"delete_parameter"`
	SetDescription  string      `yaml:"set_description"`

	// unit is the canonical unit of the set_parameter target.
	unit string
}

// NameValue is the argument of set_parameter.
type NameValue struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// RenameSpec is the argument of rename_parameter.
type RenameSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// ParseYAML decodes hooks.yaml and compiles it against schema into hooks in
// file order. Unknown built-ins, unknown parameters, invalid expressions
// and malformed actions are config errors.
func ParseYAML(data []byte, schema *parameter.Schema) ([]Hook, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrCodeInvalidHook, err, "parse hooks")
	}
	return Compile(f.Hooks, schema)
}

// Compile turns rule specs into hooks. Parameter names in conditions and
// actions must be defined in schema; aliases are rewritten to the
// canonical name.
func Compile(specs []RuleSpec, schema *parameter.Schema) ([]Hook, error) {
	hooks := make([]Hook, 0, len(specs))
	for i, spec := range specs {
		h, err := compile(spec, schema)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidHook, err, "hook #%d", i+1)
		}
		hooks = append(hooks, h)
	}
	return hooks, nil
}

func compile(spec RuleSpec, schema *parameter.Schema) (Hook, error) {
	if spec.Builtin != "" {
		if len(spec.Actions) > 0 {
			return nil, fmt.Errorf("builtin %q cannot have actions", spec.Builtin)
		}
		h, ok := Lookup(spec.Builtin)
		if !ok {
			return nil, fmt.Errorf("unknown builtin %q (have %s)", spec.Builtin, strings.Join(Registered(), ", "))
		}
		if spec.Name == "" || spec.Name == spec.Builtin {
			return h, nil
		}
		return Func(spec.Name, h.Apply), nil
	}

	if spec.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if len(spec.Actions) == 0 {
		return nil, fmt.Errorf("%s: no actions", spec.Name)
	}
	canonical := func(name string) (*parameter.Definition, error) {
		def, ok := schema.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%s: parameter %q is not defined", spec.Name, name)
		}
		return def, nil
	}

	r := &rule{name: spec.Name, when: spec.When}
	if pm := spec.When.Parameter; pm != nil {
		if pm.Name == "" {
			return nil, fmt.Errorf("%s: when.parameter needs a name", spec.Name)
		}
		def, err := canonical(pm.Name)
		if err != nil {
			return nil, err
		}
		r.when.Parameter = &ParamMatch{Name: def.Name, Match: pm.Match}
		if pm.Match != "" {
			re, err := regexp.Compile(pm.Match)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", spec.Name, err)
			}
			r.match = re
		}
	}

	for i, a := range spec.Actions {
		if n := a.count(); n != 1 {
			return nil, fmt.Errorf("%s: action #%d sets %d operations, want 1", spec.Name, i+1, n)
		}
		switch {
		case a.SetParameter != nil:
			def, err := canonical(a.SetParameter.Name)
			if err != nil {
				return nil, err
			}
			a.SetParameter = &NameValue{Name: def.Name, Value: a.SetParameter.Value}
			a.unit = def.Unit
		case a.RenameParameter != nil:
			from, err := canonical(a.RenameParameter.From)
			if err != nil {
				return nil, err
			}
			to, err := canonical(a.RenameParameter.To)
			if err != nil {
				return nil, err
			}
			a.RenameParameter = &RenameSpec{From: from.Name, To: to.Name}
		case a.DeleteParameter != "":
			def, err := canonical(a.DeleteParameter)
			if err != nil {
				return nil, err
			}
			a.DeleteParameter = def.Name
		}
		r.actions = append(r.actions, a)
	}
	return r, nil
}

func (a *Action) count() int {
	n := 0
	for _, set := range []bool{
		a.AppendCategory != "",
		len(a.SetCategory) > 0,
		a.SetParameter != nil,
		a.RenameParameter != nil,
		a.DeleteParameter != "",
		a.SetDescription != "",
	} {
		if set {
			n++
		}
	}
	return n
}

type rule struct {
	name    string
	when    Condition
	match   *regexp.Regexp
	actions []Action
}

func (r *rule) Name() string { return r.name }

func (r *rule) Apply(p *part.Resolved) error {
	if !r.matches(p) {
		return nil
	}
	for _, a := range r.actions {
		if err := a.apply(p); err != nil {
			return err
		}
	}
	return nil
}

func (r *rule) matches(p *part.Resolved) bool {
	c := r.when
	if c.Supplier != "" && !strings.EqualFold(c.Supplier, p.Supplier) {
		return false
	}
	if len(c.Category) > len(p.CategoryPath) ||
		!slices.EqualFunc(c.Category, p.CategoryPath[:len(c.Category)], strings.EqualFold) {
		return false
	}
	if c.Parameter != nil {
		v, ok := p.Parameters[c.Parameter.Name]
		if !ok {
			return false
		}
		if r.match != nil && !r.match.MatchString(v.Text) {
			return false
		}
	}
	return true
}

func (a *Action) apply(p *part.Resolved) error {
	switch {
	case a.AppendCategory != "":
		p.CategoryPath = append(p.CategoryPath, a.AppendCategory)
	case len(a.SetCategory) > 0:
		p.CategoryPath = slices.Clone(a.SetCategory)
	case a.SetParameter != nil:
		v, err := expand(a.SetParameter.Value, p)
		if err != nil {
			return err
		}
		name := a.SetParameter.Name
		value := units.Verbatim(v)
		if a.unit != "" {
			if value, err = units.Normalize(v, a.unit); err != nil {
				p.Warn(fmt.Sprintf("%s: %v", name, err))
			}
		}
		p.Parameters[name] = value
	case a.RenameParameter != nil:
		v, ok := p.Parameters[a.RenameParameter.From]
		if !ok {
			return nil
		}
		delete(p.Parameters, a.RenameParameter.From)
		p.Parameters[a.RenameParameter.To] = v
	case a.DeleteParameter != "":
		delete(p.Parameters, a.DeleteParameter)
	case a.SetDescription != "":
		v, err := expand(a.SetDescription, p)
		if err != nil {
			return err
		}
		p.Description = v
	}
	return nil
}

var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// expand substitutes {mpn}, {sku}, {manufacturer}, {supplier},
// {description} and {param:Name} in tmpl. A missing parameter is an error.
func expand(tmpl string, p *part.Resolved) (string, error) {
	var err error
	out := placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := m[1 : len(m)-1]
		if name, ok := strings.CutPrefix(key, "param:"); ok {
			v, found := p.Parameters[name]
			if !found && err == nil {
				err = fmt.Errorf("parameter %q is not set", name)
			}
			return v.Text
		}
		switch key {
		case "mpn":
			return p.MPN
		case "sku":
			return p.SKU
		case "manufacturer":
			return p.Manufacturer
		case "supplier":
			return p.Supplier
		case "description":
			return p.Description
		}
		if err == nil {
			err = fmt.Errorf("unknown placeholder %s", m)
		}
		return m
	})
	return out, err
}
