package category

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/fold"
)

// Reserved keys in a taxonomy file. Any other key is a child category.
const (
	keyAliases     = "_aliases"
	keyDescription = "_description"
	keyIgnore      = "_ignore"
	keyParameters  = "_parameters"
	keyStructural  = "_structural"
)

// ParseYAML decodes a taxonomy file into root specs. Mapping order is kept,
// so children appear in the order they are written. A null value declares a
// leaf without metadata.
func ParseYAML(data []byte) ([]Spec, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "parse categories")
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	return decodeChildren(doc.Content[0], nil)
}

func decodeChildren(n *yaml.Node, path []string) ([]Spec, error) {
	if n.Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrCodeConfig, "categories: line %d: expected a mapping", n.Line)
	}
	var specs []Spec
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if strings.HasPrefix(key.Value, "_") {
			if path == nil {
				return nil, errors.New(errors.ErrCodeConfig, "categories: line %d: %q is not allowed at the top level", key.Line, key.Value)
			}
			continue
		}
		spec, err := decodeNode(key.Value, val, append(path, key.Value))
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func decodeNode(name string, n *yaml.Node, path []string) (Spec, error) {
	spec := Spec{Name: name}
	if isNull(n) {
		return spec, nil
	}
	if n.Kind != yaml.MappingNode {
		return spec, errors.New(errors.ErrCodeConfig,
			"category %s (line %d): expected a mapping or null", quotePath(path), n.Line)
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		var err error
		switch key.Value {
		case keyAliases:
			err = decodeStrings(val, &spec.Aliases)
		case keyDescription:
			err = val.Decode(&spec.Description)
		case keyIgnore:
			err = val.Decode(&spec.Ignore)
		case keyParameters:
			err = decodeStrings(val, &spec.Parameters)
		case keyStructural:
			err = val.Decode(&spec.Structural)
		default:
			if strings.HasPrefix(key.Value, "_") {
				err = errors.New(errors.ErrCodeConfig, "unknown key %q", key.Value)
			}
		}
		if err != nil {
			return spec, errors.Wrap(errors.ErrCodeConfig, err, "category %s (line %d)", quotePath(path), key.Line)
		}
	}

	children, err := decodeChildren(n, path)
	if err != nil {
		return spec, err
	}
	spec.Children = children
	return spec, nil
}

// decodeStrings accepts a list or a single scalar.
func decodeStrings(n *yaml.Node, out *[]string) error {
	if n.Kind == yaml.ScalarNode && !isNull(n) {
		*out = []string{n.Value}
		return nil
	}
	return n.Decode(out)
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

// AddAlias records alias on the category at path (root-to-node names) in the
// taxonomy file data and returns the rewritten file. Comments and key order
// are preserved. Callers rebuild the tree from the result; the running tree
// is never modified.
func AddAlias(data []byte, path []string, alias string) ([]byte, error) {
	if strings.TrimSpace(alias) == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "alias must not be empty")
	}
	if len(path) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "category path must not be empty")
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "parse categories")
	}
	if len(doc.Content) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "category %s not found", quotePath(path))
	}

	n := doc.Content[0]
	for _, name := range path {
		next := childNode(n, name)
		if next == nil {
			return nil, errors.New(errors.ErrCodeNotFound, "category %s not found", quotePath(path))
		}
		n = next
	}

	if isNull(n) {
		*n = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}
	if n.Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrCodeConfig, "category %s (line %d): expected a mapping or null", quotePath(path), n.Line)
	}

	aliases := mappingValue(n, keyAliases)
	switch {
	case aliases == nil:
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: keyAliases}
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		n.Content = append([]*yaml.Node{key, seq}, n.Content...)
		aliases = seq
	case aliases.Kind == yaml.ScalarNode:
		prev := *aliases
		*aliases = yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		if !isNull(&prev) {
			aliases.Content = []*yaml.Node{{Kind: yaml.ScalarNode, Tag: "!!str", Value: prev.Value}}
		}
	case aliases.Kind != yaml.SequenceNode:
		return nil, errors.New(errors.ErrCodeConfig, "category %s: %s must be a list", quotePath(path), keyAliases)
	}
	for _, a := range aliases.Content {
		if fold.Equal(a.Value, alias) {
			return data, nil
		}
	}
	aliases.Content = append(aliases.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: alias})

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode categories")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode categories")
	}
	return buf.Bytes(), nil
}

// childNode returns the value of the non-reserved key name in mapping n.
func childNode(n *yaml.Node, name string) *yaml.Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if !strings.HasPrefix(key, "_") && fold.Equal(key, name) {
			return n.Content[i+1]
		}
	}
	return nil
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
