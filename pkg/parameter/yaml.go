package parameter

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/fold"
)

// ParseYAML decodes a parameters file into specs, preserving declaration
// order:
//
//	Input Voltage:
//	  _aliases: [Voltage - Input, Voltage - Supply]
//	  _unit: V
//	Package:
//
// A null value declares a parameter without metadata. Unknown "_" keys and
// any non-mapping value are config errors.
func ParseYAML(data []byte) ([]Spec, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "parse parameters")
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrCodeConfig, "parameters: line %d: expected a mapping", root.Line)
	}

	specs := make([]Spec, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		spec := Spec{Name: key.Value}
		if err := decodeMeta(val, &spec); err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfig, err, "parameter %q (line %d)", key.Value, key.Line)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func decodeMeta(n *yaml.Node, spec *Spec) error {
	if n.Tag == "!!null" {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return errors.New(errors.ErrCodeConfig, "expected a mapping or null")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		var err error
		switch key.Value {
		case "_aliases":
			err = val.Decode(&spec.Aliases)
		case "_description":
			err = val.Decode(&spec.Description)
		case "_unit":
			err = val.Decode(&spec.Unit)
		default:
			err = errors.New(errors.ErrCodeConfig, "unknown key %q", key.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// AddAlias records alias on the parameter name in the parameters file data
// and returns the rewritten file. Comments and key order are preserved.
// Adding an alias the parameter already has returns data unchanged.
func AddAlias(data []byte, name, alias string) ([]byte, error) {
	if strings.TrimSpace(alias) == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "alias must not be empty")
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "parse parameters")
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrCodeNotFound, "parameter %q not found", name)
	}

	root := doc.Content[0]
	var n *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if fold.Equal(root.Content[i].Value, name) {
			n = root.Content[i+1]
			break
		}
	}
	if n == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "parameter %q not found", name)
	}
	if n.Tag == "!!null" {
		*n = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}
	if n.Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrCodeConfig, "parameter %q (line %d): expected a mapping or null", name, n.Line)
	}

	var aliases *yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == "_aliases" {
			aliases = n.Content[i+1]
		}
	}
	switch {
	case aliases == nil:
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "_aliases"}
		aliases = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		n.Content = append([]*yaml.Node{key, aliases}, n.Content...)
	case aliases.Kind != yaml.SequenceNode:
		return nil, errors.New(errors.ErrCodeConfig, "parameter %q: _aliases must be a list", name)
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
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode parameters")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode parameters")
	}
	return buf.Bytes(), nil
}
