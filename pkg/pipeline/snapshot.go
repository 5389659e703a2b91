package pipeline

import (
	"fmt"
	"os"
	"time"

	"github.com/matzehuels/partimport/pkg/category"
	"github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/hook"
	"github.com/matzehuels/partimport/pkg/parameter"
)

// Snapshot is one consistent configuration: tree, schema and hooks, with
// their resolvers. It is immutable and safe for concurrent use.
type Snapshot struct {
	Tree       *category.Tree
	Schema     *parameter.Schema
	Hooks      []hook.Hook
	Categories *category.Resolver
	Parameters *parameter.Resolver

	Sources  Sources
	LoadedAt time.Time
}

// NewSnapshot assembles a snapshot from already built parts.
func NewSnapshot(tree *category.Tree, schema *parameter.Schema, hooks []hook.Hook) *Snapshot {
	return &Snapshot{
		Tree:       tree,
		Schema:     schema,
		Hooks:      hooks,
		Categories: category.NewResolver(tree),
		Parameters: parameter.NewResolver(schema),
		LoadedAt:   time.Now(),
	}
}

// Sources names the configuration files of a snapshot. Hooks is optional.
type Sources struct {
	Categories string
	Parameters string
	Hooks      string
}

// Files returns the non-empty paths.
func (s Sources) Files() []string {
	var out []string
	for _, p := range []string{s.Categories, s.Parameters, s.Hooks} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads and builds a snapshot from src. Every failure is a config
// error (see [errors.IsConfig]).
func Load(src Sources) (*Snapshot, error) {
	cats, err := readConfig(src.Categories)
	if err != nil {
		return nil, err
	}
	params, err := readConfig(src.Parameters)
	if err != nil {
		return nil, err
	}
	var hooks []byte
	if src.Hooks != "" {
		if hooks, err = readConfig(src.Hooks); err != nil {
			return nil, err
		}
	}

	s, err := Parse(cats, params, hooks)
	if err != nil {
		return nil, err
	}
	s.Sources = src
	return s, nil
}

// Parse builds a snapshot from file contents. hooks may be empty.
// Errors keep the code of the failing component, such as
// ErrCodeDuplicateAlias.
func Parse(categories, parameters, hooks []byte) (*Snapshot, error) {
	paramSpecs, err := parameter.ParseYAML(parameters)
	if err != nil {
		return nil, fmt.Errorf("parameters: %w", err)
	}
	schema, err := parameter.BuildSchema(paramSpecs)
	if err != nil {
		return nil, fmt.Errorf("parameters: %w", err)
	}

	catSpecs, err := category.ParseYAML(categories)
	if err != nil {
		return nil, err
	}
	tree, err := category.Build(catSpecs, schema)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}

	var hs []hook.Hook
	if len(hooks) > 0 {
		if hs, err = hook.ParseYAML(hooks, schema); err != nil {
			return nil, fmt.Errorf("hooks: %w", err)
		}
	}
	return NewSnapshot(tree, schema, hs), nil
}

func readConfig(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeConfig, "no configuration file given")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "read %s", path)
	}
	return data, nil
}
