package cli

import (
	"os"

	"github.com/matzehuels/partimport/pkg/category"
	"github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/parameter"
)

// learnAlias adds alias to the category at path in the taxonomy file. The
// running engine keeps its snapshot; the alias applies from the next load.
func learnAlias(file string, tree *category.Tree, path []string, alias string) error {
	if id, ok := tree.Find(alias); ok {
		return errors.New(errors.ErrCodeDuplicateAlias, "%q already names %s", alias, category.JoinPath(tree.PathOf(id)))
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfig, err, "read %s", file)
	}
	out, err := category.AddAlias(data, path, alias)
	if err != nil {
		return err
	}
	if err := os.WriteFile(file, out, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, err, "write %s", file)
	}
	return nil
}

// learnParameterAlias adds alias to the parameter name in the parameters
// file.
func learnParameterAlias(file string, schema *parameter.Schema, name, alias string) error {
	if def, ok := schema.Lookup(alias); ok {
		return errors.New(errors.ErrCodeDuplicateAlias, "%q already names parameter %s", alias, def.Name)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfig, err, "read %s", file)
	}
	out, err := parameter.AddAlias(data, name, alias)
	if err != nil {
		return err
	}
	if err := os.WriteFile(file, out, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, err, "write %s", file)
	}
	return nil
}
