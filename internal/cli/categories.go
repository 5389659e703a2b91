package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/partimport/pkg/category"
	"github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/pipeline"
)

// categoriesCommand creates the categories command and its subcommands.
func (c *CLI) categoriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Inspect the category taxonomy",
	}

	cmd.AddCommand(c.categoriesTreeCommand())
	cmd.AddCommand(c.categoriesFindCommand())
	cmd.AddCommand(c.categoriesSuggestCommand())
	cmd.AddCommand(c.categoriesGraphCommand())
	cmd.AddCommand(c.categoriesAliasCommand())

	return cmd
}

func (c *CLI) categoriesTreeCommand() *cobra.Command {
	var opts treeOptions

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the taxonomy as a tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.loadSnapshot()
			if err != nil {
				return err
			}
			writeTree(cmd.OutOrStdout(), snap.Tree, opts)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Aliases, "aliases", "a", false, "show aliases")
	cmd.Flags().BoolVarP(&opts.Parameters, "parameters", "p", false, "show the parameters each category adds")

	return cmd
}

func (c *CLI) categoriesFindCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "find <name-or-alias>",
		Short: "Look a category up by name or alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.loadSnapshot()
			if err != nil {
				return err
			}
			t := snap.Tree
			id, ok := t.Find(args[0])
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "no category named %q", args[0])
			}
			w := cmd.OutOrStdout()
			writeKeyValue(w, "category", category.JoinPath(t.PathOf(id)))
			writeKeyValue(w, "assignable", fmt.Sprint(t.Assignable(id)))
			writeKeyValue(w, "parameters", strings.Join(t.EffectiveParameters(id), ", "))
			return nil
		},
	}
}

func (c *CLI) categoriesSuggestCommand() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "suggest <supplier category path>",
		Short: "Rank categories for a supplier category path",
		Example: `  partimport categories suggest "Circuit Protection/TVS Diodes"
  partimport categories suggest Capacitors Tantalum -n 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.loadSnapshot()
			if err != nil {
				return err
			}
			path := args
			if len(args) == 1 {
				path = splitPath(args[0])
			}
			if res := snap.Categories.Resolve(path); res.Resolved() {
				printInfo("Resolves to %s", StyleHighlight.Render(category.JoinPath(snap.Tree.PathOf(res.ID))))
			}
			suggestions := snap.Categories.Suggest(path, n)
			if len(suggestions) == 0 {
				printWarning("No suggestions")
				return nil
			}
			writeSuggestions(cmd.OutOrStdout(), suggestions)
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "count", "n", pipeline.DefaultSuggestions, "number of suggestions")

	return cmd
}

func (c *CLI) categoriesGraphCommand() *cobra.Command {
	var (
		output string
		opts   category.DOTOptions
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the taxonomy with Graphviz",
		Long: `Graph writes the taxonomy as a Graphviz graph. The format follows the
output extension: .dot writes the DOT source, .svg renders it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.loadSnapshot()
			if err != nil {
				return err
			}
			dot := snap.Tree.DOT(opts)

			var data []byte
			switch ext := strings.ToLower(filepath.Ext(output)); ext {
			case ".dot", ".gv":
				data = []byte(dot)
			case ".svg":
				spinner := newSpinnerWithContext(cmd.Context(), "Rendering...")
				spinner.Start()
				data, err = category.RenderSVG(cmd.Context(), dot)
				spinner.Stop()
				if err != nil {
					return err
				}
			default:
				return errors.New(errors.ErrCodeUnsupported, "unsupported graph format %q (want .dot or .svg)", ext)
			}

			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Rendered %d categories", snap.Tree.Len())
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "categories.svg", "output file (.svg or .dot)")
	cmd.Flags().BoolVarP(&opts.Aliases, "aliases", "a", false, "label categories with their aliases")
	cmd.Flags().BoolVarP(&opts.Parameters, "parameters", "p", false, "label categories with their parameters")

	return cmd
}

func (c *CLI) categoriesAliasCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "alias <category path> <alias>",
		Short:   "Add an alias to a category in the taxonomy file",
		Example: `  partimport categories alias "Passives/Capacitors" "Multilayer Ceramic Capacitors MLCC - SMD/SMT"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.loadSnapshot()
			if err != nil {
				return err
			}
			path := splitPath(args[0])
			id, ok := snap.Tree.FindPath(path)
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "category %s not found", category.JoinPath(path))
			}
			path = snap.Tree.PathOf(id)
			if err := learnAlias(snap.Sources.Categories, snap.Tree, path, args[1]); err != nil {
				return err
			}
			printSuccess("Added alias %q to %s", args[1], StyleHighlight.Render(category.JoinPath(path)))
			printFile(snap.Sources.Categories)
			return nil
		},
	}
}

// loadSnapshot loads the taxonomy without building an engine.
func (c *CLI) loadSnapshot() (*pipeline.Snapshot, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return pipeline.Load(cfg.Paths.Sources())
}
