package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/partimport/pkg/config"
	"github.com/matzehuels/partimport/pkg/errors"
	pkgio "github.com/matzehuels/partimport/pkg/io"
	"github.com/matzehuels/partimport/pkg/part"
	"github.com/matzehuels/partimport/pkg/pipeline"
	"github.com/matzehuels/partimport/pkg/supplier"
)

type resolveOpts struct {
	supplier string
	file     string
	category string
	json     bool
	noCache  bool
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var opts resolveOpts

	cmd := &cobra.Command{
		Use:   "resolve [search-term]",
		Short: "Show how a part maps onto the taxonomy",
		Long: `Resolve looks a part up at the configured suppliers, or reads raw supplier
records from a file, and shows its category, normalized parameters and
everything that did not map. Nothing is written to the sink.`,
		Example: `  partimport resolve C1525
  partimport resolve CL05B104KO5NNNC --supplier lcsc
  partimport resolve --file part.json --category "Passives/Capacitors"
  cat export.json | partimport resolve --file - --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (opts.file == "") {
				return errors.New(errors.ErrCodeInvalidInput, "give either a search term or --file")
			}
			var term string
			if len(args) == 1 {
				term = args[0]
			}
			return c.runResolve(cmd.Context(), cmd.OutOrStdout(), term, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.supplier, "supplier", "s", "", "search only this supplier")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read raw records from a JSON file (- for stdin)")
	cmd.Flags().StringVar(&opts.category, "category", "", "place the part into this category path instead of resolving")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the supplier search cache")

	return cmd
}

func (c *CLI) runResolve(ctx context.Context, w io.Writer, term string, opts resolveOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	engine, err := c.loadEngine(cfg)
	if err != nil {
		return err
	}

	var raws []*part.Raw
	if opts.file != "" {
		if raws, err = readRawFile(opts.file); err != nil {
			return err
		}
	} else {
		raw, err := c.lookup(ctx, cfg, term, opts)
		if err != nil {
			return err
		}
		raws = []*part.Raw{raw}
	}

	results := make([]resolved, 0, len(raws))
	for _, raw := range raws {
		var r resolved
		r.Key = raw.Key()
		if opts.category != "" {
			r.Part, r.Outcome = engine.ResolveIn(ctx, raw, splitPath(opts.category))
		} else {
			r.Part, r.Outcome = engine.Resolve(ctx, raw)
		}
		results = append(results, r)
	}

	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		writeResolved(w, r.Key, r.Part, r.Outcome)
	}
	return nil
}

type resolved struct {
	Key     string           `json:"key"`
	Part    *part.Resolved   `json:"part,omitempty"`
	Outcome pipeline.Outcome `json:"outcome"`
}

func (c *CLI) lookup(ctx context.Context, cfg *config.Config, term string, opts resolveOpts) (*part.Raw, error) {
	reg, closeCache, err := c.openRegistry(ctx, cfg, opts.noCache)
	if err != nil {
		return nil, err
	}
	defer closeCache()

	spinner := newSpinnerWithContext(ctx, "Searching "+term+"...")
	spinner.Start()
	defer spinner.Stop()

	if opts.supplier == "" {
		return reg.FindAny(ctx, term)
	}
	id, err := supplier.ParseID(opts.supplier)
	if err != nil {
		return nil, err
	}
	spinner.SetMessage("Searching " + term + " at " + string(id) + "...")
	return reg.Find(ctx, id, term)
}

func readRawFile(path string) ([]*part.Raw, error) {
	if path == "-" {
		return pkgio.ReadParts(os.Stdin)
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return pkgio.ReadParts(f)
}
