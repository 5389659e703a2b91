package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/partimport/pkg/category"
	"github.com/matzehuels/partimport/pkg/config"
	pkgio "github.com/matzehuels/partimport/pkg/io"
	"github.com/matzehuels/partimport/pkg/parameter"
	"github.com/matzehuels/partimport/pkg/part"
	"github.com/matzehuels/partimport/pkg/pipeline"
	"github.com/matzehuels/partimport/pkg/sink"
)

type importOpts struct {
	interactive bool
	dryRun      bool
	workers     int
	output      string
	report      string
	noCache     bool
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var opts importOpts

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a batch of parts",
		Long: `Import resolves every part of a batch file and writes it to the sink.

The file is either CSV/TSV with a search_term column (and optional supplier
and quantity columns), looked up at the configured suppliers, or a JSON
array or JSON lines file of raw supplier records.

With --interactive, parts whose supplier category matches nothing are
offered to you for manual categorization, and category parameters that no
supplier parameter matched are offered with the part's parameters ranked
by similarity. Choosing with Tab also records the supplier's name as an
alias in the taxonomy or parameters file.`,
		Example: `  partimport import bom.csv
  partimport import bom.csv --interactive
  partimport import export.json --dry-run --report report.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), args[0], cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "ask for categories and parameters that do not match (default from config)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "log parts instead of writing them to the sink")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "concurrent resolutions (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "JSON lines output file, overrides the configured sink")
	cmd.Flags().StringVar(&opts.report, "report", "", "write the import report as JSON to this file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the supplier search cache")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, file string, cmd *cobra.Command, opts importOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("interactive") {
		opts.interactive = cfg.Import.Interactive
	}
	if opts.workers == 0 {
		opts.workers = cfg.Import.Workers
	}

	batch, err := pkgio.OpenBatch(file)
	if err != nil {
		return err
	}
	if batch.Len() == 0 {
		printInfo("Nothing to import in %s", file)
		return nil
	}

	engine, err := c.loadEngine(cfg)
	if err != nil {
		return err
	}

	s, err := c.openSink(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			c.Logger.Error("close sink", "err", err)
		}
	}()

	runOpts := pipeline.Options{Workers: opts.workers, Suggestions: cfg.Import.Suggestions}
	if opts.interactive {
		runOpts.Categorize = c.pickCategory(engine)
		runOpts.Assign = c.pickParameter(engine)
	}
	runner := pipeline.NewRunner(engine, runOpts, c.Logger)

	prog := newProgress(c.Logger)
	var report *pipeline.Report
	if batch.Requests != nil {
		reg, closeCache, rerr := c.openRegistry(ctx, cfg, opts.noCache)
		if rerr != nil {
			return rerr
		}
		defer closeCache()
		report, err = runner.ImportRequests(ctx, batch.Requests, reg, s)
	} else {
		report, err = runner.Import(ctx, batch.Parts, s)
	}
	if report != nil {
		prog.done(fmt.Sprintf("Imported %d parts", len(report.Items)), "run", report.RunID)
		writeReport(cmd.OutOrStdout(), report)
		if opts.report != "" {
			if rerr := pkgio.ExportReport(report, opts.report); rerr != nil {
				c.Logger.Error("write report", "err", rerr)
			} else {
				printFile(opts.report)
			}
		}
	}
	return err
}

func (c *CLI) openSink(ctx context.Context, cfg *config.Config, opts importOpts) (sink.Sink, error) {
	switch {
	case opts.dryRun:
		return sink.Instrument(config.SinkDryRun, sink.NewDryRun(c.Logger)), nil
	case opts.output != "":
		return config.SinkConfig{Kind: config.SinkJSONL, Path: opts.output}.Open(ctx, c.Logger)
	default:
		return cfg.Sink.Open(ctx, c.Logger)
	}
}

// pickCategory asks the user to categorize a part in a terminal UI. The
// runner serializes calls, so only one picker is on screen at a time.
func (c *CLI) pickCategory(engine *pipeline.Engine) pipeline.CategorizeFunc {
	return func(ctx context.Context, raw *part.Raw, suggestions []category.Suggestion) ([]string, error) {
		final, err := tea.NewProgram(
			NewCategoryPickerModel(raw, suggestions),
			tea.WithContext(ctx),
			tea.WithOutput(os.Stderr),
		).Run()
		if err != nil {
			return nil, fmt.Errorf("category picker: %w", err)
		}
		m := final.(CategoryPickerModel)

		switch m.action {
		case pickerAbort:
			return nil, context.Canceled
		case pickerSkip:
			loggerFromContext(ctx).Info("part left uncategorized", "part", raw.Key())
			return nil, nil
		case pickerSelectAndLearn:
			rememberAlias(ctx, engine, raw, m.chosen)
		}
		return m.chosen, nil
	}
}

// rememberAlias records the last segment of the supplier's category path
// as an alias of path and reloads the engine so later parts match it.
func rememberAlias(ctx context.Context, engine *pipeline.Engine, raw *part.Raw, path []string) {
	if len(raw.CategoryPath) == 0 {
		return
	}
	logger := loggerFromContext(ctx)
	snap := engine.Snapshot()
	alias := raw.CategoryPath[len(raw.CategoryPath)-1]
	if err := learnAlias(snap.Sources.Categories, snap.Tree, path, alias); err != nil {
		logger.Warn("alias not recorded", "alias", alias, "err", err)
		return
	}
	logger.Info("alias recorded", "alias", alias, "category", category.JoinPath(path), "file", snap.Sources.Categories)
	if err := engine.Reload(ctx, snap.Sources); err != nil {
		logger.Warn("reload after alias failed", "err", err)
	}
}

// pickParameter asks the user for the value of an unmatched parameter.
func (c *CLI) pickParameter(engine *pipeline.Engine) pipeline.AssignFunc {
	return func(ctx context.Context, raw *part.Raw, name string, candidates []parameter.Candidate) (string, error) {
		final, err := tea.NewProgram(
			NewParameterPickerModel(raw, name, candidates),
			tea.WithContext(ctx),
			tea.WithOutput(os.Stderr),
		).Run()
		if err != nil {
			return "", fmt.Errorf("parameter picker: %w", err)
		}
		m := final.(ParameterPickerModel)

		switch m.action {
		case pickerAbort:
			return "", context.Canceled
		case pickerSkip:
			loggerFromContext(ctx).Info("parameter left unassigned", "part", raw.Key(), "parameter", name)
			return "", nil
		case pickerSelectAndLearn:
			rememberParameterAlias(ctx, engine, name, m.alias)
		}
		return m.value, nil
	}
}

// rememberParameterAlias records alias for the parameter name and reloads
// the engine so later parts match it.
func rememberParameterAlias(ctx context.Context, engine *pipeline.Engine, name, alias string) {
	logger := loggerFromContext(ctx)
	snap := engine.Snapshot()
	if err := learnParameterAlias(snap.Sources.Parameters, snap.Schema, name, alias); err != nil {
		logger.Warn("alias not recorded", "alias", alias, "err", err)
		return
	}
	logger.Info("alias recorded", "alias", alias, "parameter", name, "file", snap.Sources.Parameters)
	if err := engine.Reload(ctx, snap.Sources); err != nil {
		logger.Warn("reload after alias failed", "err", err)
	}
}
