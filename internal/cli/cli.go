// Package cli implements the partimport command-line interface.
//
// # Commands
//
//   - resolve: look one part up and show how it maps onto the taxonomy
//   - import: resolve a batch file and write the parts to the sink
//   - categories: inspect the taxonomy (tree, find, suggest, graph, alias)
//   - parameters: list the parameter schema
//   - serve: run the HTTP API, optionally reloading on file changes
//   - cache: manage the supplier search cache
//   - config: write or locate the configuration file
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// carried in the command context (see withLogger).
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/partimport/pkg/buildinfo"
	"github.com/matzehuels/partimport/pkg/cache"
	"github.com/matzehuels/partimport/pkg/config"
	"github.com/matzehuels/partimport/pkg/pipeline"
	"github.com/matzehuels/partimport/pkg/supplier"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "partimport maps supplier parts onto your parts taxonomy",
		Long: `partimport looks electronic parts up at suppliers, places them into your
category taxonomy, normalizes their parameters and hands them to an
inventory sink.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "configuration file (default: ./"+config.FileName+" or the user config dir)")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.categoriesCommand())
	root.AddCommand(c.parametersCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Engine and Supplier Factories
// =============================================================================

func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.File != "" {
		c.Logger.Debug("configuration loaded", "file", cfg.File)
	}
	return cfg, nil
}

// loadEngine builds the engine from the taxonomy files named in cfg.
func (c *CLI) loadEngine(cfg *config.Config) (*pipeline.Engine, error) {
	prog := newProgress(c.Logger)
	snap, err := pipeline.Load(cfg.Paths.Sources())
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Loaded %d categories, %d parameters and %d hooks",
		snap.Tree.Len(), snap.Schema.Len(), len(snap.Hooks)))
	return pipeline.NewEngine(snap, c.Logger), nil
}

// openRegistry loads the configured suppliers behind the configured cache.
// The returned function closes the cache.
func (c *CLI) openRegistry(ctx context.Context, cfg *config.Config, noCache bool) (*supplier.Registry, func() error, error) {
	var ch cache.Cache = cache.NewNullCache()
	if !noCache {
		var err error
		if ch, err = cfg.Cache.Open(ctx); err != nil {
			return nil, nil, err
		}
	}
	reg, err := cfg.Registry(ch, c.Logger)
	if err != nil {
		ch.Close()
		return nil, nil, err
	}
	if len(reg.IDs()) == 0 {
		c.Logger.Warn("no suppliers configured", "hint", "add [[suppliers]] to "+config.FileName)
	}
	return reg, ch.Close, nil
}

// =============================================================================
// Helpers
// =============================================================================

// splitPath parses a category path given as "Passives/Capacitors" or
// "Passives / Capacitors".
func splitPath(s string) []string {
	var out []string
	for _, seg := range strings.Split(s, "/") {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
