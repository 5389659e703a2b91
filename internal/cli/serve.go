package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/partimport/pkg/config"
	"github.com/matzehuels/partimport/pkg/observability"
	"github.com/matzehuels/partimport/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		watch   bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes resolution over HTTP and Prometheus metrics on /metrics.

With --watch the taxonomy, parameter and hook files are reloaded when they
change. A reload that fails keeps the running configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				cfg.Server.Watch = watch
			}
			return c.runServe(cmd.Context(), cfg, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the taxonomy when its files change (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the supplier search cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg *config.Config, noCache bool) error {
	observability.NewPrometheus(prometheus.DefaultRegisterer).Register()

	engine, err := c.loadEngine(cfg)
	if err != nil {
		return err
	}
	reg, closeCache, err := c.openRegistry(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	defer closeCache()

	srv := server.New(server.Options{Engine: engine, Registry: reg, Logger: c.Logger})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Server.Addr)
	})
	if cfg.Server.Watch {
		src := cfg.Paths.Sources()
		w, err := config.NewWatcher(src.Files(), cfg.Server.DebounceDuration(), c.Logger, func(ctx context.Context) error {
			return engine.Reload(ctx, src)
		})
		if err != nil {
			return err
		}
		c.Logger.Info("watching configuration files", "files", src.Files())
		g.Go(func() error { return w.Run(gctx) })
	}
	return g.Wait()
}
