package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tracklayout/internal/server"
	"github.com/matzehuels/tracklayout/pkg/cache"
	"github.com/matzehuels/tracklayout/pkg/session"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layout passes and mode sessions over HTTP",
		Long: `Serve layout passes and mode sessions over HTTP.

Sessions and cached layouts live in the configured cache backend. With the
redis backend, several servers can share sessions; concurrent updates to
one session from different servers are last-writer-wins.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			backend, err := c.openCache(ctx)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer backend.Close()

			keyer := cache.NewDefaultKeyer()
			store := session.NewCacheStore(backend, keyer, c.cfg.Cache.SessionTTL)
			sessions := session.NewManager(store, c.machineOptions())

			popts := c.cfg.PipelineOptions()
			popts.Logger = c.Logger
			srv := server.New(c.newRunner(backend, noCache), sessions, server.Options{
				Addr:         c.cfg.Server.Addr,
				ReadTimeout:  c.cfg.Server.ReadTimeout,
				WriteTimeout: c.cfg.Server.WriteTimeout,
				MaxBodyBytes: c.cfg.Server.MaxBodyBytes,
				Pipeline:     popts,
			}, c.Logger)

			printInfo("Listening on %s", StyleValue.Render("http://"+c.cfg.Server.Addr))
			return srv.Run(ctx)
		},
	}

	cmd.Flags().String("addr", c.cfg.Server.Addr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")
	bindKey(cmd, "addr", "server.addr")
	addLayoutFlags(cmd)

	return cmd
}
