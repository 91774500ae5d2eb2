package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/tracklayout/internal/config"
	"github.com/matzehuels/tracklayout/pkg/buildinfo"
	"github.com/matzehuels/tracklayout/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Before any subcommand runs, the flags it declares are bound to their config
// keys and the configuration is loaded (defaults, config files, TRACKLAYOUT_*
// environment, flags). With --verbose the pipeline and cache hooks log every
// stage at debug level.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   appName,
		Short: "Tracklayout lays out genome track items without overlap",
		Long: `Tracklayout places interval and point items along a 1-D genome track.

Intervals are packed into rows, points are spread apart without overlapping,
and each point can be expanded or spread into a beeswarm of its samples. The
modes you set persist between runs until you reset them.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			if err := c.bindFlags(cmd); err != nil {
				return err
			}
			if err := c.loadConfig(); err != nil {
				return err
			}
			if verbose {
				hooks := observability.NewLogHooks(c.Logger)
				observability.SetPipelineHooks(hooks)
				observability.SetCacheHooks(hooks)
				observability.SetModeHooks(hooks)
				observability.SetHTTPHooks(hooks)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.Close()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	flags.String(config.KeyConfig, "", "config file (overrides ./"+config.ProjectConfigFile+")")
	_ = root.PersistentFlags().SetAnnotation(config.KeyConfig, keyAnnotation, []string{config.KeyConfig})

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.modeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig loads the configuration and mirrors the log to the configured
// file.
func (c *CLI) loadConfig() error {
	cfg, err := config.LoadConfig(c.viper)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if cfg.Log.File != "" {
		lf := newLogFile(cfg.Log)
		c.logFile = lf
		c.Logger.SetOutput(teeWriter(c.out, lf))
	}
	return nil
}
