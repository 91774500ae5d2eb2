package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/matzehuels/tracklayout/internal/config"
	"github.com/matzehuels/tracklayout/pkg/cache"
	"github.com/matzehuels/tracklayout/pkg/core/mode"
	"github.com/matzehuels/tracklayout/pkg/pipeline"
	"github.com/matzehuels/tracklayout/pkg/session"
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

// keyAnnotation marks a flag with the config key it overrides.
const keyAnnotation = "tracklayout/config-key"

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out     io.Writer
	viper   *viper.Viper
	cfg     *config.Config
	logFile io.WriteCloser
}

// New creates a new CLI instance with a default logger writing to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    w,
		viper:  config.NewViper(),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Close releases the log file, if one was opened.
func (c *CLI) Close() error {
	if c.logFile == nil {
		return nil
	}
	err := c.logFile.Close()
	c.logFile = nil
	return err
}

// =============================================================================
// Config Flags
// =============================================================================

// bindKey records that flag overrides config key. The binding itself happens
// in bindFlags, for the command that actually runs.
func bindKey(cmd *cobra.Command, flag, key string) {
	_ = cmd.Flags().SetAnnotation(flag, keyAnnotation, []string{key})
}

// bindFlags binds the annotated flags of cmd to viper. Binding per executed
// command keeps two commands sharing a key from shadowing each other.
func (c *CLI) bindFlags(cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		keys := f.Annotations[keyAnnotation]
		if err != nil || len(keys) != 1 {
			return
		}
		err = c.viper.BindPFlag(keys[0], f)
	})
	return err
}

// addLayoutFlags registers the flags of a layout pass.
func addLayoutFlags(cmd *cobra.Command) {
	d := config.Default().Layout
	f := cmd.Flags()
	f.Float64("canvas-width", d.CanvasWidth, "canvas width in pixels (default: the track's width)")
	f.Float64("row-height", d.RowHeight, "height of one interval row")
	f.Float64("row-gap", d.RowGap, "minimum gap between intervals sharing a row")
	f.Bool("relax", d.Relax, "move points apart so they do not overlap")
	f.Bool("strict", d.Strict, "fail the pass on the first invalid item")
	f.Bool("verify", d.Verify, "audit the result for overlaps")
	f.Bool("measure-labels", d.MeasureLabels, "size point glyphs to fit their labels")
	f.Bool("auto-expand", d.AutoExpand, "expand points by default when they fit")

	bindKey(cmd, "canvas-width", "layout.canvas_width")
	bindKey(cmd, "row-height", "layout.row_height")
	bindKey(cmd, "row-gap", "layout.row_gap")
	bindKey(cmd, "relax", "layout.relax")
	bindKey(cmd, "strict", "layout.strict")
	bindKey(cmd, "verify", "layout.verify")
	bindKey(cmd, "measure-labels", "layout.measure_labels")
	bindKey(cmd, "auto-expand", "layout.auto_expand")
}

// addRenderFlags registers the flags of the render stage.
func addRenderFlags(cmd *cobra.Command) {
	d := config.Default().Render
	f := cmd.Flags()
	f.StringSliceP("format", "f", d.Formats, "output format(s): svg, png, json (comma-separated)")
	f.Float64("scale", d.Scale, "PNG device scale factor")
	f.Bool("labels", d.Labels, "draw item labels")
	f.Bool("interaction", d.Interaction, "embed hover highlighting in SVG output")

	bindKey(cmd, "format", "render.formats")
	bindKey(cmd, "scale", "render.scale")
	bindKey(cmd, "labels", "render.labels")
	bindKey(cmd, "interaction", "render.interaction")
}

// =============================================================================
// Runner Factory
// =============================================================================

// openCache opens the configured cache backend.
func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	switch c.cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, c.cfg.RedisCacheConfig())
	}
	dir, err := c.cfg.CacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newRunner creates a pipeline runner over backend. With noCache the runner
// skips the layout and artifact cache; modes still persist in backend.
func (c *CLI) newRunner(backend cache.Cache, noCache bool) *pipeline.Runner {
	if noCache {
		return pipeline.NewRunner(cache.NewNullCache(), nil, c.Logger)
	}
	return pipeline.NewRunner(backend, nil, c.Logger)
}

// modeStore returns the CLI's persistent mode session in backend.
func (c *CLI) modeStore(backend cache.Cache) *session.CLIStore {
	return session.NewCLIStore(session.NewCacheStore(backend, cache.NewDefaultKeyer(), 0))
}

// machineOptions returns the mode options the configuration selects.
func (c *CLI) machineOptions() mode.Options {
	return mode.Options{AutoExpand: c.cfg.Layout.AutoExpand}
}

// pipelineOptions returns the configured pipeline options for path.
func (c *CLI) pipelineOptions(path string) pipeline.Options {
	opts := c.cfg.PipelineOptions()
	opts.Path = path
	opts.Logger = c.Logger
	return opts
}

// stdout is where commands print results; tests swap it.
var stdout io.Writer = os.Stdout
