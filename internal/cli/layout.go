package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tracklayout/pkg/pipeline"
)

// passFlags are the flags every command running a layout pass shares.
type passFlags struct {
	noCache bool
	refresh bool
}

func (f *passFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the layout and artifact cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute the layout even if cached")
}

// layoutCommand creates the layout command for computing track geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  passFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [track.toml|track.json|-]",
		Short: "Compute the geometry of a track",
		Long: `Compute the geometry of a track.

The layout command reads a track file (JSON or TOML, "-" for JSON on stdin),
runs one layout pass and writes the placements as JSON: the row of every
interval, the relaxed position of every point and the beeswarm of every
spread point. Modes set with 'mode' or 'view' are applied.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, flags)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <input>.layout.json)")
	flags.register(cmd)
	addLayoutFlags(cmd)

	return cmd
}

// runLayout runs a pass and writes its JSON geometry.
func (c *CLI) runLayout(ctx context.Context, input, output string, flags passFlags) error {
	result, err := c.runPass(ctx, input, []string{pipeline.FormatJSON}, flags)
	if err != nil {
		return err
	}

	outputPath := output
	if outputPath == "" && input != "-" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	if outputPath == "" || outputPath == "-" {
		_, err := stdout.Write(result.Artifacts[pipeline.FormatJSON])
		return err
	}

	if err := os.WriteFile(outputPath, result.Artifacts[pipeline.FormatJSON], 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.ItemCount, result.Stats.Rows, result.Stats.Issues, result.CacheInfo.LayoutHit)
	printIssues(result.Layout.Issues)
	printNewline()
	printNextStep("Render", appName+" render "+input)

	return nil
}

// runPass runs the full pipeline on input with the persisted CLI modes and
// saves the modes the pass resolved.
func (c *CLI) runPass(ctx context.Context, input string, formats []string, flags passFlags) (*pipeline.Result, error) {
	backend, err := c.openCache(ctx)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	defer backend.Close()

	store := c.modeStore(backend)
	sess, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load modes: %w", err)
	}
	machine := sess.Machine(c.machineOptions())

	opts := c.pipelineOptions(input)
	opts.Formats = formats
	opts.Machine = machine
	opts.Refresh = flags.refresh

	prog := newProgress(c.Logger)
	result, err := c.newRunner(backend, flags.noCache).Execute(ctx, opts)
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Laid out %d items", result.Stats.ItemCount))

	sess.Modes = machine.Snapshot()
	if err := store.Save(ctx, sess); err != nil {
		c.Logger.Warn("modes not saved", "err", err)
	}
	return result, nil
}
