package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tracklayout/pkg/pipeline"
)

// renderCommand creates the render command for generating track images.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output string
		flags  passFlags
	)

	cmd := &cobra.Command{
		Use:   "render [track.toml|track.json|-]",
		Short: "Render a track to SVG, PNG or JSON",
		Long: `Render a track to SVG, PNG or JSON.

The render command runs a layout pass and draws the result. SVG is written
directly; PNG is rasterised by headless Chrome (set render.chrome_path if it
is not on PATH). Modes set with 'mode' or 'view' are applied.

With a single format, -o names the output file. With several, -o is a base
path and each format gets its own extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := c.cfg.Render.Formats
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], output, formats, flags)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	flags.register(cmd)
	addLayoutFlags(cmd)
	addRenderFlags(cmd)

	return cmd
}

// runRender runs a pass and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input, output string, formats []string, flags passFlags) error {
	var spinner *Spinner
	if slices.Contains(formats, pipeline.FormatPNG) {
		spinner = newSpinnerWithContext(ctx, "Rasterising PNG...")
		spinner.Start()
	}

	result, err := c.runPass(ctx, input, formats, flags)
	if spinner != nil {
		if err != nil {
			spinner.StopWithError("Render failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(ctx, result.Artifacts, formats, input, output)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.ItemCount, result.Stats.Rows, result.Stats.Issues, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	printIssues(result.Layout.Issues)
	return nil
}

// writeArtifacts writes each format to its output path and returns the paths
// written. A single format with output "-" (or stdin input and no output)
// goes to stdout.
func writeArtifacts(ctx context.Context, artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	logger := loggerFromContext(ctx)

	if len(formats) == 1 && (output == "-" || (output == "" && input == "-")) {
		_, err := stdout.Write(artifacts[formats[0]])
		return nil, err
	}

	base := basePath(output, input)
	var paths []string
	for _, format := range formats {
		path := base + "." + format
		if len(formats) == 1 && output != "" && filepath.Ext(output) != "" {
			path = output
		}
		if err := writeFile(path, artifacts[format]); err != nil {
			return paths, err
		}
		logger.Debugf("Wrote %s: %d bytes", path, len(artifacts[format]))
		paths = append(paths, path)
	}
	return paths, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input ("track" for stdin).
// If output has a format extension (.svg, .png, .json), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return "track"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeFile creates path and writes data to it.
func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for path; "-" is stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{stdout}, nil
	}
	return os.Create(path)
}
