package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/tracklayout/pkg/core/layout"
	"github.com/matzehuels/tracklayout/pkg/core/render/sink"
	errs "github.com/matzehuels/tracklayout/pkg/errors"
)

// RenderFromLayout renders res in every requested format.
func RenderFromLayout(ctx context.Context, res *layout.Result, opts Options) (map[string][]byte, error) {
	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(res, svgOpts...)
		case FormatPNG:
			pngOpts := []sink.PNGOption{sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.Scale)}
			if opts.ChromePath != "" {
				pngOpts = append(pngOpts, sink.WithChromePath(opts.ChromePath))
			}
			data, err = sink.RenderPNG(ctx, res, pngOpts...)
		case FormatJSON:
			var jsonOpts []sink.JSONOption
			if opts.Session != "" {
				jsonOpts = append(jsonOpts, sink.WithJSONSession(opts.Session))
			}
			data, err = sink.RenderJSON(res, jsonOpts...)
		default:
			return nil, errs.New(errs.ErrCodeUnsupported, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if opts.Labels {
		svgOpts = append(svgOpts, sink.WithLabels())
	}
	if opts.Interaction {
		svgOpts = append(svgOpts, sink.WithInteraction())
	}
	return svgOpts
}
