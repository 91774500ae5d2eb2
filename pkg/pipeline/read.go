package pipeline

import (
	"context"
	"time"

	errs "github.com/matzehuels/tracklayout/pkg/errors"
	tio "github.com/matzehuels/tracklayout/pkg/io"
	"github.com/matzehuels/tracklayout/pkg/observability"
)

// ReadTrack decodes the track file named by opts.Path.
func ReadTrack(ctx context.Context, opts Options) (*tio.Track, error) {
	if opts.Path == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "track path is required")
	}

	hooks := observability.Pipeline()
	hooks.OnReadStart(ctx, opts.Path)
	start := time.Now()

	t, err := tio.ImportFile(opts.Path)

	n := 0
	if t != nil {
		n = len(t.Items)
	}
	hooks.OnReadComplete(ctx, opts.Path, n, time.Since(start), err)
	return t, err
}
