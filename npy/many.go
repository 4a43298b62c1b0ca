package npy

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// LoadFiles reads several standalone .npy files in parallel, at most
// WithConcurrency at a time, keyed by path. The first failure cancels the
// remaining loads and no partial result is returned.
func LoadFiles(ctx context.Context, paths []string, opts ...Option) (map[string]*Array, error) {
	o := newOptions(opts)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	var mu sync.Mutex
	arrays := make(map[string]*Array, len(paths))

	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := LoadFile(path, opts...)
			if err != nil {
				return err
			}

			mu.Lock()
			arrays[path] = a
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	o.log().Debug("loaded files", slog.Int("count", len(arrays)), slog.Int("concurrency", o.concurrency))
	return arrays, nil
}
