package crud

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Loader is one independent read.
type Loader func(ctx context.Context) error

// LoadAll runs loaders concurrently and waits for all of them.
// POST: Returns the first failure; the shared context is cancelled once one fails
func LoadAll(ctx context.Context, loaders ...Loader) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, load := range loaders {
		g.Go(func() error {
			return load(ctx)
		})
	}
	return g.Wait()
}

// Into adapts a typed fetch into a Loader that stores its result in dst.
func Into[T any](dst *T, fetch func(ctx context.Context) (T, error)) Loader {
	return func(ctx context.Context) error {
		v, err := fetch(ctx)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}
