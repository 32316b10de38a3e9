// tuner/design.go
package tuner

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"chess-tuner/features"
	"chess-tuner/linalg"
)

var ErrNoSamples = errors.New("tuner: no samples")

const defaultChunk = 4096

const interceptName = "intercept"

// columnNames names p design columns: the feature columns, then the
// intercept when there is exactly one extra column. Any other width gets
// positional names x0, x1, ...
func columnNames(p int) []string {
	switch p {
	case features.NumColumns:
		return features.Names()
	case features.NumColumns + 1:
		return append(features.Names(), interceptName)
	}
	names := make([]string, p)
	for i := range names {
		names[i] = fmt.Sprintf("x%d", i)
	}
	return names
}

// BuildDesign turns samples into X and Y. Columns follow features.Columns,
// with a trailing column of ones when cfg.Intercept is set. Rows are filled
// concurrently, one block of rows per goroutine.
func BuildDesign(ctx context.Context, samples []Sample, cfg DesignConfig) (*Design, error) {
	n := len(samples)
	if n == 0 {
		return nil, ErrNoSamples
	}
	p := features.NumColumns
	if cfg.Intercept {
		p++
	}
	names := columnNames(p)

	x, err := linalg.New(n, p)
	if err != nil {
		return nil, fmt.Errorf("tuner: design matrix: %w", err)
	}
	y, err := linalg.New(n, 1)
	if err != nil {
		x.Release()
		return nil, fmt.Errorf("tuner: label vector: %w", err)
	}

	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	chunk := cfg.ChunkSize
	if chunk <= 0 {
		chunk = defaultChunk
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for lo := 0; lo < n; lo += chunk {
		lo, hi := lo, min(lo+chunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				row := x.Row(i)
				features.Row(&samples[i].Board, row)
				if cfg.Intercept {
					row[features.NumColumns] = 1
				}
				y.Set(i, 0, samples[i].Label)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		x.Release()
		y.Release()
		return nil, fmt.Errorf("tuner: build design: %w", err)
	}
	return &Design{X: x, Y: y, Names: names}, nil
}
