package life

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minChunk keeps goroutine overhead small relative to the 6×6 kernel cost.
const minChunk = 256

// StepBatch advances every run packed in src (runs*w*h cells, run-major) by
// one generation into dst. Runs are independent and are split into chunks
// stepped concurrently by at most workers goroutines.
func StepBatch(ctx context.Context, dst, src []uint8, w, h, workers int) error {
	size := w * h
	if size <= 0 || len(src)%size != 0 || len(dst) != len(src) {
		return fmt.Errorf("batch step: buffer length %d/%d does not fit %dx%d lattices", len(src), len(dst), w, h)
	}
	runs := len(src) / size
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := (runs + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < runs; start += chunk {
		end := min(start+chunk, runs)
		g.Go(func() error {
			for r := start; r < end; r++ {
				if r%minChunk == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				off := r * size
				stepCells(dst[off:off+size], src[off:off+size], w, h)
			}
			return nil
		})
	}
	return g.Wait()
}
