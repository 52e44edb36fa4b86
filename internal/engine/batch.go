package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"toroid/internal/convergence"
	"toroid/pkg/core"
	"toroid/pkg/sims/life"
)

// BatchOptions configures a Batch engine.
type BatchOptions struct {
	// Window is the number of trailing steps examined by Classify.
	Window int
	// Workers bounds the goroutines used per step and per classification pass.
	Workers int
	// Tolerance is the population-variance bound for a nonzero constant run.
	Tolerance float64
	Logger    *slog.Logger
}

// DefaultBatchOptions returns the options used by the CLI.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{Window: 30, Workers: runtime.GOMAXPROCS(0), Tolerance: 1e-5}
}

// Batch advances many independent lattices in lockstep for a fixed number of
// steps and classifies them post hoc. Runs are packed run-major into one slab
// per step.
type Batch struct {
	opts    BatchOptions
	log     *slog.Logger
	w, h    int
	runs    int
	cur     []uint8
	nxt     []uint8
	history [][]uint8

	dynamicVisits int
}

// NewBatch prepares a batch from copies of the initial lattices, which must
// all share dimensions.
func NewBatch(initial []*core.Lattice, opts BatchOptions) (*Batch, error) {
	if len(initial) == 0 {
		return nil, fmt.Errorf("%w: batch needs at least one lattice", ErrInvalidConfig)
	}
	if opts.Window < 1 {
		return nil, fmt.Errorf("%w: window must be positive, got %d", ErrInvalidConfig, opts.Window)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	w, h := initial[0].W, initial[0].H
	size := w * h
	cur := make([]uint8, 0, len(initial)*size)
	for i, l := range initial {
		if l.W != w || l.H != h {
			return nil, fmt.Errorf("%w: run %d is %dx%d, want %dx%d", ErrInvalidConfig, i, l.W, l.H, w, h)
		}
		cur = append(cur, l.Cells()...)
	}
	log := opts.Logger
	if log == nil {
		log = discardLogger()
	}
	return &Batch{
		opts: opts,
		log:  log,
		w:    w,
		h:    h,
		runs: len(initial),
		cur:  cur,
		nxt:  make([]uint8, len(cur)),
	}, nil
}

// RandomBatch seeds n random w×h lattices from rng. A negative p draws a
// separate alive probability for every run.
func RandomBatch(rng *core.RNG, n, w, h int, p float64, opts BatchOptions) (*Batch, error) {
	if n <= 0 || w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %d runs of %dx%d", ErrInvalidConfig, n, w, h)
	}
	initial := make([]*core.Lattice, n)
	for i := range initial {
		initial[i] = rng.RandomLattice(w, h, p)
	}
	return NewBatch(initial, opts)
}

// Step records the current generation of every run and advances them all.
func (b *Batch) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.history = append(b.history, append([]uint8(nil), b.cur...))
	if err := life.StepBatch(ctx, b.nxt, b.cur, b.w, b.h, b.opts.Workers); err != nil {
		return err
	}
	b.cur, b.nxt = b.nxt, b.cur
	return nil
}

// Simulate runs a fixed number of lockstep steps. Runs that converge early
// keep being stepped so that every run shares one kernel pass per step.
func (b *Batch) Simulate(ctx context.Context, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("%w: step budget must be positive, got %d", ErrInvalidConfig, steps)
	}
	report := max(steps/10, 1)
	for i := 0; i < steps; i++ {
		if err := b.Step(ctx); err != nil {
			return fmt.Errorf("batch step %d: %w", i, err)
		}
		if (i+1)%report == 0 {
			b.log.Debug("batch progress", "step", i+1, "steps", steps, "runs", b.runs)
		}
	}
	return nil
}

// Steps implements Engine.
func (b *Batch) Steps() int { return len(b.history) }

// Runs implements Engine.
func (b *Batch) Runs() int { return b.runs }

// Size returns the lattice dimensions shared by every run.
func (b *Batch) Size() (w, h int) { return b.w, b.h }

// Snapshot implements Engine. The returned lattice shares history memory.
func (b *Batch) Snapshot(step, run int) *core.Lattice {
	size := b.w * b.h
	return core.View(b.w, b.h, b.history[step][run*size:(run+1)*size])
}

// DynamicVisits reports how many runs the last Classify sent through the
// per-run indicator search.
func (b *Batch) DynamicVisits() int { return b.dynamicVisits }

// Classify labels every run from its trailing window of populations: zero
// when the final population is 0, constant when the window variance is
// within Tolerance, dynamic otherwise. Dynamic runs get the earliest
// minimum-population state of the window as their indicator.
func (b *Batch) Classify() ([]Outcome, error) {
	if len(b.history) == 0 {
		return nil, fmt.Errorf("%w: classify before simulate", ErrInvalidConfig)
	}
	start := max(len(b.history)-b.opts.Window, 0)
	window := b.history[start:]
	last := len(b.history) - 1
	size := b.w * b.h

	outcomes := make([]Outcome, b.runs)
	pops := make([][]int, b.runs)

	g := new(errgroup.Group)
	g.SetLimit(b.opts.Workers)
	chunk := max((b.runs+b.opts.Workers-1)/b.opts.Workers, 1)
	for lo := 0; lo < b.runs; lo += chunk {
		hi := min(lo+chunk, b.runs)
		g.Go(func() error {
			for r := lo; r < hi; r++ {
				series := make([]int, len(window))
				for i, slab := range window {
					series[i] = core.Population(slab[r*size : (r+1)*size])
				}
				pops[r] = series
				final := series[len(series)-1]
				o := Outcome{Run: r, Step: last}
				switch {
				case final == 0:
					o.Type = convergence.Constant
					o.Indicator = core.NewLattice(b.w, b.h)
				case convergence.Variance(series) < b.opts.Tolerance:
					o.Type = convergence.Constant
					o.Constant = final
					o.Indicator = b.Snapshot(last, r)
				default:
					o.Type = convergence.Dynamic
					o.Dynamic = true
				}
				outcomes[r] = o
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var dynamic []int
	for r := range outcomes {
		if outcomes[r].Dynamic {
			dynamic = append(dynamic, r)
		}
	}
	b.dynamicVisits = len(dynamic)

	g = new(errgroup.Group)
	g.SetLimit(b.opts.Workers)
	for _, r := range dynamic {
		g.Go(func() error {
			series := pops[r]
			best := 0
			for i, p := range series {
				if p < series[best] {
					best = i
				}
			}
			if series[best] == 1 {
				return &InvariantError{Run: r, MinPopulation: 1}
			}
			outcomes[r].Indicator = b.Snapshot(start+best, r)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.log.Debug("batch classified", "runs", b.runs, "dynamic", len(dynamic), "window", len(window))
	return outcomes, nil
}
