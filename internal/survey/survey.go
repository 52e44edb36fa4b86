// Package survey runs batch surveys: random lattices are simulated in
// lockstep, classified, and their indicator states catalogued by torque.
package survey

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"toroid/internal/attractor"
	"toroid/internal/config"
	"toroid/internal/convergence"
	"toroid/internal/engine"
	"toroid/internal/storage"
	"toroid/pkg/core"
)

// Params describes one survey.
type Params struct {
	Width            int
	Height           int
	Runs             int
	Steps            int
	AliveProbability float64
	Seed             int64
	Batch            engine.BatchOptions
	TorqueTolerance  float64
}

// FromConfig extracts survey parameters from a validated config.
func FromConfig(cfg *config.Config, log *slog.Logger) Params {
	opts := cfg.BatchOptions()
	opts.Logger = log
	return Params{
		Width:            cfg.Width,
		Height:           cfg.Height,
		Runs:             cfg.Runs,
		Steps:            cfg.MaxSteps,
		AliveProbability: cfg.AliveProbability,
		Seed:             cfg.Seed,
		Batch:            opts,
		TorqueTolerance:  cfg.Catalog.TorqueTolerance,
	}
}

// Result is a finished survey.
type Result struct {
	Params    Params
	Outcomes  []engine.Outcome
	Converged int
	Dynamic   int
	Catalog   *attractor.Catalog
	Elapsed   time.Duration
}

// Simulate seeds and advances the batch and classifies every run.
func Simulate(ctx context.Context, p Params) (*engine.Batch, []engine.Outcome, error) {
	b, err := engine.RandomBatch(core.NewRNG(p.Seed), p.Runs, p.Width, p.Height, p.AliveProbability, p.Batch)
	if err != nil {
		return nil, nil, err
	}
	if err := b.Simulate(ctx, p.Steps); err != nil {
		return nil, nil, err
	}
	outcomes, err := b.Classify()
	if err != nil {
		return nil, nil, fmt.Errorf("classifying batch: %w", err)
	}
	return b, outcomes, nil
}

// Analyze catalogues indicator states.
func Analyze(ctx context.Context, states []*core.Lattice, tolerance float64, workers int) (*attractor.Catalog, error) {
	cat := attractor.NewCatalog(tolerance)
	if err := cat.ObserveAll(ctx, states, workers); err != nil {
		return nil, fmt.Errorf("cataloguing attractors: %w", err)
	}
	cat.SortByPopulation()
	return cat, nil
}

// Run performs Simulate followed by Analyze.
func Run(ctx context.Context, p Params) (*Result, error) {
	start := time.Now()
	_, outcomes, err := Simulate(ctx, p)
	if err != nil {
		return nil, err
	}
	cat, err := Analyze(ctx, engine.Indicators(outcomes), p.TorqueTolerance, p.Batch.Workers)
	if err != nil {
		return nil, err
	}
	res := &Result{Params: p, Outcomes: outcomes, Catalog: cat, Elapsed: time.Since(start)}
	for _, o := range outcomes {
		if o.Type != convergence.None {
			res.Converged++
		}
		if o.Dynamic {
			res.Dynamic++
		}
	}
	return res, nil
}

// Record converts r into its persisted form. Attractors are ranked in
// catalog order.
func (r *Result) Record() *storage.Survey {
	sv := &storage.Survey{
		Width:            r.Params.Width,
		Height:           r.Params.Height,
		Runs:             r.Params.Runs,
		Steps:            r.Params.Steps,
		Window:           r.Params.Batch.Window,
		AliveProbability: r.Params.AliveProbability,
		Seed:             r.Params.Seed,
		Converged:        r.Converged,
		Dynamic:          r.Dynamic,
	}
	for i, e := range r.Catalog.Entries() {
		sv.Attractors = append(sv.Attractors, storage.Attractor{
			Rank:       i + 1,
			Width:      e.State.W,
			Height:     e.State.H,
			Cells:      append([]uint8(nil), e.State.Cells()...),
			Population: e.State.Population(),
			Torque:     e.Torque,
			Hits:       e.Hits,
			Frequency:  r.Catalog.Frequency(i),
		})
	}
	return sv
}
