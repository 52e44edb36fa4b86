package engine

import (
	"context"
	"errors"
	"testing"

	"toroid/internal/convergence"
	pcore "toroid/pkg/core"
)

func newBatch(t *testing.T, initial []*pcore.Lattice, steps int) *Batch {
	t.Helper()
	opts := DefaultBatchOptions()
	opts.Workers = 3
	b, err := NewBatch(initial, opts)
	if err != nil {
		t.Fatalf("NewBatch: %v", err)
	}
	if err := b.Simulate(context.Background(), steps); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	return b
}

func TestBatchAllDead(t *testing.T) {
	initial := make([]*pcore.Lattice, 50)
	for i := range initial {
		initial[i] = pcore.NewLattice(6, 6)
	}
	b := newBatch(t, initial, 10)
	outcomes, err := b.Classify()
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	for _, o := range outcomes {
		if o.Type != convergence.Constant || o.Dynamic || o.Constant != 0 {
			t.Fatalf("run %d: %+v", o.Run, o)
		}
		if o.Indicator == nil || o.Indicator.Population() != 0 {
			t.Fatalf("run %d should carry an empty indicator", o.Run)
		}
	}
	if b.DynamicVisits() != 0 {
		t.Fatalf("dead runs entered the per-run pass %d times", b.DynamicVisits())
	}
}

func TestBatchMixedClassification(t *testing.T) {
	initial := []*pcore.Lattice{
		pattern(t, "empty"),
		pattern(t, "block"),
		pattern(t, "beacon"),
		pattern(t, "single"),
	}
	b := newBatch(t, initial, 40)
	outcomes, err := b.Classify()
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if o := outcomes[0]; o.Dynamic || o.Constant != 0 {
		t.Fatalf("empty run: %+v", o)
	}
	if o := outcomes[1]; o.Dynamic || o.Constant != 4 || !o.Indicator.Equal(initial[1]) {
		t.Fatalf("block run: %+v", o)
	}
	if o := outcomes[2]; !o.Dynamic || o.Constant != 0 || o.Indicator.Population() != 6 {
		t.Fatalf("beacon run: %+v", o)
	}
	if o := outcomes[3]; o.Dynamic || o.Constant != 0 {
		t.Fatalf("single-cell run: %+v", o)
	}
	if b.DynamicVisits() != 1 {
		t.Fatalf("DynamicVisits = %d, want 1", b.DynamicVisits())
	}
	if got := len(Indicators(outcomes)); got != 4 {
		t.Fatalf("Indicators = %d, want 4", got)
	}
}

func TestBatchInvariantViolation(t *testing.T) {
	// A diagonal of three cells collapses to its centre cell in one step.
	diag := pcore.NewLattice(6, 6)
	diag.Set(1, 1, 1)
	diag.Set(2, 2, 1)
	diag.Set(3, 3, 1)
	b := newBatch(t, []*pcore.Lattice{pattern(t, "block"), diag}, 2)

	_, err := b.Classify()
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}
	var inv *InvariantError
	if !errors.As(err, &inv) || inv.Run != 1 || inv.MinPopulation != 1 {
		t.Fatalf("unexpected error detail %#v", inv)
	}
}

func TestBatchHistoryMatchesSingle(t *testing.T) {
	rng := pcore.NewRNG(21)
	b, err := RandomBatch(rng, 5, 6, 6, 0.45, DefaultBatchOptions())
	if err != nil {
		t.Fatalf("RandomBatch: %v", err)
	}
	if err := b.Simulate(context.Background(), 15); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	for r := 0; r < b.Runs(); r++ {
		s, _ := NewSingle(b.Snapshot(0, r), DefaultSingleOptions())
		if _, err := s.Run(context.Background(), 15); err != nil {
			t.Fatalf("Run: %v", err)
		}
		for i, snap := range History(b, r) {
			if !snap.Equal(s.History()[i]) {
				t.Fatalf("run %d diverged at step %d", r, i)
			}
		}
	}
}

func TestBatchInvalidConfig(t *testing.T) {
	if _, err := NewBatch(nil, DefaultBatchOptions()); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("empty batch: %v", err)
	}
	mixed := []*pcore.Lattice{pcore.NewLattice(6, 6), pcore.NewLattice(5, 6)}
	if _, err := NewBatch(mixed, DefaultBatchOptions()); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("mixed sizes: %v", err)
	}
	b, _ := NewBatch([]*pcore.Lattice{pcore.NewLattice(6, 6)}, DefaultBatchOptions())
	if err := b.Simulate(context.Background(), 0); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("zero steps: %v", err)
	}
	if _, err := b.Classify(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("classify before simulate: %v", err)
	}
}

func TestBatchStepCancelledLeavesHistory(t *testing.T) {
	b := newBatch(t, []*pcore.Lattice{pcore.NewLattice(6, 6), pcore.NewLattice(6, 6)}, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Step(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if b.Steps() != 3 {
		t.Fatalf("steps = %d after cancelled step, want 3", b.Steps())
	}
	if err := b.Simulate(ctx, 5); !errors.Is(err, context.Canceled) {
		t.Fatalf("Simulate: expected context.Canceled, got %v", err)
	}
	if b.Steps() != 3 {
		t.Fatalf("steps = %d after cancelled simulate, want 3", b.Steps())
	}
}
