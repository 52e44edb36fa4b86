package engine

import (
	"context"
	"errors"
	"testing"

	"toroid/internal/convergence"
	"toroid/internal/core"
	pcore "toroid/pkg/core"
	_ "toroid/pkg/sims/life"
)

var (
	_ Engine = (*Single)(nil)
	_ Engine = (*Batch)(nil)
)

func pattern(t *testing.T, name string) *pcore.Lattice {
	t.Helper()
	f, ok := core.Patterns()[name]
	if !ok {
		t.Fatalf("pattern %q not registered", name)
	}
	return f(6, 6)
}

func runSingle(t *testing.T, initial *pcore.Lattice, steps int, brk bool) *Single {
	t.Helper()
	opts := DefaultSingleOptions()
	opts.BreakOnConvergence = brk
	s, err := NewSingle(initial, opts)
	if err != nil {
		t.Fatalf("NewSingle: %v", err)
	}
	if _, err := s.Run(context.Background(), steps); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return s
}

func TestSingleConvergence(t *testing.T) {
	tests := []struct {
		pattern  string
		want     convergence.Type
		constant int
		maxStep  int
	}{
		{"empty", convergence.Constant, 0, 0},
		{"single", convergence.Constant, 0, 1},
		{"block", convergence.Constant, 4, 5},
		// A blinker keeps three cells in both phases, so the population
		// plateau is reported before any periodicity check runs.
		{"blinker", convergence.Constant, 3, 5},
		{"beacon", convergence.Dynamic, 0, 19},
	}
	for _, tc := range tests {
		t.Run(tc.pattern, func(t *testing.T) {
			s := runSingle(t, pattern(t, tc.pattern), 100, true)
			rec, ok := s.Record()
			if !ok {
				t.Fatal("expected convergence")
			}
			if rec.Type != tc.want || rec.Constant != tc.constant {
				t.Fatalf("record %s, want %s(%d)", rec, tc.want, tc.constant)
			}
			if rec.Step > tc.maxStep {
				t.Fatalf("converged at step %d, want <= %d", rec.Step, tc.maxStep)
			}
			if s.State() != Converged {
				t.Fatalf("state = %s", s.State())
			}
			if s.Steps() != rec.Step+1 {
				t.Fatalf("break on convergence should stop after step %d, recorded %d", rec.Step, s.Steps())
			}
		})
	}
}

func TestSingleBlockStaysUnchanged(t *testing.T) {
	block := pattern(t, "block")
	s := runSingle(t, block, 12, false)
	for i, snap := range s.History() {
		if !snap.Equal(block) {
			t.Fatalf("block changed at step %d", i)
		}
	}
	rec, _ := s.Record()
	if !rec.Indicator.Equal(block) {
		t.Fatal("constant indicator should be the block itself")
	}
}

func TestSingleDynamicIndicatorIsMinimumPhase(t *testing.T) {
	s := runSingle(t, pattern(t, "beacon"), 40, true)
	rec, _ := s.Record()
	if got := rec.Indicator.Population(); got != 6 {
		t.Fatalf("beacon indicator population = %d, want 6", got)
	}
}

func TestSingleKeepsFirstRecord(t *testing.T) {
	s := runSingle(t, pattern(t, "single"), 30, false)
	rec, ok := s.Record()
	if !ok || rec.Step != 1 {
		t.Fatalf("expected record at step 1, got %v (ok=%v)", rec, ok)
	}
	if s.Steps() != 30 {
		t.Fatalf("without break the full budget should run, got %d steps", s.Steps())
	}
	if s.State() != Converged {
		t.Fatalf("state = %s", s.State())
	}
}

func TestSingleExhausted(t *testing.T) {
	s := runSingle(t, pattern(t, "block"), 3, true)
	if s.State() != Exhausted {
		t.Fatalf("state = %s, want exhausted", s.State())
	}
	if _, ok := s.Record(); ok {
		t.Fatal("no record expected with only three samples")
	}
	outcomes, err := s.Classify()
	if err != nil || len(outcomes) != 1 || outcomes[0].Type != convergence.None {
		t.Fatalf("unexpected outcomes %+v, %v", outcomes, err)
	}
}

func TestSinglePopulationsTrackHistory(t *testing.T) {
	s := runSingle(t, pcore.NewRNG(5).RandomLattice(6, 6, 0.4), 25, false)
	if len(s.Populations()) != len(s.History()) {
		t.Fatalf("populations %d, history %d", len(s.Populations()), len(s.History()))
	}
	for i, snap := range s.History() {
		if snap.Population() != s.Populations()[i] {
			t.Fatalf("population mismatch at step %d", i)
		}
	}
}

func TestSingleInvalidConfig(t *testing.T) {
	if _, err := NewSingle(nil, DefaultSingleOptions()); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("nil lattice: %v", err)
	}
	opts := DefaultSingleOptions()
	opts.Window = 0
	if _, err := NewSingle(pattern(t, "block"), opts); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("zero window: %v", err)
	}
	s, _ := NewSingle(pattern(t, "block"), DefaultSingleOptions())
	if _, err := s.Run(context.Background(), 0); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("zero budget: %v", err)
	}
}

func TestSingleHonoursCancellation(t *testing.T) {
	s, _ := NewSingle(pattern(t, "block"), DefaultSingleOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Run(ctx, 10); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
