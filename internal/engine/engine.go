// Package engine drives the Life kernel over one lattice (Single) or many
// lattices in lockstep (Batch) and classifies where each run ended up.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"toroid/internal/convergence"
	"toroid/pkg/core"
)

var (
	// ErrInvalidConfig reports unusable engine parameters or input lattices.
	ErrInvalidConfig = errors.New("invalid engine configuration")
	// ErrInvariantViolation reports an internally inconsistent classification.
	ErrInvariantViolation = errors.New("classification invariant violated")
)

// InvariantError identifies the run whose dynamic classification is
// impossible: a single surviving cell cannot sustain a periodic pattern.
type InvariantError struct {
	Run           int
	MinPopulation int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%v: run %d flagged dynamic with window-minimum population %d",
		ErrInvariantViolation, e.Run, e.MinPopulation)
}

func (e *InvariantError) Unwrap() error { return ErrInvariantViolation }

// State is the lifecycle of a single run.
type State int

const (
	Running State = iota
	Converged
	Exhausted
)

func (s State) String() string {
	switch s {
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	default:
		return "running"
	}
}

// Outcome is the classification of one run.
type Outcome struct {
	Run       int
	Type      convergence.Type
	Dynamic   bool
	Constant  int
	Step      int
	Indicator *core.Lattice
}

// Engine is the capability shared by the single-run and batched engines.
type Engine interface {
	// Step records the current generation(s) and advances by one.
	Step(ctx context.Context) error
	// Steps is the number of recorded history snapshots.
	Steps() int
	// Runs is the number of independent lattices.
	Runs() int
	// Snapshot returns the recorded lattice of run at step.
	Snapshot(step, run int) *core.Lattice
	// Classify reports one outcome per run.
	Classify() ([]Outcome, error)
}

// Indicators collects the indicator states of converged outcomes.
func Indicators(outcomes []Outcome) []*core.Lattice {
	out := make([]*core.Lattice, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Indicator != nil {
			out = append(out, o.Indicator)
		}
	}
	return out
}

// History returns every snapshot of one run in step order.
func History(e Engine, run int) []*core.Lattice {
	out := make([]*core.Lattice, e.Steps())
	for i := range out {
		out[i] = e.Snapshot(i, run)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
