package engine

import (
	"context"
	"fmt"
	"log/slog"

	"toroid/internal/convergence"
	"toroid/internal/logging"
	"toroid/pkg/core"
	"toroid/pkg/sims/life"
)

// SingleOptions configures a Single engine.
type SingleOptions struct {
	// Window is the number of trailing population samples the classifier sees.
	Window             int
	BreakOnConvergence bool
	Classifier         convergence.Options
	Logger             *slog.Logger
}

// DefaultSingleOptions returns the options used by the CLI.
func DefaultSingleOptions() SingleOptions {
	return SingleOptions{Window: 30, Classifier: convergence.DefaultOptions()}
}

// Single simulates one lattice step by step and classifies it online.
type Single struct {
	opts    SingleOptions
	log     *slog.Logger
	life    *life.Life
	history []*core.Lattice
	pops    []int
	record  *convergence.Record
	state   State
}

// NewSingle prepares a run starting from a copy of initial.
func NewSingle(initial *core.Lattice, opts SingleOptions) (*Single, error) {
	if initial == nil {
		return nil, fmt.Errorf("%w: nil initial lattice", ErrInvalidConfig)
	}
	if opts.Window < 1 {
		return nil, fmt.Errorf("%w: window must be positive, got %d", ErrInvalidConfig, opts.Window)
	}
	log := opts.Logger
	if log == nil {
		log = discardLogger()
	}
	return &Single{opts: opts, log: log, life: life.FromLattice(initial)}, nil
}

// Step records the current lattice, advances it and re-runs the classifier
// on the trailing window. Only the first detected convergence is kept.
func (s *Single) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	step := len(s.history)
	snap := s.life.Lattice()
	s.history = append(s.history, snap)
	s.pops = append(s.pops, snap.Population())
	s.life.Step()
	s.log.Log(ctx, logging.LevelTrace, "step", "step", step, "population", s.pops[step])

	if s.record != nil {
		return nil
	}
	start := max(len(s.pops)-s.opts.Window, 0)
	res := convergence.Classify(s.pops[start:], s.opts.Classifier)
	if res.Type == convergence.None {
		return nil
	}
	ind, err := convergence.Indicator(res, s.history[start:])
	if err != nil {
		return fmt.Errorf("step %d: %w", step, err)
	}
	s.record = &convergence.Record{Type: res.Type, Constant: res.Constant, Step: step, Indicator: ind}
	s.state = Converged
	s.log.Debug("run converged", "type", res.Type, "constant", res.Constant, "step", step)
	return nil
}

// Run steps until the budget is spent, or until convergence when
// BreakOnConvergence is set.
func (s *Single) Run(ctx context.Context, maxSteps int) (State, error) {
	if maxSteps <= 0 {
		return s.state, fmt.Errorf("%w: step budget must be positive, got %d", ErrInvalidConfig, maxSteps)
	}
	for i := 0; i < maxSteps; i++ {
		if err := s.Step(ctx); err != nil {
			return s.state, err
		}
		if s.record != nil && s.opts.BreakOnConvergence {
			return s.state, nil
		}
	}
	if s.record == nil {
		s.state = Exhausted
		s.log.Debug("step budget exhausted", "steps", len(s.history))
	}
	return s.state, nil
}

// State reports the lifecycle state.
func (s *Single) State() State { return s.state }

// Record returns the first detected convergence, if any.
func (s *Single) Record() (convergence.Record, bool) {
	if s.record == nil {
		return convergence.Record{}, false
	}
	return *s.record, true
}

// History returns the recorded snapshots; index 0 is the initial state.
func (s *Single) History() []*core.Lattice { return s.history }

// Populations returns the alive-cell count of every snapshot.
func (s *Single) Populations() []int { return s.pops }

// Steps implements Engine.
func (s *Single) Steps() int { return len(s.history) }

// Runs implements Engine.
func (s *Single) Runs() int { return 1 }

// Snapshot implements Engine; run is ignored.
func (s *Single) Snapshot(step, _ int) *core.Lattice { return s.history[step] }

// Classify implements Engine with the online record.
func (s *Single) Classify() ([]Outcome, error) {
	if s.record == nil {
		return []Outcome{{Type: convergence.None, Step: len(s.history) - 1}}, nil
	}
	r := s.record
	return []Outcome{{
		Type:      r.Type,
		Dynamic:   r.Type == convergence.Dynamic,
		Constant:  r.Constant,
		Step:      r.Step,
		Indicator: r.Indicator,
	}}, nil
}
