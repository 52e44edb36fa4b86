// Package convergence classifies a population time series as not yet
// converged, settled on a constant population, or cycling through a dynamic
// attractor.
//
// The thresholds are empirical. A CONSTANT verdict means the cell count is
// stable, not that the pattern itself is stationary, and a DYNAMIC verdict is
// inferred from first and second moments of two half-windows rather than from
// an exact period.
package convergence

import (
	"errors"
	"fmt"
	"math"

	"toroid/pkg/core"
)

// Type is the outcome of a classification.
type Type string

const (
	None     Type = "none"
	Constant Type = "constant"
	Dynamic  Type = "dynamic"
)

// Policy selects how a nonzero constant plateau is detected.
type Policy string

const (
	// PolicyRawVariance tests the variance of the recent half-window.
	PolicyRawVariance Policy = "raw-variance"
	// PolicyDiffVariance tests the variance of consecutive differences in the
	// recent half-window.
	PolicyDiffVariance Policy = "diff-variance"
)

// ErrIndicatorMismatch means a constant record's final state does not carry
// the declared population.
var ErrIndicatorMismatch = errors.New("indicator state population does not match constant")

// Options holds the classifier thresholds.
type Options struct {
	Policy Policy
	// ConstantTolerance is the absolute tolerance for "variance is zero".
	ConstantTolerance float64
	// OscillationThreshold bounds the windowed mean and variance differences.
	OscillationThreshold float64
	// MinConstantSamples is the history needed before a nonzero plateau can be declared.
	MinConstantSamples int
	// MinPeriodicSamples is the history needed before periodicity is checked.
	MinPeriodicSamples int
}

// DefaultOptions returns the thresholds the survey was tuned with.
func DefaultOptions() Options {
	return Options{
		Policy:               PolicyRawVariance,
		ConstantTolerance:    1e-8,
		OscillationThreshold: 0.2,
		MinConstantSamples:   5,
		MinPeriodicSamples:   20,
	}
}

// Stats carries the half-window comparison used for the dynamic verdict.
type Stats struct {
	MeanDiff float64
	VarDiff  float64
}

// Result is the verdict for one window.
type Result struct {
	Type     Type
	Constant int
	Stats    Stats
}

// Record is the first detected convergence of a run.
type Record struct {
	Type      Type
	Constant  int
	Step      int
	Indicator *core.Lattice
}

func (r Record) String() string {
	if r.Type == Constant {
		return fmt.Sprintf("%s(%d) at step %d", r.Type, r.Constant, r.Step)
	}
	return fmt.Sprintf("%s at step %d", r.Type, r.Step)
}

// Window returns the trailing size elements of series.
func Window(series []int, size int) []int {
	if size <= 0 || len(series) <= size {
		return series
	}
	return series[len(series)-size:]
}

// Classify inspects the most recent population values.
func Classify(window []int, opts Options) Result {
	n := len(window)
	if n == 0 {
		return Result{Type: None}
	}
	last := window[n-1]
	if last == 0 {
		return Result{Type: Constant, Constant: 0}
	}
	if n < opts.MinConstantSamples {
		return Result{Type: None}
	}

	far, recent := window[:n/2], window[n/2:]

	var plateau float64
	switch opts.Policy {
	case PolicyDiffVariance:
		plateau = Variance(diffs(recent))
	default:
		plateau = Variance(recent)
	}
	if plateau <= opts.ConstantTolerance {
		return Result{Type: Constant, Constant: last}
	}

	if n < opts.MinPeriodicSamples {
		return Result{Type: None}
	}

	stats := Stats{
		MeanDiff: math.Abs(mean(far) - mean(recent)),
		VarDiff:  math.Abs(Variance(far) - Variance(recent)),
	}
	if stats.MeanDiff < opts.OscillationThreshold || stats.VarDiff < opts.OscillationThreshold {
		return Result{Type: Dynamic, Stats: stats}
	}
	return Result{Type: None, Stats: stats}
}

// Indicator picks the state representing a converged run from the states
// covered by the classified window. Constant runs use the last state; dynamic
// runs use the earliest state with the smallest population.
func Indicator(res Result, states []*core.Lattice) (*core.Lattice, error) {
	if len(states) == 0 {
		return nil, nil
	}
	switch res.Type {
	case Constant:
		last := states[len(states)-1]
		if pop := last.Population(); pop != res.Constant {
			return nil, fmt.Errorf("%w: population %d, constant %d", ErrIndicatorMismatch, pop, res.Constant)
		}
		return last, nil
	case Dynamic:
		best, bestPop := 0, states[0].Population()
		for i, s := range states[1:] {
			if pop := s.Population(); pop < bestPop {
				best, bestPop = i+1, pop
			}
		}
		return states[best], nil
	}
	return nil, nil
}

func diffs(xs []int) []int {
	if len(xs) < 2 {
		return nil
	}
	out := make([]int, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out[i-1] = xs[i] - xs[i-1]
	}
	return out
}

func mean(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}

// Variance is the population variance (ddof 0).
func Variance(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var acc float64
	for _, x := range xs {
		d := float64(x) - m
		acc += d * d
	}
	return acc / float64(len(xs))
}
