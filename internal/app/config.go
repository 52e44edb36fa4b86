// Package app replays the history of a single run, in an ebiten window when
// built with the ebiten tag.
package app

import (
	"context"
	"flag"
	"fmt"

	"toroid/internal/convergence"
	"toroid/internal/core"
	"toroid/internal/engine"
	"toroid/internal/storage"
	pcore "toroid/pkg/core"
	_ "toroid/pkg/sims/life" // registers the named patterns
)

// Config selects the run to replay and how to show it.
type Config struct {
	Pattern          string
	LatticePath      string
	Width            int
	Height           int
	AliveProbability float64
	Seed             int64
	Steps            int
	Window           int
	FPS              int
	Scale            int
	Transitions      bool
}

// NewConfig returns the viewer defaults.
func NewConfig() *Config {
	return &Config{
		Width:            6,
		Height:           6,
		AliveProbability: -1,
		Seed:             1337,
		Steps:            100,
		Window:           30,
		FPS:              4,
		Scale:            48,
	}
}

// Bind registers the viewer flags on fs.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Pattern, "pattern", c.Pattern, "named initial pattern (random when empty)")
	fs.StringVar(&c.LatticePath, "lattice", c.LatticePath, "JSON file with the initial lattice")
	fs.IntVar(&c.Width, "width", c.Width, "lattice width")
	fs.IntVar(&c.Height, "height", c.Height, "lattice height")
	fs.Float64Var(&c.AliveProbability, "p", c.AliveProbability, "alive probability of a random lattice (negative draws one)")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "random seed")
	fs.IntVar(&c.Steps, "steps", c.Steps, "maximum steps to simulate")
	fs.IntVar(&c.Window, "window", c.Window, "convergence window")
	fs.IntVar(&c.FPS, "fps", c.FPS, "replay frames per second")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixels per cell")
	fs.BoolVar(&c.Transitions, "transitions", c.Transitions, "colour births and deaths")
}

// Initial builds the starting lattice: a lattice file wins over a named
// pattern, which wins over a random lattice.
func (c *Config) Initial() (*pcore.Lattice, error) {
	switch {
	case c.LatticePath != "":
		return storage.LoadLattice(c.LatticePath)
	case c.Pattern != "":
		f, ok := core.Patterns()[c.Pattern]
		if !ok {
			return nil, fmt.Errorf("unknown pattern %q (have %v)", c.Pattern, core.PatternNames())
		}
		return f(c.Width, c.Height), nil
	default:
		return pcore.NewRNG(c.Seed).RandomLattice(c.Width, c.Height, c.AliveProbability), nil
	}
}

// Recording is a simulated run ready for replay.
type Recording struct {
	History []*pcore.Lattice
	Record  convergence.Record
	OK      bool
}

// Record simulates the configured run without stopping at convergence.
func (c *Config) Record(ctx context.Context) (*Recording, error) {
	initial, err := c.Initial()
	if err != nil {
		return nil, err
	}
	opts := engine.DefaultSingleOptions()
	opts.Window = c.Window
	e, err := engine.NewSingle(initial, opts)
	if err != nil {
		return nil, err
	}
	if _, err := e.Run(ctx, c.Steps); err != nil {
		return nil, err
	}
	rec, ok := e.Record()
	return &Recording{History: engine.History(e, 0), Record: rec, OK: ok}, nil
}

// Caption describes frame i of r.
func (r *Recording) Caption(i int) string {
	s := fmt.Sprintf("step %d/%d  pop %d", i, len(r.History)-1, r.History[i].Population())
	if r.OK && i >= r.Record.Step {
		s += "  " + r.Record.String()
	}
	return s
}
