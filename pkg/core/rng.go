package core

import "math/rand/v2"

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
// It is passed explicitly to anything that needs randomness so independent
// runs stay reproducible.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// FillBernoulli sets each cell alive with probability p.
func FillBernoulli(r *rand.Rand, buf []uint8, p float64) {
	for i := range buf {
		buf[i] = 0
		if r.Float64() < p {
			buf[i] = 1
		}
	}
}

// RandomLattice draws a w×h lattice where each cell is alive with probability
// p. A negative p draws the probability itself from the RNG first.
func (r *RNG) RandomLattice(w, h int, p float64) *Lattice {
	if p < 0 {
		p = r.r.Float64()
	}
	l := NewLattice(w, h)
	FillBernoulli(r.r, l.data, p)
	return l
}
