// Package attractor normalizes converged lattices and deduplicates them into
// a catalog of distinct attractor shapes.
//
// Shapes are keyed by their torque, the summed circular variance of the
// recentered alive-cell coordinates. Torque is a lossy fingerprint: distinct
// shapes can share a value, and no exact shape comparison backs it up.
package attractor

import (
	"math"

	"toroid/pkg/core"
)

// recenterOffset moves a recentered pattern away from the origin so it sits
// near the middle of a 6×6 torus.
const recenterOffset = 2

// snapEpsilon absorbs floating-point noise in circular means that should be
// integral, so translated copies floor to the same centre.
const snapEpsilon = 1e-9

// Canonical is a translation-normalized lattice and its fingerprint.
type Canonical struct {
	State  *core.Lattice
	Torque float64
}

// CircularMean returns the circular mean of values on a circle of
// circumference period, in [0, period).
func CircularMean(values []float64, period float64) float64 {
	if len(values) == 0 {
		return 0
	}
	s, c := sumSinCos(values, period)
	angle := math.Atan2(s/float64(len(values)), c/float64(len(values)))
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle * period / (2 * math.Pi)
}

// CircularVariance returns 1 - R, where R is the mean resultant length of the
// values mapped onto a circle of circumference period.
func CircularVariance(values []float64, period float64) float64 {
	if len(values) == 0 {
		return 0
	}
	s, c := sumSinCos(values, period)
	n := float64(len(values))
	return 1 - math.Hypot(s/n, c/n)
}

func sumSinCos(values []float64, period float64) (s, c float64) {
	for _, v := range values {
		theta := 2 * math.Pi * v / period
		s += math.Sin(theta)
		c += math.Cos(theta)
	}
	return s, c
}

// center floors the circular mean of one axis to a grid coordinate.
func center(values []float64, period int) int {
	m := CircularMean(values, float64(period))
	if r := math.Round(m); math.Abs(m-r) < snapEpsilon {
		m = r
	}
	return mod(int(math.Floor(m)), period)
}

func mod(v, p int) int {
	return (v%p + p) % p
}

// Canonicalize shifts the alive cells of l so that their toroidal centre of
// mass lands at a fixed position, and computes the torque of the result.
// An empty lattice canonicalizes to itself with zero torque.
func Canonicalize(l *core.Lattice) Canonical {
	out := core.NewLattice(l.W, l.H)
	alive := l.Alive()
	if len(alive) == 0 {
		return Canonical{State: out}
	}

	rows := make([]float64, len(alive))
	cols := make([]float64, len(alive))
	for i, p := range alive {
		rows[i] = float64(p.Row)
		cols[i] = float64(p.Col)
	}
	cr := center(rows, l.H)
	cc := center(cols, l.W)

	for i, p := range alive {
		r := mod(mod(p.Row-cr, l.H)+recenterOffset, l.H)
		c := mod(mod(p.Col-cc, l.W)+recenterOffset, l.W)
		out.Cells()[out.Index(c, r)] = 1
		rows[i] = float64(r)
		cols[i] = float64(c)
	}

	torque := CircularVariance(rows, float64(l.H)) + CircularVariance(cols, float64(l.W))
	return Canonical{State: out, Torque: torque}
}
