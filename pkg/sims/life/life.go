package life

import (
	"toroid/pkg/core"
)

// Step returns the next generation of src under B3/S23 with toroidal
// wrapping. src is not modified.
func Step(src *core.Lattice) *core.Lattice {
	dst := core.NewLattice(src.W, src.H)
	StepInto(dst, src)
	return dst
}

// StepInto writes the next generation of src into dst. Both lattices must
// share dimensions and must not alias.
func StepInto(dst, src *core.Lattice) {
	stepCells(dst.Cells(), src.Cells(), src.W, src.H)
}

func stepCells(nxt, cur []uint8, w, h int) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			neighbors := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx := (x + dx + w) % w
					ny := (y + dy + h) % h
					neighbors += int(cur[ny*w+nx])
				}
			}
			idx := y*w + x
			alive := cur[idx] == 1
			nxt[idx] = 0
			if neighbors == 3 || (alive && neighbors == 2) {
				nxt[idx] = 1
			}
		}
	}
}

// Life is a double-buffered toroidal Game of Life.
type Life struct {
	w, h int
	cur  []uint8
	nxt  []uint8
}

// New returns a Life simulation with the provided dimensions.
func New(w, h int) *Life {
	cells := make([]uint8, w*h)
	return &Life{w: w, h: h, cur: cells, nxt: make([]uint8, len(cells))}
}

// FromLattice seeds a Life simulation with a copy of l.
func FromLattice(l *core.Lattice) *Life {
	lf := New(l.W, l.H)
	copy(lf.cur, l.Cells())
	return lf
}

// Size returns the grid dimensions.
func (l *Life) Size() (w, h int) { return l.w, l.h }

// Cells exposes the current grid values.
func (l *Life) Cells() []uint8 { return l.cur }

// Lattice returns an independent snapshot of the current generation.
func (l *Life) Lattice() *core.Lattice {
	return core.View(l.w, l.h, append([]uint8(nil), l.cur...))
}

// Step advances the simulation by one generation.
func (l *Life) Step() {
	stepCells(l.nxt, l.cur, l.w, l.h)
	l.cur, l.nxt = l.nxt, l.cur
}
