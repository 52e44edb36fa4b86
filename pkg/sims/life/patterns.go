package life

import (
	"toroid/internal/core"
	pcore "toroid/pkg/core"
)

// stamp places the given (row, col) offsets around the lattice centre.
func stamp(w, h int, cells [][2]int) *pcore.Lattice {
	l := pcore.NewLattice(w, h)
	cy, cx := h/2-1, w/2-1
	for _, c := range cells {
		l.Set(cx+c[1], cy+c[0], 1)
	}
	return l
}

func init() {
	core.Register("empty", func(w, h int) *pcore.Lattice { return pcore.NewLattice(w, h) })
	core.Register("single", func(w, h int) *pcore.Lattice {
		return stamp(w, h, [][2]int{{0, 0}})
	})
	core.Register("block", func(w, h int) *pcore.Lattice {
		return stamp(w, h, [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}})
	})
	core.Register("blinker", func(w, h int) *pcore.Lattice {
		return stamp(w, h, [][2]int{{-1, 0}, {0, 0}, {1, 0}})
	})
	core.Register("beacon", func(w, h int) *pcore.Lattice {
		return stamp(w, h, [][2]int{
			{-1, -1}, {-1, 0}, {0, -1}, {0, 0},
			{1, 1}, {1, 2}, {2, 1}, {2, 2},
		})
	})
	core.Register("glider", func(w, h int) *pcore.Lattice {
		return stamp(w, h, [][2]int{{-1, 0}, {0, 1}, {1, -1}, {1, 0}, {1, 1}})
	})
}
