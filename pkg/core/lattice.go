package core

import (
	"errors"
	"fmt"
)

// ErrInvalidLattice reports malformed lattice input such as ragged rows or
// cell values other than 0 and 1.
var ErrInvalidLattice = errors.New("invalid lattice")

// Point is an alive-cell coordinate as (row, col).
type Point struct {
	Row, Col int
}

// Lattice stores a W×H toroidal grid of 0/1 cells in row-major order.
type Lattice struct {
	W, H int
	data []uint8
}

// NewLattice allocates an all-dead lattice with the given dimensions.
func NewLattice(w, h int) *Lattice {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &Lattice{W: w, H: h, data: make([]uint8, w*h)}
}

// View wraps an existing row-major buffer without copying. The caller must not
// mutate cells afterwards if the view is used as a history snapshot.
func View(w, h int, cells []uint8) *Lattice {
	return &Lattice{W: w, H: h, data: cells[:w*h:w*h]}
}

// FromRows builds a lattice from a rectangular row-major array of 0/1 values.
func FromRows(rows [][]uint8) (*Lattice, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrInvalidLattice)
	}
	h, w := len(rows), len(rows[0])
	l := NewLattice(w, h)
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidLattice, y, len(row), w)
		}
		for x, v := range row {
			if v > 1 {
				return nil, fmt.Errorf("%w: cell (%d,%d) = %d", ErrInvalidLattice, y, x, v)
			}
			l.data[y*w+x] = v
		}
	}
	return l, nil
}

// Cells exposes the backing slice so callers can read/write values directly.
func (l *Lattice) Cells() []uint8 { return l.data }

// Index returns the linear slice index for coordinates (x, y).
func (l *Lattice) Index(x, y int) int { return y*l.W + x }

// Wrap applies toroidal wrapping to the provided coordinates.
func (l *Lattice) Wrap(x, y int) (int, int) {
	x = (x%l.W + l.W) % l.W
	y = (y%l.H + l.H) % l.H
	return x, y
}

// At returns the cell at (x, y) after toroidal wrapping.
func (l *Lattice) At(x, y int) uint8 {
	x, y = l.Wrap(x, y)
	return l.data[l.Index(x, y)]
}

// Set writes the cell at (x, y) after toroidal wrapping.
func (l *Lattice) Set(x, y int, v uint8) {
	x, y = l.Wrap(x, y)
	l.data[l.Index(x, y)] = v
}

// Population counts alive cells.
func (l *Lattice) Population() int {
	return Population(l.data)
}

// Population counts non-zero cells in a packed buffer.
func Population(cells []uint8) int {
	n := 0
	for _, c := range cells {
		n += int(c)
	}
	return n
}

// Alive lists alive cells in row-major order.
func (l *Lattice) Alive() []Point {
	var pts []Point
	for i, c := range l.data {
		if c != 0 {
			pts = append(pts, Point{Row: i / l.W, Col: i % l.W})
		}
	}
	return pts
}

// Clone returns a deep copy.
func (l *Lattice) Clone() *Lattice {
	return &Lattice{W: l.W, H: l.H, data: append([]uint8(nil), l.data...)}
}

// Equal reports whether both lattices have the same shape and cells.
func (l *Lattice) Equal(o *Lattice) bool {
	if l == nil || o == nil {
		return l == o
	}
	if l.W != o.W || l.H != o.H {
		return false
	}
	for i := range l.data {
		if l.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// Rows returns the lattice as a freshly allocated row-major 2D slice.
func (l *Lattice) Rows() [][]uint8 {
	rows := make([][]uint8, l.H)
	for y := range rows {
		rows[y] = append([]uint8(nil), l.data[y*l.W:(y+1)*l.W]...)
	}
	return rows
}
