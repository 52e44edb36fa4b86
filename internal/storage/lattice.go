// Package storage reads and writes lattices, attractor-candidate files and
// survey results.
package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"toroid/pkg/core"
)

// LoadLattice reads a row-major JSON array of 0/1 integers.
func LoadLattice(path string) (*core.Lattice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lattice: %w", err)
	}
	var rows [][]int
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrInvalidLattice, path, err)
	}
	cells := make([][]uint8, len(rows))
	for y, row := range rows {
		cells[y] = make([]uint8, len(row))
		for x, v := range row {
			if v != 0 && v != 1 {
				return nil, fmt.Errorf("%w: %s: cell (%d,%d) = %d", core.ErrInvalidLattice, path, y, x, v)
			}
			cells[y][x] = uint8(v)
		}
	}
	l, err := core.FromRows(cells)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// SaveLattice writes l as a row-major JSON array.
func SaveLattice(path string, l *core.Lattice) error {
	rows := make([][]int, l.H)
	for y, row := range l.Rows() {
		rows[y] = make([]int, len(row))
		for x, v := range row {
			rows[y][x] = int(v)
		}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encoding lattice: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing lattice: %w", err)
	}
	return nil
}
