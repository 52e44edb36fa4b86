package render

import (
	"fmt"
	"io"
	"strings"

	"toroid/pkg/core"
)

// Glyphs used by Text.
const (
	AliveGlyph = '#'
	DeadGlyph  = '.'
)

// Text draws l as H lines of W glyphs.
func Text(l *core.Lattice) string {
	var b strings.Builder
	b.Grow((l.W + 1) * l.H)
	for y := 0; y < l.H; y++ {
		for x := 0; x < l.W; x++ {
			if l.At(x, y) != 0 {
				b.WriteByte(AliveGlyph)
			} else {
				b.WriteByte(DeadGlyph)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Frame writes one labelled replay frame.
func Frame(w io.Writer, step int, l *core.Lattice) error {
	_, err := fmt.Fprintf(w, "step %d  population %d\n%s\n", step, l.Population(), Text(l))
	return err
}
