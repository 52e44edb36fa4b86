// Package render turns lattices into RGBA pixels and text frames.
package render

import (
	"image"
	"image/color"

	"toroid/pkg/core"
)

// Cell transitions between two consecutive generations.
const (
	Dead uint8 = iota
	Born
	Survived
	Died
)

// DefaultPalette colours Dead, Born, Survived and Died cells.
var DefaultPalette = []color.RGBA{
	{0x10, 0x10, 0x14, 0xff},
	{0x7c, 0xd9, 0x92, 0xff},
	{0xf2, 0xf2, 0xf2, 0xff},
	{0x8a, 0x3b, 0x3b, 0xff},
}

// FillRGBA converts binary cell data (0/1) into RGBA pixels in buf.
func FillRGBA(buf []byte, cells []uint8, on, off color.Color) {
	rOn, gOn, bOn, aOn := on.RGBA()
	rOff, gOff, bOff, aOff := off.RGBA()
	for i, c := range cells {
		base := i * 4
		if c != 0 {
			buf[base+0] = uint8(rOn >> 8)
			buf[base+1] = uint8(gOn >> 8)
			buf[base+2] = uint8(bOn >> 8)
			buf[base+3] = uint8(aOn >> 8)
			continue
		}
		buf[base+0] = uint8(rOff >> 8)
		buf[base+1] = uint8(gOff >> 8)
		buf[base+2] = uint8(bOff >> 8)
		buf[base+3] = uint8(aOff >> 8)
	}
}

// FillPaletteRGBA converts cell codes into RGBA pixels. Codes beyond the
// palette use its last colour; an empty palette clears buf to transparent
// black.
func FillPaletteRGBA(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		clear(buf[:len(cells)*4])
		return
	}
	last := len(palette) - 1
	for i, c := range cells {
		col := palette[min(int(c), last)]
		base := i * 4
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// Transitions writes the per-cell transition code from prev to cur into dst.
// A nil prev treats every live cell as surviving.
func Transitions(dst []uint8, prev, cur *core.Lattice) {
	now := cur.Cells()
	if prev == nil {
		copy(dst, now)
		for i, v := range now {
			if v != 0 {
				dst[i] = Survived
			}
		}
		return
	}
	was := prev.Cells()
	for i := range now {
		switch {
		case was[i] == 0 && now[i] == 0:
			dst[i] = Dead
		case was[i] == 0:
			dst[i] = Born
		case now[i] == 0:
			dst[i] = Died
		default:
			dst[i] = Survived
		}
	}
}

// Image renders l with each cell scaled to a scale×scale block.
func Image(l *core.Lattice, scale int, on, off color.Color) *image.RGBA {
	scale = max(scale, 1)
	small := make([]byte, l.W*l.H*4)
	FillRGBA(small, l.Cells(), on, off)
	img := image.NewRGBA(image.Rect(0, 0, l.W*scale, l.H*scale))
	for y := 0; y < l.H*scale; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+l.W*scale*4]
		for x := 0; x < l.W*scale; x++ {
			src := ((y/scale)*l.W + x/scale) * 4
			copy(row[x*4:x*4+4], small[src:src+4])
		}
	}
	return img
}
