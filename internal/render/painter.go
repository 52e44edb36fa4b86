//go:build ebiten

package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// GridPainter uploads cell buffers to an ebiten image and draws it scaled.
type GridPainter struct {
	w, h int
	img  *ebiten.Image
	pix  []byte
}

func NewGridPainter(w, h int) *GridPainter {
	return &GridPainter{w: w, h: h, img: ebiten.NewImage(w, h), pix: make([]byte, w*h*4)}
}

// Blit draws binary cells in two colours.
func (p *GridPainter) Blit(screen *ebiten.Image, cells []uint8, on, off color.Color, scale int) {
	FillRGBA(p.pix, cells, on, off)
	p.draw(screen, scale)
}

// BlitPalette draws cell codes through a palette.
func (p *GridPainter) BlitPalette(screen *ebiten.Image, cells []uint8, palette []color.RGBA, scale int) {
	FillPaletteRGBA(p.pix, cells, palette)
	p.draw(screen, scale)
}

func (p *GridPainter) draw(screen *ebiten.Image, scale int) {
	p.img.WritePixels(p.pix)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	screen.DrawImage(p.img, op)
}
