//go:build ebiten

package app

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"toroid/internal/core"
	"toroid/internal/render"
	pcore "toroid/pkg/core"
)

// Game replays a Recording frame by frame.
type Game struct {
	rec     *Recording
	painter *render.GridPainter
	pacer   *core.FixedStep
	codes   []uint8

	onColor  color.Color
	offColor color.Color

	scale       int
	frame       int
	paused      bool
	tickOnce    bool
	transitions bool
}

// New constructs a Game for rec.
func New(rec *Recording, cfg *Config) *Game {
	first := rec.History[0]
	return &Game{
		rec:         rec,
		painter:     render.NewGridPainter(first.W, first.H),
		pacer:       core.NewFixedStep(cfg.FPS),
		codes:       make([]uint8, first.W*first.H),
		onColor:     color.White,
		offColor:    color.Black,
		scale:       cfg.Scale,
		transitions: cfg.Transitions,
	}
}

// Update handles input and advances the replay at the configured rate.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) || inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) && g.frame > 0 {
		g.frame--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.frame = 0
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.transitions = !g.transitions
	}

	advance := g.pacer.ShouldStep()
	if (!g.paused && advance) || g.tickOnce {
		if g.frame < len(g.rec.History)-1 {
			g.frame++
		}
		g.tickOnce = false
	}
	return nil
}

// Draw renders the current frame and its caption.
func (g *Game) Draw(screen *ebiten.Image) {
	cur := g.rec.History[g.frame]
	if g.transitions {
		var prev *pcore.Lattice
		if g.frame > 0 {
			prev = g.rec.History[g.frame-1]
		}
		render.Transitions(g.codes, prev, cur)
		g.painter.BlitPalette(screen, g.codes, render.DefaultPalette, g.scale)
	} else {
		g.painter.Blit(screen, cur.Cells(), g.onColor, g.offColor, g.scale)
	}
	ebitenutil.DebugPrint(screen, g.rec.Caption(g.frame))
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	first := g.rec.History[0]
	return first.W * g.scale, first.H * g.scale
}
