//go:build ebiten

package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"toroid/internal/app"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	rec, err := cfg.Record(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	game := app.New(rec, cfg)
	first := rec.History[0]

	ebiten.SetWindowTitle("toroid replay")
	ebiten.SetWindowSize(first.W*cfg.Scale, first.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
