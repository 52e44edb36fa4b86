package main

import (
	"context"
	"fmt"
	"image/color"
	"image/png"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"toroid/internal/app"
	"toroid/internal/convergence"
	"toroid/internal/core"
	"toroid/internal/engine"
	"toroid/internal/render"
	pcore "toroid/pkg/core"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one lattice until it converges or the step budget is spent",
		Long: `Simulate a single run and report the first detected convergence.

The initial lattice comes from --lattice (JSON rows of 0/1), a named
--pattern, or a random lattice drawn from the configured seed.

Examples:
  toroid simulate --pattern beacon
  toroid simulate --lattice init.json --replay-fps 8
  toroid simulate --set break_on_convergence=true --reclassify`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			pattern, _ := cmd.Flags().GetString("pattern")
			latticePath, _ := cmd.Flags().GetString("lattice")
			fps, _ := cmd.Flags().GetInt("replay-fps")
			frames, _ := cmd.Flags().GetBool("frames")
			reclassify, _ := cmd.Flags().GetBool("reclassify")
			pngPath, _ := cmd.Flags().GetString("png")
			scale, _ := cmd.Flags().GetInt("scale")

			src := app.Config{
				Pattern:          pattern,
				LatticePath:      latticePath,
				Width:            cfg.Width,
				Height:           cfg.Height,
				AliveProbability: cfg.AliveProbability,
				Seed:             cfg.Seed,
			}
			initial, err := src.Initial()
			if err != nil {
				return err
			}

			opts := cfg.SingleOptions()
			opts.Logger = log
			e, err := engine.NewSingle(initial, opts)
			if err != nil {
				return err
			}
			state, err := e.Run(cmd.Context(), cfg.MaxSteps)
			if err != nil {
				return err
			}

			history := engine.History(e, 0)
			out := cmd.OutOrStdout()
			switch {
			case fps > 0:
				if err := replayText(cmd.Context(), out, history, fps); err != nil {
					return err
				}
			case frames:
				for i, l := range history {
					if err := render.Frame(out, i, l); err != nil {
						return err
					}
				}
			}

			fmt.Fprintf(out, "state: %s after %d steps\n", state, e.Steps())
			rec, converged := e.Record()
			if converged {
				printRecord(out, "convergence", rec)
			} else {
				fmt.Fprintln(out, "convergence: none")
			}

			if pngPath != "" {
				shot := history[len(history)-1]
				if converged && rec.Indicator != nil {
					shot = rec.Indicator
				}
				if err := writePNG(pngPath, shot, scale); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s\n", pngPath)
			}

			if reclassify {
				rec, ok, err := convergence.Replay(history, cfg.Window, cfg.ClassifierOptions())
				if err != nil {
					return err
				}
				if ok {
					printRecord(out, "replayed", rec)
				} else {
					fmt.Fprintln(out, "replayed: none")
				}
				final, err := convergence.ClassifyHistory(history, cfg.Window, cfg.ClassifierOptions())
				if err != nil {
					return err
				}
				printRecord(out, "final window", final)
			}
			return nil
		},
	}

	cmd.Flags().String("pattern", "", fmt.Sprintf("Named initial pattern %v", core.PatternNames()))
	cmd.Flags().String("lattice", "", "JSON file with the initial lattice")
	cmd.Flags().Int("replay-fps", 0, "Replay the history as text at this many frames per second")
	cmd.Flags().Bool("frames", false, "Print every recorded frame")
	cmd.Flags().String("png", "", "Write the indicator state (or the final state) as a PNG")
	cmd.Flags().Int("scale", 16, "Pixels per cell in the PNG")
	cmd.Flags().Bool("reclassify", false, "Re-run the classifier over the recorded history")
	return cmd
}

func printRecord(w io.Writer, label string, rec convergence.Record) {
	fmt.Fprintf(w, "%s: %s\n", label, rec)
	if rec.Indicator != nil {
		fmt.Fprint(w, render.Text(rec.Indicator))
	}
}

// replayText writes one frame per tick, clearing the terminal between frames.
func replayText(ctx context.Context, w io.Writer, history []*pcore.Lattice, fps int) error {
	tick := time.NewTicker(core.NewFixedStep(fps).Interval())
	defer tick.Stop()
	for i, l := range history {
		fmt.Fprint(w, "\x1b[H\x1b[2J")
		if err := render.Frame(w, i, l); err != nil {
			return err
		}
		if i == len(history)-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
	return nil
}

func writePNG(path string, l *pcore.Lattice, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating png: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, render.Image(l, scale, color.White, color.Black)); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return f.Close()
}
