package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"toroid/internal/attractor"
	"toroid/internal/convergence"
	"toroid/internal/engine"
	"toroid/internal/render"
	"toroid/internal/storage"
)

func comma(n int) string { return humanize.Comma(int64(n)) }

func printOutcomes(w io.Writer, outcomes []engine.Outcome) {
	var zero, constant, dynamic int
	for _, o := range outcomes {
		switch {
		case o.Type == convergence.Dynamic:
			dynamic++
		case o.Constant == 0:
			zero++
		default:
			constant++
		}
	}
	fmt.Fprintf(w, "runs: %s  died out: %s  constant: %s  dynamic: %s\n",
		comma(len(outcomes)), comma(zero), comma(constant), comma(dynamic))
}

// printCatalog lists at most top entries (all when top <= 0) in catalog order.
func printCatalog(w io.Writer, cat *attractor.Catalog, top int) {
	fmt.Fprintf(w, "%s distinct attractors from %s observations\n", comma(cat.Len()), comma(cat.Total()))
	e, p, ok := cat.MostLikely()
	if !ok {
		return
	}
	fmt.Fprintf(w, "most likely: population %d  torque %.6f  p=%.4f (%s hits)\n%s",
		e.State.Population(), e.Torque, p, comma(e.Hits), render.Text(e.State))

	entries := cat.Entries()
	if top <= 0 || top > len(entries) {
		top = len(entries)
	}
	fmt.Fprintf(w, "\n%4s  %4s  %12s  %8s  %9s\n", "rank", "pop", "torque", "hits", "frequency")
	for i := 0; i < top; i++ {
		e := entries[i]
		fmt.Fprintf(w, "%4d  %4d  %12.6f  %8s  %9.4f\n",
			i+1, e.State.Population(), e.Torque, comma(e.Hits), cat.Frequency(i))
	}
}

func printSurveys(w io.Writer, surveys []storage.Survey) {
	if len(surveys) == 0 {
		fmt.Fprintln(w, "no stored surveys")
		return
	}
	for _, s := range surveys {
		fmt.Fprintf(w, "%s  %s  %dx%d  runs %s  steps %d  dynamic %s  (%s)\n",
			s.ID, s.CreatedAt.Format("2006-01-02 15:04:05"), s.Width, s.Height,
			comma(s.Runs), s.Steps, comma(s.Dynamic), humanize.Time(s.CreatedAt))
	}
}

func printAttractors(w io.Writer, atts []storage.Attractor) {
	for _, a := range atts {
		fmt.Fprintf(w, "#%d  population %d  torque %.6f  hits %s  frequency %.4f\n",
			a.Rank, a.Population, a.Torque, comma(a.Hits), a.Frequency)
		if len(a.Cells) == a.Width*a.Height && a.Width > 0 {
			fmt.Fprint(w, render.Text(latticeOf(a)))
		}
	}
}
