package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"toroid/internal/survey"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Survey a grid of lattice sizes and alive probabilities",
		Long: `Run one survey per (size, alive probability) pair on a pool of workers and
rank the scenarios by the number of distinct attractors they reached.

Examples:
  toroid sweep --sizes 4x4,5x5,6x6 --probabilities 0.2,0.35,0.5 --parallel 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			sizesFlag, _ := cmd.Flags().GetString("sizes")
			probFlag, _ := cmd.Flags().GetString("probabilities")
			parallel, _ := cmd.Flags().GetInt("parallel")
			top, _ := cmd.Flags().GetInt("top")

			sizes, err := parseSizes(sizesFlag)
			if err != nil {
				return err
			}
			probs, err := parseProbabilities(probFlag)
			if err != nil {
				return err
			}
			grid := survey.Grid(sizes, probs)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sweeping %d scenarios (%d workers, %s runs, %d steps)\n",
				len(grid), parallel, comma(cfg.Runs), cfg.MaxSteps)

			start := time.Now()
			results := survey.Sweep(cmd.Context(), survey.FromConfig(cfg, log), grid, parallel)
			if top <= 0 || top > len(results) {
				top = len(results)
			}
			fmt.Fprintf(out, "\nTop %d results (elapsed %s):\n", top, time.Since(start).Round(time.Millisecond))
			for i := 0; i < top; i++ {
				r := results[i]
				if r.Err != nil {
					fmt.Fprintf(out, "%2d) %s: %v\n", i+1, r.Scenario, r.Err)
					continue
				}
				line := fmt.Sprintf("%2d) %s  distinct=%d  dynamic=%s", i+1, r.Scenario, r.Distinct(), comma(r.Result.Dynamic))
				if e, p, ok := r.Result.Catalog.MostLikely(); ok {
					line += fmt.Sprintf("  top pop=%d p=%.3f", e.State.Population(), p)
				}
				fmt.Fprintln(out, line)
			}
			for _, r := range results {
				if r.Err != nil {
					return fmt.Errorf("scenario %s: %w", r.Scenario, r.Err)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("sizes", "4x4,5x5,6x6", "Comma-separated WxH lattice sizes")
	cmd.Flags().String("probabilities", "0.2,0.35,0.5", "Comma-separated alive probabilities")
	cmd.Flags().Int("parallel", 2, "Scenarios surveyed concurrently")
	cmd.Flags().Int("top", 5, "Scenarios to report (0 for all)")
	return cmd
}

func parseSizes(s string) ([][2]int, error) {
	var out [][2]int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ws, hs, ok := strings.Cut(part, "x")
		if !ok {
			return nil, fmt.Errorf("size %q is not WxH", part)
		}
		w, err := strconv.Atoi(ws)
		if err != nil || w <= 0 {
			return nil, fmt.Errorf("size %q: bad width", part)
		}
		h, err := strconv.Atoi(hs)
		if err != nil || h <= 0 {
			return nil, fmt.Errorf("size %q: bad height", part)
		}
		out = append(out, [2]int{w, h})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no sizes given")
	}
	return out, nil
}

func parseProbabilities(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p, err := strconv.ParseFloat(part, 64)
		if err != nil || p > 1 {
			return nil, fmt.Errorf("bad alive probability %q", part)
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no probabilities given")
	}
	return out, nil
}
