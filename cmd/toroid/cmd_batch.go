package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"toroid/internal/storage"
	"toroid/internal/survey"
	"toroid/pkg/core"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Simulate many random lattices in lockstep and dump their indicator states",
		Long: `Run the configured number of random lattices for max_steps steps, classify
every run from its trailing window and write one indicator state per run
to an Arrow IPC candidate file for 'toroid analyze'.

Examples:
  toroid batch --out candidates.arrow
  toroid batch --set runs=100000 --set width=5 --set height=5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			outPath, _ := cmd.Flags().GetString("out")

			b, outcomes, err := survey.Simulate(cmd.Context(), survey.FromConfig(cfg, log))
			if err != nil {
				return err
			}
			w, h := b.Size()
			states := make([]*core.Lattice, len(outcomes))
			for i, o := range outcomes {
				states[i] = o.Indicator
				if states[i] == nil {
					states[i] = core.NewLattice(w, h)
				}
			}
			if err := storage.WriteCandidates(outPath, states); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printOutcomes(out, outcomes)
			fmt.Fprintf(out, "dynamic runs searched: %s\n", comma(b.DynamicVisits()))
			fmt.Fprintf(out, "wrote %s candidates to %s\n", comma(len(states)), outPath)
			log.Debug("candidates written", "path", outPath, "runs", len(states))
			return nil
		},
	}
	cmd.Flags().String("out", "candidates.arrow", "Candidate file to write")
	return cmd
}
