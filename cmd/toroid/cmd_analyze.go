package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"toroid/internal/storage"
	"toroid/internal/survey"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <candidates>",
		Short: "Catalogue the distinct attractors in a candidate file",
		Long: `Recenter every non-empty indicator state on the torus, group states by
torque and report the frequency of each distinct attractor.

With --save the catalogue is stored as a survey. The candidate file does not
record how its batch was run, so the stored steps, window, seed and alive
probability are left zero.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			top, _ := cmd.Flags().GetInt("top")
			save, _ := cmd.Flags().GetBool("save")

			states, err := storage.ReadCandidates(args[0])
			if err != nil {
				return err
			}
			cat, err := survey.Analyze(cmd.Context(), states, cfg.Catalog.TorqueTolerance, cfg.Workers)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s candidate states\n", comma(len(states)))
			printCatalog(out, cat, top)

			if !save || len(states) == 0 {
				return nil
			}
			res := &survey.Result{
				Params: survey.Params{
					Width:  states[0].W,
					Height: states[0].H,
					Runs:   len(states),
				},
				Catalog:   cat,
				Converged: len(states),
			}
			log.Debug("saving analysis", "runs", len(states), "distinct", cat.Len())
			return saveSurvey(cmd, cfg, res.Record())
		},
	}
	cmd.Flags().Int("top", 10, "Number of attractors to list (0 for all)")
	cmd.Flags().Bool("save", false, "Persist the catalogue to the configured store")
	return cmd
}
