package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"toroid/internal/config"
	"toroid/internal/engine"
	"toroid/internal/storage"
	"toroid/internal/survey"
)

func newSurveyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Run a batch and catalogue its attractors in one pass",
		Long: `Equivalent to 'toroid batch' followed by 'toroid analyze' without the
intermediate file. With --save the result is stored in the configured
backend (store.backend, store.path).

Examples:
  toroid survey --set runs=5000
  toroid survey --save --set store_backend=sqlite --set store_path=surveys.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			top, _ := cmd.Flags().GetInt("top")
			save, _ := cmd.Flags().GetBool("save")
			candidates, _ := cmd.Flags().GetString("candidates")

			res, err := survey.Run(cmd.Context(), survey.FromConfig(cfg, log))
			if err != nil {
				return err
			}
			if candidates != "" {
				if err := storage.WriteCandidates(candidates, engine.Indicators(res.Outcomes)); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			printOutcomes(out, res.Outcomes)
			printCatalog(out, res.Catalog, top)
			fmt.Fprintf(out, "elapsed %s\n", res.Elapsed.Round(time.Millisecond))

			if save {
				return saveSurvey(cmd, cfg, res.Record())
			}
			return nil
		},
	}
	cmd.Flags().Int("top", 10, "Number of attractors to list (0 for all)")
	cmd.Flags().Bool("save", false, "Persist the survey to the configured store")
	cmd.Flags().String("candidates", "", "Also write the indicator states to this file")
	return cmd
}

func saveSurvey(cmd *cobra.Command, cfg *config.Config, sv *storage.Survey) error {
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.SaveSurvey(cmd.Context(), sv); err != nil {
		return fmt.Errorf("failed to save survey: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved survey %s (%s)\n", sv.ID, cfg.Store.Backend)
	return nil
}
