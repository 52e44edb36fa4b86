package main

import (
	"github.com/spf13/cobra"

	"toroid/internal/storage"
	"toroid/pkg/core"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [survey-id]",
		Short: "List stored surveys, or the attractors of one survey",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				surveys, err := s.Surveys(cmd.Context())
				if err != nil {
					return err
				}
				printSurveys(out, surveys)
				return nil
			}
			atts, err := s.Attractors(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printAttractors(out, atts)
			return nil
		},
	}
}

func latticeOf(a storage.Attractor) *core.Lattice {
	return core.View(a.Width, a.Height, a.Cells)
}
