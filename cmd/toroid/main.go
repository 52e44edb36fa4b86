package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"toroid/internal/config"
	"toroid/internal/logging"
	"toroid/internal/storage"
)

var version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "toroid",
		Short: "Survey the attractors of Conway's Life on small tori",
		Long: `toroid simulates Game of Life lattices with periodic boundaries, detects
when each run has settled from its population series, and catalogues the
distinct attractors reached across many random initial states.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "YAML config file")
	rootCmd.PersistentFlags().StringArray("set", nil, "Override a config key (key=value, repeatable)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace")

	rootCmd.AddCommand(
		newSimulateCmd(),
		newBatchCmd(),
		newAnalyzeCmd(),
		newSurveyCmd(),
		newSweepCmd(),
		newListCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// setup resolves the effective config and the stderr logger for a command.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	sets, _ := cmd.Flags().GetStringArray("set")
	level, _ := cmd.Flags().GetString("log-level")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	kv, err := config.ParseOverrides(sets)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.ApplyOverrides(kv); err != nil {
		return nil, nil, err
	}
	if level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()), nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	s, err := storage.NewStore(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return s, nil
}
