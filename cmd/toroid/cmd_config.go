package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"toroid/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print every setting after defaults, the config file, TOROID_* environment
variables and --set overrides have been applied.

Examples:
  toroid config
  toroid config --yaml > toroid.yaml
  toroid config --get window
  toroid config --keys`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if keys, _ := cmd.Flags().GetBool("keys"); keys {
				for _, k := range config.Keys() {
					fmt.Fprintf(out, "%-24s TOROID_%s\n", k, strings.ToUpper(k))
				}
				return nil
			}

			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			if key, _ := cmd.Flags().GetString("get"); key != "" {
				p, ok := cfg.Parameters().Lookup(key)
				if !ok {
					return fmt.Errorf("%w: unknown key %q", config.ErrInvalidConfig, key)
				}
				fmt.Fprintln(out, p.Value)
				return nil
			}
			if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("failed to encode config: %w", err)
				}
				_, err = out.Write(data)
				return err
			}

			for i, g := range cfg.Parameters().Groups {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s:\n", g.Name)
				if g.Summary != "" {
					fmt.Fprintf(out, "  (%s)\n", g.Summary)
				}
				for _, p := range g.Params {
					fmt.Fprintf(out, "  %-24s %s\n", p.Key+":", p.Value)
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool("yaml", false, "Print the configuration as YAML")
	cmd.Flags().String("get", "", "Print the value of one key")
	cmd.Flags().Bool("keys", false, "List the keys accepted by --set and the environment")
	return cmd
}
