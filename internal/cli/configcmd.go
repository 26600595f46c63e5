package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the effective codegraphls configuration as YAML, after merging
the discovered config.yaml, .env, environment overrides, and defaults.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}

			cfg, err := loadConfigOrFail(cwd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cfg.ConfigDir != "" {
				fmt.Fprintf(out, "# config dir: %s\n", cfg.ConfigDir)
			} else {
				fmt.Fprintln(out, "# no config file found; showing defaults")
			}

			rendered, err := cfg.RenderYAML()
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}
			_, err = out.Write(rendered)
			return err
		},
	}
}
