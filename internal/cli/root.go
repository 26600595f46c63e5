// Package cli implements the codegraphls command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codegraphls/codegraphls/internal/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "codegraphls",
	Short: "codegraphls - multi-language code graph server",
	Long: `codegraphls maintains a live, multi-language code graph of a workspace
and answers navigation, relationship, and context queries over it.

Commands:
  init     Initialize a .codegraphls/ project directory
  serve    Run the editor-protocol server over stdio
  index    Build (and optionally dump) the code graph for a workspace, then exit
  config   Show the effective configuration
  version  Print the server version`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config.yaml (default: discover .codegraphls/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newIndexCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func loadConfigOrFail(workspaceRoot string) (*config.Config, error) {
	cfg, err := buildConfig(cfgFile, workspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
