package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codegraphls/codegraphls/internal/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a .codegraphls/ project directory",
		Long: `Initialize a codegraphls project in the current directory.

Creates a .codegraphls/ directory containing:
  config.yaml    Workspace configuration (defaults, ready to edit)
  .env           Environment overrides template (COGRAPH_* variables)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			return runInit(cmd, cwd)
		},
	}
}

func runInit(cmd *cobra.Command, cwd string) error {
	projectDir := filepath.Join(cwd, config.ProjectDirName)

	if _, err := os.Stat(projectDir); err == nil {
		return fmt.Errorf("%s already exists; project is already initialized", projectDir)
	}

	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return fmt.Errorf("create project directory: %w", err)
	}

	out := cmd.OutOrStdout()

	configContent, err := config.Default(cwd).RenderYAML()
	if err != nil {
		return fmt.Errorf("render default config: %w", err)
	}
	configPath := filepath.Join(projectDir, config.ConfigFileName)
	if err := os.WriteFile(configPath, configContent, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	fmt.Fprintf(out, "Created %s\n", configPath)

	envPath := filepath.Join(projectDir, ".env")
	if err := os.WriteFile(envPath, []byte(envTemplate), 0644); err != nil {
		return fmt.Errorf("write .env file: %w", err)
	}
	fmt.Fprintf(out, "Created %s\n", envPath)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Edit .codegraphls/config.yaml to adjust languages and excludes")
	fmt.Fprintln(out, "  2. Add to .gitignore:")
	fmt.Fprintln(out, "       .codegraphls/.env")
	fmt.Fprintln(out, "  3. Run 'codegraphls index' to build the code graph once")
	fmt.Fprintln(out, "  4. Point your editor at 'codegraphls serve' for live queries")

	return nil
}

const envTemplate = `# Environment overrides for codegraphls.
# Any config key can be overridden as COGRAPH_<SECTION>_<KEY>.
#
# COGRAPH_SERVER_LOG_LEVEL=debug
# COGRAPH_CACHE_CAPACITY=2000
`
