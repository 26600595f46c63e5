package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codegraphls/codegraphls/internal/graph"
)

func newIndexCmd() *cobra.Command {
	var root string
	var dump bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the code graph for a workspace once, report stats, and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if root == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("resolve workspace root: %w", err)
				}
				root = wd
			}

			cfg, err := loadConfigOrFail(root)
			if err != nil {
				return err
			}

			res := buildResolver(cfg)
			exclude := buildExcluder(cfg)

			files, errs := res.IndexWorkspace(cfg.Workspace.Root, exclude)
			for _, e := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "index: %v\n", e)
			}

			stats := res.Graph().Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Files indexed: %d\n", files)
			fmt.Fprintf(out, "Nodes:         %d\n", stats.NodeCount)
			fmt.Fprintf(out, "Edges:         %d\n", stats.EdgeCount)
			if len(errs) > 0 {
				fmt.Fprintf(out, "Errors:        %d\n", len(errs))
			}

			if dump {
				exporter, ok := res.Graph().(graph.Exporter)
				if !ok {
					return fmt.Errorf("graph store does not support --dump")
				}
				if err := exporter.Export(cmd.Context(), out); err != nil {
					return fmt.Errorf("dump graph: %w", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "workspace root (default: current directory)")
	cmd.Flags().BoolVar(&dump, "dump", false, "dump the full graph as JSON to stdout after indexing")

	return cmd
}
