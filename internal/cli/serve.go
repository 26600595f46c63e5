package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codegraphls/codegraphls/internal/server"
	"github.com/codegraphls/codegraphls/internal/watcher"
)

func newServeCmd() *cobra.Command {
	var root string
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the editor-protocol server over stdio",
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
			if verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "codegraphls: indexed %d files (%d errors)\n", files, len(errs))
			}

			srv := server.New(res, cfg.Workspace.Root)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				cancel()
			}()

			if !noWatch {
				w, err := watcher.NewWatcher(watcher.WatcherConfig{
					Paths:           []string{cfg.Workspace.Root},
					ExcludePatterns: cfg.Watch.Exclude,
				})
				if err != nil {
					return fmt.Errorf("create watcher: %w", err)
				}
				if err := srv.Watch(ctx, w); err != nil {
					return fmt.Errorf("start watcher: %w", err)
				}
			}

			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "workspace root (default: current directory)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "disable the filesystem watcher; only editor events drive reindexing")

	return cmd
}
