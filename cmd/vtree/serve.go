package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/fixture"
	"github.com/vango-dev/vtree/internal/watch"
	"github.com/vango-dev/vtree/pkg/server"
)

func serveCmd(env *environment) *cobra.Command {
	var (
		port      int
		host      string
		appID     string
		watchFile bool
	)

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Start the live preview server",
		Long: `Start a preview server for one application.

POST tree documents to /render to reconcile them; every pass is
streamed to the page and to websocket mirrors on /ws. When a file is
given it is rendered on start, and with --watch again on every change.

Examples:
  vtree serve
  vtree serve tree.yaml --watch
  vtree serve --port=8080 --app demo`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if port > 0 {
				env.cfg.Preview.Port = port
			}
			if host != "" {
				env.cfg.Preview.Host = host
			}
			if err := env.cfg.Validate(); err != nil {
				return err
			}

			opts := []server.Option{
				server.WithLogger(env.logger),
				server.WithHandlers(env.handlers),
			}
			store, err := env.openStore(ctx)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				opts = append(opts, server.WithStore(store))
			}

			srv := server.New(&server.Config{
				Address:    env.cfg.PreviewAddress(),
				WrapperTag: env.cfg.Render.WrapperTag,
				Pretty:     env.cfg.Render.Pretty,
				Namespace:  env.cfg.Metrics.Namespace,
			}, appID, opts...)

			if restored, err := srv.Restore(ctx); err != nil {
				return err
			} else if restored {
				env.logger.Info("resumed from snapshot", "app", srv.App().ID())
			}

			if len(args) == 1 {
				path := args[0]
				load := func() {
					tree, err := fixture.Load(path, fixture.WithResolver(env.handlers))
					if err != nil {
						env.logger.Error("cannot load document", "path", path, "error", err)
						return
					}
					pass, err := srv.Render(ctx, tree)
					if err != nil {
						env.logger.Error("snapshot save failed", "error", err)
					}
					env.logger.Info("rendered", "path", path, "seq", pass.Seq, "patches", len(pass.Result.Patches))
				}
				load()

				if watchFile {
					w := watch.New(watch.Config{Paths: []string{path}})
					w.OnChange(func(c watch.Change) {
						if c.Removed {
							env.logger.Warn("watched document removed", "path", c.Path)
							return
						}
						load()
					})
					go w.Start(ctx)
					defer w.Stop()
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Preview on http://%s\n", env.cfg.PreviewAddress())
			return srv.Run()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from vtree.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from vtree.json)")
	cmd.Flags().StringVar(&appID, "app", "", "Application ID used for snapshots (default: generated)")
	cmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "Re-render the file whenever it changes")
	return cmd
}
