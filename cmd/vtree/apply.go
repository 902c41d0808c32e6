package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/fixture"
	"github.com/vango-dev/vtree/pkg/dom"
	"github.com/vango-dev/vtree/pkg/reconcile"
	"github.com/vango-dev/vtree/pkg/render"
	"github.com/vango-dev/vtree/pkg/snapshot"
)

func applyCmd(env *environment) *cobra.Command {
	var (
		appID   string
		verbose bool
		resume  bool
		save    bool
	)

	cmd := &cobra.Command{
		Use:   "apply <file>",
		Short: "Reconcile a sequence of trees into a live tree",
		Long: `Reconcile every document of a multi-document YAML file, in order,
into one live tree and print the live tree after each pass.

With --resume the first pass starts from the snapshot stored for the
application instead of an empty tree. With --save the final tree is
written to the configured snapshot store.

Examples:
  vtree apply steps.yaml
  vtree apply steps.yaml -v
  vtree apply steps.yaml --app counter --resume --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			trees, err := fixture.LoadAll(args[0], fixture.WithResolver(env.handlers))
			if err != nil {
				return err
			}

			var store snapshot.Store
			if resume || save {
				if store, err = env.openStore(ctx); err != nil {
					return err
				}
				if store == nil {
					return fmt.Errorf("--resume and --save need a snapshot driver in vtree.json")
				}
				defer store.Close()
			}

			opts := []reconcile.Option{
				reconcile.WithLogger(env.logger),
				reconcile.WithWrapperTag(env.cfg.Render.WrapperTag),
			}
			if appID != "" {
				opts = append(opts, reconcile.WithID(appID))
			}
			container := dom.NewElement("div")
			container.SetAttribute("id", render.ContainerID)
			app := reconcile.NewApp(container, opts...)

			out := cmd.OutOrStdout()
			if resume {
				snap, err := store.Load(ctx, app.ID())
				switch {
				case err == nil:
					if _, err := app.Render(ctx, snap.Tree); err != nil {
						env.logger.Warn("resumed snapshot did not apply cleanly", "error", err)
					}
					fmt.Fprintf(out, "resumed %s: %s\n", app.ID(), dom.InnerHTML(container))
				case stderrors.Is(err, snapshot.ErrNotFound):
					env.logger.Info("no snapshot to resume", "app", app.ID())
				default:
					return err
				}
			}

			var failed error
			for i, tree := range trees {
				result, err := app.Render(ctx, tree)
				if verbose {
					for _, p := range result.Patches {
						fmt.Fprintf(out, "  %s\n", p)
					}
				}
				fmt.Fprintf(out, "pass %d: %s\n", i+1, dom.InnerHTML(container))
				if err != nil {
					env.logger.Warn("pass incomplete", "pass", i+1, "skipped", result.Skipped(), "error", err)
					failed = stderrors.Join(failed, err)
				}
			}

			if save {
				if err := store.Save(ctx, &snapshot.Snapshot{AppID: app.ID(), SavedAt: time.Now().UTC(), Tree: app.Tree()}); err != nil {
					return err
				}
				env.logger.Info("snapshot saved", "app", app.ID())
			}
			return failed
		},
	}

	cmd.Flags().StringVar(&appID, "app", "", "Application ID used for snapshots (default: generated)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print the patches of every pass")
	cmd.Flags().BoolVar(&resume, "resume", false, "Start from the stored snapshot")
	cmd.Flags().BoolVar(&save, "save", false, "Store the final tree as a snapshot")
	return cmd
}
