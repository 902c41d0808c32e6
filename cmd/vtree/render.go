package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/fixture"
	"github.com/vango-dev/vtree/pkg/render"
)

func renderCmd(env *environment) *cobra.Command {
	var (
		format string
		pretty bool
		title  string
	)

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a tree document",
		Long: `Render a tree document as an HTML fragment, a complete HTML page,
or a normalized YAML document.

Examples:
  vtree render tree.yaml
  vtree render tree.json --pretty
  vtree render tree.yaml --format page --title Preview
  vtree render tree.json --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := fixture.Load(args[0], fixture.WithResolver(env.handlers))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			renderer := render.NewRenderer(render.RendererConfig{
				Pretty:     pretty || env.cfg.Render.Pretty,
				WrapperTag: env.cfg.Render.WrapperTag,
			})

			switch format {
			case "html":
				html, err := renderer.RenderToString(tree)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, html)
			case "page":
				return renderer.RenderPage(out, render.PageData{Body: tree, Title: title})
			case "yaml":
				data, err := fixture.Marshal(tree)
				if err != nil {
					return err
				}
				out.Write(data)
			default:
				return fmt.Errorf("unknown format %q (use html, page or yaml)", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "html", "Output format: html, page or yaml")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent HTML output")
	cmd.Flags().StringVar(&title, "title", "vtree", "Page title for --format page")
	return cmd
}
