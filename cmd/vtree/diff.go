package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/internal/fixture"
	"github.com/vango-dev/vtree/pkg/protocol"
	"github.com/vango-dev/vtree/pkg/vdom"
)

func diffCmd(env *environment) *cobra.Command {
	var (
		frameOut string
		stats    bool
	)

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Print the patches that turn one tree into another",
		Long: `Compute the patch list between two tree documents and print one
patch per line in application order.

Examples:
  vtree diff before.yaml after.yaml
  vtree diff before.yaml after.yaml --stats
  vtree diff before.yaml after.yaml --frame patches.bin`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prev, err := fixture.Load(args[0], fixture.WithResolver(env.handlers))
			if err != nil {
				return err
			}
			next, err := fixture.Load(args[1], fixture.WithResolver(env.handlers))
			if err != nil {
				return err
			}

			patches := vdom.Diff(prev, next)
			out := cmd.OutOrStdout()
			for _, p := range patches {
				fmt.Fprintln(out, p.String())
			}
			if stats {
				printStats(cmd, patches)
			}
			if frameOut != "" {
				return writeFrame(frameOut, patches)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&frameOut, "frame", "", "Also write the patches as a binary frame to this file")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print the number of patches per action")
	return cmd
}

func printStats(cmd *cobra.Command, patches []vdom.Patch) {
	counts := make(map[vdom.Action]int)
	for _, p := range patches {
		counts[p.Action]++
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d patches\n", len(patches))
	for a := vdom.AddNode; a <= vdom.ReplaceAttribute; a++ {
		if n := counts[a]; n > 0 {
			fmt.Fprintf(out, "  %-16s %d\n", a, n)
		}
	}
}

func writeFrame(path string, patches []vdom.Patch) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Errorf("E140", "create %s", path).Wrap(err)
	}
	defer f.Close()
	frame := protocol.NewPatchesFrame(&protocol.PatchesFrame{Seq: 1, Patches: patches})
	if err := protocol.WriteFrame(f, frame); err != nil {
		return errors.Errorf("E140", "write %s", path).Wrap(err)
	}
	return f.Close()
}
