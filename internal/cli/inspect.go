package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phanxgames/easel"
)

func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <scene.json>",
		Short: "Print the node tree with bounding boxes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := c.loadWorld(args[0], easel.NopBackend{})
			if err != nil {
				return err
			}
			defer w.Close()
			loggerFromContext(cmd.Context()).Debug("loaded scene", "path", args[0], "nodes", w.Graph().Len())
			c.printTree(w.Graph())
			return nil
		},
	}
}

func (c *CLI) printTree(g *easel.Graph) {
	g.Walk(func(n easel.Node, depth int) bool {
		box := n.BBox().ToAABB()
		fmt.Fprintf(c.Out, "%s%s %s z=%g [%.2f %.2f %.2f %.2f]\n",
			strings.Repeat("  ", depth), n.Kind(), n.Alias(), n.Z(), box.X, box.Y, box.W, box.H)
		return true
	})
}
