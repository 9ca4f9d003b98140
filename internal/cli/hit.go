package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/phanxgames/easel"
)

func (c *CLI) hitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hit <scene.json> <x> <y>",
		Short: "List the nodes under a world point, top-most first",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("x: %w", err)
			}
			y, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("y: %w", err)
			}
			w, err := c.loadWorld(args[0], easel.NopBackend{})
			if err != nil {
				return err
			}
			defer w.Close()
			for _, n := range w.Pointed(easel.Point{X: x, Y: y}) {
				fmt.Fprintln(c.Out, n.Alias())
			}
			return nil
		},
	}
}
