package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phanxgames/easel"
)

func (c *CLI) replayCommand() *cobra.Command {
	var (
		undo int
		out  string
	)
	cmd := &cobra.Command{
		Use:   "replay <scene.json> <history.json>",
		Short: "Apply recorded operations to a scene and print final positions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			prog := newProgress(logger)

			w, err := c.loadWorld(args[0], easel.NopBackend{})
			if err != nil {
				return err
			}
			defer w.Close()

			var history easel.RecordStackData
			if err := readJSON(args[1], &history); err != nil {
				return err
			}
			x := w.Executer()
			for i, rec := range history.Records {
				if err := x.Exec(ctx, rec.COp); err != nil {
					return fmt.Errorf("record %d (%s): %w", i, rec.COp, err)
				}
			}
			for i := range undo {
				if !x.CanUndo() {
					logger.Warn("fewer records than requested undos", "undone", i, "requested", undo)
					break
				}
				if err := x.Undo(ctx); err != nil {
					return err
				}
			}
			if err := w.Renderer().WaitAll(ctx); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Replayed %d records", len(history.Records)))

			c.printPositions(w.Graph())
			if out != "" {
				return writeJSON(out, w.ToData())
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&undo, "undo", 0, "undo this many records after replaying")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the resulting world JSON to this file")
	return cmd
}

func (c *CLI) printPositions(g *easel.Graph) {
	nodes := g.AllNodes()
	slices.SortFunc(nodes, func(a, b easel.Node) int { return strings.Compare(a.Alias(), b.Alias()) })
	for _, n := range nodes {
		p := n.Position()
		fmt.Fprintf(c.Out, "%s %.2f %.2f\n", n.Alias(), p.X, p.Y)
	}
}
