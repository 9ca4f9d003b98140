package cli

import (
	"github.com/spf13/cobra"

	"github.com/phanxgames/easel/ebitenrender"
)

func (c *CLI) runCommand() *cobra.Command {
	var (
		width, height int
		showFPS       bool
		shotDir       string
	)
	cmd := &cobra.Command{
		Use:   "run <scene.json>",
		Short: "Open a scene in a window with drag, undo/redo and pan/zoom",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := ebitenrender.NewBackend()
			if err != nil {
				return err
			}
			w, err := c.loadWorld(args[0], backend)
			if err != nil {
				return err
			}
			w.UseDefaultHandlers()
			loggerFromContext(cmd.Context()).Info("opening scene", "path", args[0], "nodes", w.Graph().Len())
			return ebitenrender.Run(w, backend, ebitenrender.RunConfig{
				Title:         "easel - " + args[0],
				Width:         width,
				Height:        height,
				ShowFPS:       showFPS,
				ScreenshotDir: shotDir,
			})
		},
	}
	cmd.Flags().IntVar(&width, "width", 1024, "window width")
	cmd.Flags().IntVar(&height, "height", 768, "window height")
	cmd.Flags().BoolVar(&showFPS, "fps", false, "show FPS overlay")
	cmd.Flags().StringVar(&shotDir, "screenshots", "", "save the frame to this directory on F12")
	return cmd
}
