package ebitenrender

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/easel"
)

// RunConfig configures Run.
type RunConfig struct {
	Title      string
	Width      int
	Height     int
	ShowFPS    bool
	ClearColor color.Color
	// ScreenshotDir, if set, enables saving the frame as PNG on F12.
	ScreenshotDir string
	// OnUpdate, if set, runs every tick after input and before drawing.
	OnUpdate func(dt float32) error
}

type game struct {
	ctx     context.Context
	world   *easel.World
	backend *Backend
	source  Source
	cfg     RunConfig
	fps     string
	elapsed float32
	shots   *screenshots
}

func (g *game) Update() error {
	dt := float32(1 / float64(ebiten.TPS()))
	if err := g.source.Poll(g.ctx, g.world.Input()); err != nil {
		easel.Logger().Error("input handler failed", "err", err)
	}
	g.world.Update(dt)
	if g.cfg.ShowFPS {
		g.elapsed += dt
		if g.elapsed >= 0.5 {
			g.elapsed = 0
			g.fps = fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
		}
	}
	if g.cfg.OnUpdate != nil {
		return g.cfg.OnUpdate(dt)
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(g.cfg.ClearColor)
	g.backend.Draw(screen)
	if g.shots != nil {
		g.shots.flush(screen)
	}
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, g.fps)
	}
}

func (g *game) Layout(w, h int) (int, int) { return w, h }

// Run opens a window and runs world until the window closes. The world
// must have been built on backend. Run starts the world and closes it on
// return.
func Run(world *easel.World, backend *Backend, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	if cfg.ClearColor == nil {
		cfg.ClearColor = color.NRGBA{R: 30, G: 30, B: 40, A: 255}
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := world.Start(ctx); err != nil {
		return err
	}
	defer world.Close()

	g := &game{ctx: ctx, world: world, backend: backend, cfg: cfg}
	if cfg.ScreenshotDir != "" {
		g.shots = &screenshots{dir: cfg.ScreenshotDir, key: "f12"}
		defer world.Input().Use(g.shots).Remove()
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}
