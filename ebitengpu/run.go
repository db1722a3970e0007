package ebitengpu

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/grove"
	"github.com/pkg/errors"
)

// Game adapts a grove scene to ebiten.Game. Every tick polls input and
// updates the scene by its TimeStep; every frame renders it into the screen.
type Game struct {
	scene  *grove.Scene
	target *Target
	input  Input
	script *grove.TestRunner

	// Reload delivers configurations to apply between ticks. Typically the
	// channel returned by grove.WatchConfig.
	Reload <-chan grove.RunConfig
	// AfterFrame runs at the end of every Draw.
	AfterFrame func()

	width, height int
	err           error
}

// NewGame wires scene and target into a game. target may be nil, in which
// case a target writing screenshots to "screenshots" is created.
func NewGame(scene *grove.Scene, target *Target) *Game {
	if target == nil {
		target = NewTarget("screenshots")
	}
	return &Game{scene: scene, target: target}
}

// Scene returns the driven scene.
func (g *Game) Scene() *grove.Scene { return g.scene }

// Target returns the frame target.
func (g *Game) Target() *Target { return g.target }

// SetTestRunner attaches a scripted test run to the scene. The game exits
// once the script has finished.
func (g *Game) SetTestRunner(r *grove.TestRunner) {
	g.script = r
	g.scene.SetTestRunner(r)
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.err != nil {
		return g.err
	}
	g.applyReloads()
	g.input.Poll(g.scene)
	if err := g.scene.Update(g.scene.TimeStep); err != nil {
		return errors.Wrap(err, "update")
	}
	if g.script != nil && g.script.Done() {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game. Render errors are returned by the next Update.
func (g *Game) Draw(screen *ebiten.Image) {
	g.target.SetScreen(screen)
	if err := g.scene.Render(g.scene.TimeStep); err != nil && g.err == nil {
		g.err = errors.Wrap(err, "render")
	}
	if g.AfterFrame != nil {
		g.AfterFrame()
	}
}

// Layout implements ebiten.Game. Size changes are dispatched to the scene as
// resize events.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.scene.OnResize(grove.ResizeEvent{Width: outsideWidth, Height: outsideHeight})
	}
	return outsideWidth, outsideHeight
}

func (g *Game) applyReloads() {
	for {
		select {
		case cfg, ok := <-g.Reload:
			if !ok {
				g.Reload = nil
				return
			}
			cfg.Apply(g.scene)
			ebiten.SetTPS(tps(cfg.TimeStep))
			ebiten.SetVsyncEnabled(cfg.VSync)
		default:
			return
		}
	}
}

func tps(step time.Duration) int {
	if step <= 0 {
		return ebiten.DefaultTPS
	}
	return max(1, int(time.Second/step))
}

// Run opens a window configured by cfg and drives g until the window is
// closed, the test script finishes or an error occurs.
func Run(g *Game, cfg grove.RunConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.Apply(g.scene)
	if cfg.ScreenDir != "" {
		g.target.ScreenshotDir = cfg.ScreenDir
	}
	if cfg.TestScript != "" {
		runner, err := grove.LoadTestScriptFile(cfg.TestScript)
		if err != nil {
			return err
		}
		g.SetTestRunner(runner)
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	ebiten.SetFullscreen(cfg.Fullscreen)
	ebiten.SetVsyncEnabled(cfg.VSync)
	ebiten.SetTPS(tps(cfg.TimeStep))

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
