package wgpudevice

import (
	"context"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/phanxgames/grove"
	"github.com/pkg/errors"
)

// maxStepsPerFrame bounds the catch-up updates after a long stall.
const maxStepsPerFrame = 8

// Window is a GLFW window with a WebGPU surface. It feeds window input to a
// scene and drives the fixed-step update and render loop.
//
// Open, Run and Close must be called from the main thread.
type Window struct {
	window   *glfw.Window
	instance *wgpu.Instance
	device   *Device
	surface  *Surface

	scene *grove.Scene
	// Reload delivers configurations applied between frames.
	Reload <-chan grove.RunConfig

	cursorX, cursorY float64
	hasCursor        bool
}

// Open creates a window per cfg along with its device and surface.
func Open(cfg grove.RunConfig) (*Window, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "init glfw")
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	resizable := glfw.False
	if cfg.Resizable {
		resizable = glfw.True
	}
	glfw.WindowHint(glfw.Resizable, resizable)

	var monitor *glfw.Monitor
	if cfg.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}
	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "create window")
	}

	w := &Window{window: win, instance: wgpu.CreateInstance(nil)}
	raw := w.instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win))
	if w.device, err = NewDevice(w.instance, raw); err != nil {
		w.Close()
		return nil, err
	}
	fbw, fbh := win.GetFramebufferSize()
	if w.surface, err = NewSurface(w.device, raw, fbw, fbh, cfg.SampleCount, cfg.VSync); err != nil {
		w.Close()
		return nil, err
	}
	logger().Info("window opened", "title", cfg.Title, "width", fbw, "height", fbh, "format", w.surface.Format())
	return w, nil
}

// Device returns the device scenes in this window allocate on.
func (w *Window) Device() *Device { return w.device }

// Surface returns the frame target presenting to the window.
func (w *Window) Surface() *Surface { return w.surface }

// Attach routes the window's input to scene and reports the current
// framebuffer size to it.
func (w *Window) Attach(scene *grove.Scene) {
	w.scene = scene
	win := w.window

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		scene.OnKey(grove.KeyEvent{Key: TranslateKey(key), Action: translateAction(action), Mods: translateMods(mods)})
	})
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		b, ok := translateButton(button)
		if !ok {
			return
		}
		scene.OnMouseButton(grove.MouseButtonEvent{Button: b, Action: translateAction(action), Mods: translateMods(mods)})
	})
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		scene.OnMouseMove(w.motion(x, y))
	})
	win.SetScrollCallback(func(_ *glfw.Window, dx, dy float64) {
		scene.OnMouseWheel(grove.MouseWheelEvent{X: float32(dx), Y: float32(dy)})
	})
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resize(width, height)
	})

	w.resize(win.GetFramebufferSize())
}

func (w *Window) resize(width, height int) {
	if err := w.surface.Resize(width, height); err != nil {
		logger().Error("surface resize failed", "width", width, "height", height, "err", err)
		return
	}
	if w.scene != nil {
		w.scene.OnResize(grove.ResizeEvent{Width: width, Height: height})
	}
}

func (w *Window) motion(x, y float64) grove.MouseMoveEvent {
	ev := grove.MouseMoveEvent{X: float32(x), Y: float32(y)}
	if w.hasCursor {
		ev.XRel = float32(x - w.cursorX)
		ev.YRel = float32(y - w.cursorY)
	}
	w.cursorX, w.cursorY, w.hasCursor = x, y, true
	return ev
}

// Run drives the attached scene until the window closes, ctx is done, the
// scene's test script finishes or an update or render fails. Updates run
// at the scene's TimeStep; one frame is rendered per loop iteration.
func (w *Window) Run(ctx context.Context, script *grove.TestRunner) error {
	if w.scene == nil {
		return errors.New("wgpudevice: no scene attached")
	}
	if script != nil {
		w.scene.SetTestRunner(script)
	}

	var acc time.Duration
	prev := glfw.GetTime()
	for !w.window.ShouldClose() {
		glfw.PollEvents()
		if ctx.Err() != nil {
			return nil
		}
		w.applyReloads()

		now := glfw.GetTime()
		frame := time.Duration((now - prev) * float64(time.Second))
		prev = now

		var steps int
		acc, steps = advance(acc+frame, w.scene.TimeStep)
		for range steps {
			if err := w.scene.Update(w.scene.TimeStep); err != nil {
				return errors.Wrap(err, "update")
			}
		}
		if err := w.scene.Render(frame); err != nil {
			return errors.Wrap(err, "render")
		}
		if script != nil && script.Done() {
			return nil
		}
	}
	return nil
}

// advance splits accumulated time into whole steps, dropping the backlog
// beyond maxStepsPerFrame.
func advance(acc, step time.Duration) (rest time.Duration, steps int) {
	if step <= 0 {
		return 0, 0
	}
	steps = int(acc / step)
	if steps > maxStepsPerFrame {
		return 0, maxStepsPerFrame
	}
	return acc - time.Duration(steps)*step, steps
}

func (w *Window) applyReloads() {
	for {
		select {
		case cfg, ok := <-w.Reload:
			if !ok {
				w.Reload = nil
				return
			}
			cfg.Apply(w.scene)
			w.window.SetTitle(cfg.Title)
		default:
			return
		}
	}
}

// Close releases the GPU objects and destroys the window.
func (w *Window) Close() {
	if w.surface != nil {
		w.surface.Release()
		w.surface = nil
	}
	if w.device != nil {
		w.device.Release()
		w.device = nil
	}
	if w.instance != nil {
		w.instance.Release()
		w.instance = nil
	}
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	glfw.Terminate()
}
