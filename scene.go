package grove

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// DefaultTimeStep is the fixed simulation step drivers use unless configured.
const DefaultTimeStep = time.Second / 60

// Scene is the root of the object tree. It is itself an entity, so systems
// can be attached to it, and it owns the camera and the frame target.
//
// Each frame the driver calls Update then Render. Render begins a frame on
// the target, clears it to ClearColor, renders the tree and ends the frame.
type Scene struct {
	Entity[*Scene]

	// ClearColor fills the frame before anything is drawn.
	ClearColor Color
	// TimeStep is the fixed update interval drivers should use.
	TimeStep time.Duration

	device *countingDevice
	target FrameTarget
	camera *Camera
	pass   RenderPass

	width, height int

	debug bool
	frame FrameStats
	last  FrameStats

	injectQueue []injectedEvent
	cursorX     float32
	cursorY     float32
	testRunner  *TestRunner
}

// NewScene creates a scene drawing through device into target. target may
// be nil for headless use, in which case Render updates state but draws
// nothing.
func NewScene(device Device, target FrameTarget) *Scene {
	s := &Scene{
		ClearColor: ColorBlack,
		TimeStep:   DefaultTimeStep,
		target:     target,
		camera:     NewCamera(),
	}
	s.Name = "scene"
	s.device = &countingDevice{Device: device, stats: &s.frame}
	s.Bind(s)
	return s
}

// Device returns the device renderables allocate buffers on.
func (s *Scene) Device() Device {
	return s.device
}

// Camera returns the active camera.
func (s *Scene) Camera() *Camera {
	return s.camera
}

// SetCamera replaces the active camera. Panics on nil.
func (s *Scene) SetCamera(c *Camera) {
	if c == nil {
		panic("grove: nil camera")
	}
	s.camera = c
}

// Size returns the last framebuffer size reported through OnResize.
func (s *Scene) Size() (width, height int) {
	return s.width, s.height
}

// RenderPass returns the pass of the frame being rendered, or nil outside
// Render.
func (s *Scene) RenderPass() RenderPass {
	return s.pass
}

// ViewProjectionMatrix returns the camera's projection * view.
func (s *Scene) ViewProjectionMatrix() mgl32.Mat4 {
	return s.camera.ViewProjectionMatrix()
}

// NormalMatrix returns the camera transform's normal matrix.
func (s *Scene) NormalMatrix() mgl32.Mat3 {
	return s.camera.NormalMatrix()
}

// DrawMesh binds mesh with mat on the current pass and draws the given
// number of instances. Outside a frame it does nothing.
func (s *Scene) DrawMesh(mesh Mesh, mat Material, instances int) error {
	if s.pass == nil || mesh == nil || mat == nil || instances <= 0 {
		return nil
	}
	if err := mesh.Bind(mat, s.pass); err != nil {
		return errors.Wrap(err, "bind mesh")
	}
	drawMesh(s.pass, mesh, instances)
	s.frame.DrawCalls++
	s.frame.Instances += instances
	return nil
}

// Update feeds one injected event, advances the camera, runs the scene's
// physics systems and updates the tree.
func (s *Scene) Update(dt time.Duration) error {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}
	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.processInjected()
	s.camera.update(dt)

	err := s.Entity.Update(dt)
	if s.debug {
		s.frame.UpdateTime = time.Since(t0)
	}
	return err
}

// Render draws one frame: begin, render systems, children, end.
func (s *Scene) Render(dt time.Duration) error {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	if s.target != nil {
		pass, err := s.target.BeginFrame(s.ClearColor)
		if err != nil {
			return errors.Wrap(err, "begin frame")
		}
		s.pass = pass
	}

	err := s.RenderSystems(dt)
	if err == nil {
		err = renderChildren(&s.Node, dt, mgl32.Ident4())
	}
	s.pass = nil

	if s.target != nil {
		if endErr := s.target.EndFrame(); endErr != nil && err == nil {
			err = errors.Wrap(endErr, "end frame")
		}
	}

	if s.debug {
		s.frame.RenderTime = time.Since(t0)
		s.debugLog(s.frame)
		debugCheckTree(&s.Node)
	}
	s.last = s.frame
	s.frame = FrameStats{}
	return err
}

// OnResize updates the camera aspect ratio, then dispatches the event.
func (s *Scene) OnResize(ev ResizeEvent) bool {
	s.width, s.height = ev.Width, ev.Height
	if ev.Width > 0 && ev.Height > 0 {
		s.camera.SetAspectRatio(float32(ev.Width) / float32(ev.Height))
	}
	return s.Entity.OnResize(ev)
}

// OnMouseMove records the cursor position, then dispatches the event.
func (s *Scene) OnMouseMove(ev MouseMoveEvent) bool {
	s.cursorX, s.cursorY = ev.X, ev.Y
	return s.Entity.OnMouseMove(ev)
}

// Screenshot asks the frame target to capture the next presented frame.
// Returns false when the target cannot take screenshots.
func (s *Scene) Screenshot(label string) bool {
	sc, ok := s.target.(Screenshotter)
	if !ok {
		return false
	}
	sc.Screenshot(label)
	return true
}

// SetDebugMode enables or disables debug mode. When enabled, per-frame
// stats are logged and tree depth and child count warnings are emitted.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// Debug reports whether debug mode is enabled.
func (s *Scene) Debug() bool {
	return s.debug
}

// Stats returns the counters of the last rendered frame. Draw and write
// counters are always collected; timings only in debug mode.
func (s *Scene) Stats() FrameStats {
	return s.last
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply.
var globalDebug bool

// countingDevice forwards to the backend device and tallies buffer writes
// into the current frame's stats.
type countingDevice struct {
	Device
	stats *FrameStats
}

func (d *countingDevice) WriteBuffer(buf Buffer, offset int, data []byte) error {
	d.stats.BufferWrites++
	d.stats.BytesWritten += len(data)
	return d.Device.WriteBuffer(buf, offset, data)
}
