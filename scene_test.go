package grove

import (
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestNewSceneDefaults(t *testing.T) {
	s := NewScene(&fakeDevice{}, nil)
	if s.Name != "scene" {
		t.Errorf("Name = %q, want scene", s.Name)
	}
	if s.ClearColor != ColorBlack {
		t.Errorf("ClearColor = %v, want black", s.ClearColor)
	}
	if s.TimeStep != DefaultTimeStep {
		t.Errorf("TimeStep = %v", s.TimeStep)
	}
	if s.Camera() == nil {
		t.Fatal("Camera() is nil")
	}
	if s.RenderPass() != nil {
		t.Error("RenderPass outside a frame should be nil")
	}
}

func TestSceneRenderFrame(t *testing.T) {
	s, _, target := testScene()
	s.ClearColor = Color{0.1, 0.2, 0.3, 1}

	var during RenderPass
	s.AttachRender(RenderFunc[*Scene](func(s *Scene, _ time.Duration) error {
		during = s.RenderPass()
		return nil
	}))

	if err := s.Render(step); err != nil {
		t.Fatal(err)
	}
	if len(target.clears) != 1 || target.clears[0] != s.ClearColor {
		t.Errorf("clears = %v", target.clears)
	}
	if target.ended != 1 {
		t.Errorf("ended = %d, want 1", target.ended)
	}
	if during != RenderPass(target.pass) {
		t.Error("render systems did not see the frame's pass")
	}
	if s.RenderPass() != nil {
		t.Error("pass kept after the frame")
	}
}

func TestSceneBeginFrameError(t *testing.T) {
	s, _, target := testScene()
	target.beginErr = errors.New("lost surface")
	if err := s.Render(step); err == nil {
		t.Error("expected begin frame error")
	}
}

func TestSceneHeadless(t *testing.T) {
	s := NewScene(&fakeDevice{}, nil)
	d := s.Device()
	mesh, _ := NewMesh(d, "tri", triangle())
	CreateChild(s, NewRenderable(s, mesh, newFakeMaterial(d)))
	if err := s.Render(step); err != nil {
		t.Fatal(err)
	}
	if s.Stats().DrawCalls != 0 {
		t.Error("headless scene counted draw calls")
	}
	if s.Screenshot("x") {
		t.Error("headless scene cannot take screenshots")
	}
}

func TestSceneStatsCountWrites(t *testing.T) {
	s, d, _ := testScene()
	mesh, _ := NewMesh(d, "tri", triangle())
	mat := newFakeMaterial(s.Device())
	CreateChild(s, NewRenderable(s, mesh, mat))

	if err := s.Render(step); err != nil {
		t.Fatal(err)
	}
	st := s.Stats()
	// MVP and normal matrix uniforms.
	if st.BufferWrites != 2 || st.BytesWritten != Mat4Size+NormalMatrixSize {
		t.Errorf("writes = %d bytes = %d", st.BufferWrites, st.BytesWritten)
	}

	// Counters reset every frame.
	if err := s.Render(step); err != nil {
		t.Fatal(err)
	}
	if s.Stats().BufferWrites != 2 {
		t.Errorf("second frame writes = %d, want 2", s.Stats().BufferWrites)
	}
}

func TestSceneDebugTimings(t *testing.T) {
	s, _, _ := testScene()
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)
	if !s.Debug() {
		t.Fatal("Debug() = false")
	}
	s.AttachPhysics(PhysicsFunc[*Scene](func(*Scene, time.Duration) error {
		time.Sleep(time.Millisecond)
		return nil
	}))
	if err := s.Update(step); err != nil {
		t.Fatal(err)
	}
	if err := s.Render(step); err != nil {
		t.Fatal(err)
	}
	if s.Stats().UpdateTime < time.Millisecond {
		t.Errorf("UpdateTime = %v", s.Stats().UpdateTime)
	}
}

func TestSceneResize(t *testing.T) {
	s, _, _ := testScene()
	child := CreateChild(s, newTestObject("child"))
	s.OnResize(ResizeEvent{Width: 200, Height: 100})

	w, h := s.Size()
	if w != 200 || h != 100 {
		t.Errorf("Size = %dx%d", w, h)
	}
	if s.Camera().AspectRatio() != 2 {
		t.Errorf("aspect = %v, want 2", s.Camera().AspectRatio())
	}
	if child.resizes != 1 {
		t.Error("child not told about the resize")
	}

	// A zero size keeps the aspect ratio.
	s.OnResize(ResizeEvent{})
	if s.Camera().AspectRatio() != 2 {
		t.Error("zero resize changed the aspect ratio")
	}
}

func TestSceneScreenshot(t *testing.T) {
	s, _, target := testScene()
	if !s.Screenshot("first") {
		t.Fatal("Screenshot = false")
	}
	if len(target.shots) != 1 || target.shots[0] != "first" {
		t.Errorf("shots = %v", target.shots)
	}
}

func TestSetCamera(t *testing.T) {
	s, _, _ := testScene()
	c := NewCamera()
	s.SetCamera(c)
	if s.Camera() != c {
		t.Error("SetCamera not applied")
	}
	expectPanic(t, "nil camera", func() { s.SetCamera(nil) })
}
