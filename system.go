package grove

import "time"

// PhysicsSystem advances an entity's state once per Update. Systems receive
// the concrete entity they are attached to and hold no reference back to it.
type PhysicsSystem[T any] interface {
	Update(e T, dt time.Duration) error
}

// RenderSystem runs once per Render, before the entity draws itself.
type RenderSystem[T any] interface {
	Render(e T, dt time.Duration) error
}

// ControlsSystem reacts to input routed to an entity. Each hook reports
// whether it consumed the event. Embed BaseControls to implement only the
// hooks you need.
type ControlsSystem[T any] interface {
	OnKey(e T, ev KeyEvent) bool
	OnMouseButton(e T, ev MouseButtonEvent) bool
	OnMouseMove(e T, ev MouseMoveEvent) bool
	OnMouseWheel(e T, ev MouseWheelEvent) bool
	OnResize(e T, ev ResizeEvent) bool
}

// PhysicsFunc adapts a function to a PhysicsSystem.
type PhysicsFunc[T any] func(e T, dt time.Duration) error

// Update calls f(e, dt).
func (f PhysicsFunc[T]) Update(e T, dt time.Duration) error { return f(e, dt) }

// RenderFunc adapts a function to a RenderSystem.
type RenderFunc[T any] func(e T, dt time.Duration) error

// Render calls f(e, dt).
func (f RenderFunc[T]) Render(e T, dt time.Duration) error { return f(e, dt) }

// BaseControls answers false to every input hook.
type BaseControls[T any] struct{}

func (BaseControls[T]) OnKey(T, KeyEvent) bool                 { return false }
func (BaseControls[T]) OnMouseButton(T, MouseButtonEvent) bool { return false }
func (BaseControls[T]) OnMouseMove(T, MouseMoveEvent) bool     { return false }
func (BaseControls[T]) OnMouseWheel(T, MouseWheelEvent) bool   { return false }
func (BaseControls[T]) OnResize(T, ResizeEvent) bool           { return false }

// ControlsFuncs is a ControlsSystem built from optional callbacks.
// Nil callbacks leave the event unconsumed.
type ControlsFuncs[T any] struct {
	Key         func(e T, ev KeyEvent) bool
	MouseButton func(e T, ev MouseButtonEvent) bool
	MouseMove   func(e T, ev MouseMoveEvent) bool
	MouseWheel  func(e T, ev MouseWheelEvent) bool
	Resize      func(e T, ev ResizeEvent) bool
}

func (c ControlsFuncs[T]) OnKey(e T, ev KeyEvent) bool {
	return c.Key != nil && c.Key(e, ev)
}

func (c ControlsFuncs[T]) OnMouseButton(e T, ev MouseButtonEvent) bool {
	return c.MouseButton != nil && c.MouseButton(e, ev)
}

func (c ControlsFuncs[T]) OnMouseMove(e T, ev MouseMoveEvent) bool {
	return c.MouseMove != nil && c.MouseMove(e, ev)
}

func (c ControlsFuncs[T]) OnMouseWheel(e T, ev MouseWheelEvent) bool {
	return c.MouseWheel != nil && c.MouseWheel(e, ev)
}

func (c ControlsFuncs[T]) OnResize(e T, ev ResizeEvent) bool {
	return c.Resize != nil && c.Resize(e, ev)
}
