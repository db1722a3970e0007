package grove

import "time"

// Entity is a Node carrying three ordered system lists typed on the concrete
// entity T. Concrete entities embed Entity[*Self] and call Bind(self) from
// their constructor so systems receive the full type:
//
//	type Spinner struct {
//		grove.Entity[*Spinner]
//		grove.Transform
//	}
//
//	func NewSpinner() *Spinner {
//		s := &Spinner{Transform: grove.NewTransform()}
//		s.Bind(s)
//		return s
//	}
//
// Physics systems run in attachment order on Update, render systems in
// attachment order on Render. Input is offered to controls systems in
// reverse attachment order and the first one to consume it wins; if none
// does, the event falls through to the children.
//
// A disabled entity runs none of its systems and consumes no input. Update
// and Render still reach its children, whose own flags decide for them.
type Entity[T any] struct {
	Node

	self     T
	controls []ControlsSystem[T]
	physics  []PhysicsSystem[T]
	render   []RenderSystem[T]
}

// Bind sets the handle passed to every system. Call it once from the
// concrete type's constructor.
func (e *Entity[T]) Bind(self T) {
	e.self = self
}

// Self returns the handle set by Bind.
func (e *Entity[T]) Self() T {
	return e.self
}

// AttachControls appends an input system.
func (e *Entity[T]) AttachControls(sys ControlsSystem[T]) {
	e.controls = append(e.controls, sys)
}

// AttachPhysics appends an update system.
func (e *Entity[T]) AttachPhysics(sys PhysicsSystem[T]) {
	e.physics = append(e.physics, sys)
}

// AttachRender appends a render system.
func (e *Entity[T]) AttachRender(sys RenderSystem[T]) {
	e.render = append(e.render, sys)
}

// NumSystems returns the number of attached controls, physics and render
// systems.
func (e *Entity[T]) NumSystems() (controls, physics, render int) {
	return len(e.controls), len(e.physics), len(e.render)
}

// UpdateSystems runs the physics systems in order. It is a no-op while the
// entity is disabled.
func (e *Entity[T]) UpdateSystems(dt time.Duration) error {
	if e.disabled {
		return nil
	}
	for _, sys := range e.physics {
		if err := sys.Update(e.self, dt); err != nil {
			return err
		}
	}
	return nil
}

// RenderSystems runs the render systems in order. It is a no-op while the
// entity is disabled.
func (e *Entity[T]) RenderSystems(dt time.Duration) error {
	if e.disabled {
		return nil
	}
	for _, sys := range e.render {
		if err := sys.Render(e.self, dt); err != nil {
			return err
		}
	}
	return nil
}

// Update runs the physics systems, then updates the children.
func (e *Entity[T]) Update(dt time.Duration) error {
	if err := e.UpdateSystems(dt); err != nil {
		return err
	}
	return e.UpdateChildren(dt)
}

// Render runs the render systems, then renders the children.
func (e *Entity[T]) Render(dt time.Duration) error {
	if err := e.RenderSystems(dt); err != nil {
		return err
	}
	return e.RenderChildren(dt)
}

// OnKey offers ev to the controls systems, newest first, then to the children.
func (e *Entity[T]) OnKey(ev KeyEvent) bool {
	if e.disabled {
		return false
	}
	for i := len(e.controls) - 1; i >= 0; i-- {
		if e.controls[i].OnKey(e.self, ev) {
			return true
		}
	}
	return e.Node.OnKey(ev)
}

// OnMouseButton offers ev to the controls systems, newest first, then to the children.
func (e *Entity[T]) OnMouseButton(ev MouseButtonEvent) bool {
	if e.disabled {
		return false
	}
	for i := len(e.controls) - 1; i >= 0; i-- {
		if e.controls[i].OnMouseButton(e.self, ev) {
			return true
		}
	}
	return e.Node.OnMouseButton(ev)
}

// OnMouseMove offers ev to the controls systems, newest first, then to the children.
func (e *Entity[T]) OnMouseMove(ev MouseMoveEvent) bool {
	if e.disabled {
		return false
	}
	for i := len(e.controls) - 1; i >= 0; i-- {
		if e.controls[i].OnMouseMove(e.self, ev) {
			return true
		}
	}
	return e.Node.OnMouseMove(ev)
}

// OnMouseWheel offers ev to the controls systems, newest first, then to the children.
func (e *Entity[T]) OnMouseWheel(ev MouseWheelEvent) bool {
	if e.disabled {
		return false
	}
	for i := len(e.controls) - 1; i >= 0; i-- {
		if e.controls[i].OnMouseWheel(e.self, ev) {
			return true
		}
	}
	return e.Node.OnMouseWheel(ev)
}

// OnResize offers ev to the controls systems, newest first, then to the children.
func (e *Entity[T]) OnResize(ev ResizeEvent) bool {
	if e.disabled {
		return false
	}
	for i := len(e.controls) - 1; i >= 0; i-- {
		if e.controls[i].OnResize(e.self, ev) {
			return true
		}
	}
	return e.Node.OnResize(ev)
}
