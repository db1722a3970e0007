package grove

type injectKind uint8

const (
	injectKey injectKind = iota
	injectButton
	injectMove
	injectWheel
	injectResize
)

// injectedEvent is a single queued synthetic input event.
type injectedEvent struct {
	kind   injectKind
	key    KeyEvent
	button MouseButtonEvent
	x, y   float32
	resize ResizeEvent
}

// InjectKey queues a key event. One queued event is dispatched at the start
// of each Update, so a press and its release land on consecutive frames.
func (s *Scene) InjectKey(key Key, action Action, mods KeyModifiers) {
	s.injectQueue = append(s.injectQueue, injectedEvent{
		kind: injectKey,
		key:  KeyEvent{Key: key, Action: action, Mods: mods},
	})
}

// InjectKeyPress queues a press followed by a release of key.
func (s *Scene) InjectKeyPress(key Key) {
	s.InjectKey(key, ActionPress, 0)
	s.InjectKey(key, ActionRelease, 0)
}

// InjectMouseButton queues a mouse button event.
func (s *Scene) InjectMouseButton(button MouseButton, action Action) {
	s.injectQueue = append(s.injectQueue, injectedEvent{
		kind:   injectButton,
		button: MouseButtonEvent{Button: button, Action: action},
	})
}

// InjectMouseMove queues a cursor move to (x, y) in window pixels. The
// relative motion is computed against the cursor position at dispatch time.
func (s *Scene) InjectMouseMove(x, y float32) {
	s.injectQueue = append(s.injectQueue, injectedEvent{kind: injectMove, x: x, y: y})
}

// InjectMouseWheel queues a scroll event.
func (s *Scene) InjectMouseWheel(dx, dy float32) {
	s.injectQueue = append(s.injectQueue, injectedEvent{kind: injectWheel, x: dx, y: dy})
}

// InjectResize queues a framebuffer resize.
func (s *Scene) InjectResize(width, height int) {
	s.injectQueue = append(s.injectQueue, injectedEvent{
		kind:   injectResize,
		resize: ResizeEvent{Width: width, Height: height},
	})
}

// InjectClick queues a move to (x, y) followed by a left press and release.
// Consumes three frames.
func (s *Scene) InjectClick(x, y float32) {
	s.InjectMouseMove(x, y)
	s.InjectMouseButton(MouseButtonLeft, ActionPress)
	s.InjectMouseButton(MouseButtonLeft, ActionRelease)
}

// InjectDrag queues a full left-button drag: move to (fromX, fromY), press,
// frames-2 linearly interpolated moves, a move to (toX, toY) and release.
// Minimum frames is 2.
func (s *Scene) InjectDrag(fromX, fromY, toX, toY float32, frames int) {
	if frames < 2 {
		frames = 2
	}
	s.InjectMouseMove(fromX, fromY)
	s.InjectMouseButton(MouseButtonLeft, ActionPress)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float32(i) / float32(steps+1)
		s.InjectMouseMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	s.InjectMouseMove(toX, toY)
	s.InjectMouseButton(MouseButtonLeft, ActionRelease)
}

// PendingInjected returns the number of queued synthetic events.
func (s *Scene) PendingInjected() int {
	return len(s.injectQueue)
}

// processInjected pops one event from the inject queue and dispatches it
// through the scene's own input hooks, identical to real input.
// Returns true if an event was consumed from the queue.
func (s *Scene) processInjected() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	switch evt.kind {
	case injectKey:
		s.OnKey(evt.key)
	case injectButton:
		s.OnMouseButton(evt.button)
	case injectMove:
		s.OnMouseMove(MouseMoveEvent{X: evt.x, Y: evt.y, XRel: evt.x - s.cursorX, YRel: evt.y - s.cursorY})
	case injectWheel:
		s.OnMouseWheel(MouseWheelEvent{X: evt.x, Y: evt.y})
	case injectResize:
		s.OnResize(evt.resize)
	}
	return true
}
