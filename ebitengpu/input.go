package ebitengpu

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/phanxgames/grove"
)

// Key repeat timing in ticks.
const (
	repeatDelay    = 30
	repeatInterval = 4
)

var mouseButtons = [...]struct {
	ebiten ebiten.MouseButton
	grove  grove.MouseButton
}{
	{ebiten.MouseButtonLeft, grove.MouseButtonLeft},
	{ebiten.MouseButtonRight, grove.MouseButtonRight},
	{ebiten.MouseButtonMiddle, grove.MouseButtonMiddle},
}

// Input polls ebiten's input state once per tick and dispatches the changes
// to a scene as grove events.
type Input struct {
	lastX, lastY int
	hasCursor    bool
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() grove.KeyModifiers {
	var mods grove.KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= grove.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= grove.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= grove.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= grove.ModMeta
	}
	return mods
}

// repeating reports whether a key held for d ticks should auto-repeat now.
func repeating(d int) bool {
	return d > repeatDelay && (d-repeatDelay)%repeatInterval == 0
}

// Poll dispatches keys, then buttons, then cursor motion, then the wheel.
func (in *Input) Poll(s *grove.Scene) {
	mods := readModifiers()

	for _, k := range polledKeys {
		var action grove.Action
		switch {
		case inpututil.IsKeyJustPressed(k):
			action = grove.ActionPress
		case inpututil.IsKeyJustReleased(k):
			action = grove.ActionRelease
		case repeating(inpututil.KeyPressDuration(k)):
			action = grove.ActionRepeat
		default:
			continue
		}
		s.OnKey(grove.KeyEvent{Key: keyMap[k], Action: action, Mods: mods})
	}

	for _, b := range mouseButtons {
		switch {
		case inpututil.IsMouseButtonJustPressed(b.ebiten):
			s.OnMouseButton(grove.MouseButtonEvent{Button: b.grove, Action: grove.ActionPress, Mods: mods})
		case inpututil.IsMouseButtonJustReleased(b.ebiten):
			s.OnMouseButton(grove.MouseButtonEvent{Button: b.grove, Action: grove.ActionRelease, Mods: mods})
		}
	}

	x, y := ebiten.CursorPosition()
	if ev, ok := in.motion(x, y); ok {
		s.OnMouseMove(ev)
	}

	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		s.OnMouseWheel(grove.MouseWheelEvent{X: float32(wx), Y: float32(wy)})
	}
}

// motion returns the move event for a cursor at (x, y), or false when it has
// not moved. The first observed position yields zero relative motion.
func (in *Input) motion(x, y int) (grove.MouseMoveEvent, bool) {
	if in.hasCursor && x == in.lastX && y == in.lastY {
		return grove.MouseMoveEvent{}, false
	}
	ev := grove.MouseMoveEvent{X: float32(x), Y: float32(y)}
	if in.hasCursor {
		ev.XRel = float32(x - in.lastX)
		ev.YRel = float32(y - in.lastY)
	}
	in.lastX, in.lastY, in.hasCursor = x, y, true
	return ev, true
}
