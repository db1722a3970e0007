package grove

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float32
}

// ColorBlack is the default clear color.
var ColorBlack = Color{0, 0, 0, 1}

// ColorWhite is the default material tint.
var ColorWhite = Color{1, 1, 1, 1}

// Vec4 returns the color as four packed floats in RGBA order.
func (c Color) Vec4() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// Action is the state transition carried by key and mouse button events.
type Action uint8

const (
	ActionRelease Action = iota // key or button released
	ActionPress                 // key or button pressed
	ActionRepeat                // key held long enough to auto-repeat
)

// Key identifies a keyboard key independently of the windowing backend.
type Key uint16

const (
	KeyUnknown Key = iota
	KeySpace
	KeyApostrophe
	KeyComma
	KeyMinus
	KeyPeriod
	KeySlash
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeySemicolon
	KeyEqual
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeyLeftBracket
	KeyBackslash
	KeyRightBracket
	KeyGraveAccent
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyInsert
	KeyDelete
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyLeftShift
	KeyLeftControl
	KeyLeftAlt
	KeyLeftSuper
	KeyRightShift
	KeyRightControl
	KeyRightAlt
	KeyRightSuper
)

// KeyEvent is delivered when a key changes state.
type KeyEvent struct {
	Key    Key
	Action Action
	Mods   KeyModifiers
}

// MouseButtonEvent is delivered when a mouse button changes state.
type MouseButtonEvent struct {
	Button MouseButton
	Action Action
	Mods   KeyModifiers
}

// MouseMoveEvent carries the absolute cursor position in window pixels and
// the motion relative to the previous event.
type MouseMoveEvent struct {
	X, Y       float32
	XRel, YRel float32
}

// MouseWheelEvent carries scroll offsets. Positive Y scrolls away from the user.
type MouseWheelEvent struct {
	X, Y float32
}

// ResizeEvent carries the new framebuffer size in pixels.
type ResizeEvent struct {
	Width, Height int
}
