package wgpudevice

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/phanxgames/grove"
)

var keyMap = map[glfw.Key]grove.Key{
	glfw.KeySpace:        grove.KeySpace,
	glfw.KeyApostrophe:   grove.KeyApostrophe,
	glfw.KeyComma:        grove.KeyComma,
	glfw.KeyMinus:        grove.KeyMinus,
	glfw.KeyPeriod:       grove.KeyPeriod,
	glfw.KeySlash:        grove.KeySlash,
	glfw.Key0:            grove.Key0,
	glfw.Key1:            grove.Key1,
	glfw.Key2:            grove.Key2,
	glfw.Key3:            grove.Key3,
	glfw.Key4:            grove.Key4,
	glfw.Key5:            grove.Key5,
	glfw.Key6:            grove.Key6,
	glfw.Key7:            grove.Key7,
	glfw.Key8:            grove.Key8,
	glfw.Key9:            grove.Key9,
	glfw.KeySemicolon:    grove.KeySemicolon,
	glfw.KeyEqual:        grove.KeyEqual,
	glfw.KeyA:            grove.KeyA,
	glfw.KeyB:            grove.KeyB,
	glfw.KeyC:            grove.KeyC,
	glfw.KeyD:            grove.KeyD,
	glfw.KeyE:            grove.KeyE,
	glfw.KeyF:            grove.KeyF,
	glfw.KeyG:            grove.KeyG,
	glfw.KeyH:            grove.KeyH,
	glfw.KeyI:            grove.KeyI,
	glfw.KeyJ:            grove.KeyJ,
	glfw.KeyK:            grove.KeyK,
	glfw.KeyL:            grove.KeyL,
	glfw.KeyM:            grove.KeyM,
	glfw.KeyN:            grove.KeyN,
	glfw.KeyO:            grove.KeyO,
	glfw.KeyP:            grove.KeyP,
	glfw.KeyQ:            grove.KeyQ,
	glfw.KeyR:            grove.KeyR,
	glfw.KeyS:            grove.KeyS,
	glfw.KeyT:            grove.KeyT,
	glfw.KeyU:            grove.KeyU,
	glfw.KeyV:            grove.KeyV,
	glfw.KeyW:            grove.KeyW,
	glfw.KeyX:            grove.KeyX,
	glfw.KeyY:            grove.KeyY,
	glfw.KeyZ:            grove.KeyZ,
	glfw.KeyLeftBracket:  grove.KeyLeftBracket,
	glfw.KeyBackslash:    grove.KeyBackslash,
	glfw.KeyRightBracket: grove.KeyRightBracket,
	glfw.KeyGraveAccent:  grove.KeyGraveAccent,
	glfw.KeyEscape:       grove.KeyEscape,
	glfw.KeyEnter:        grove.KeyEnter,
	glfw.KeyTab:          grove.KeyTab,
	glfw.KeyBackspace:    grove.KeyBackspace,
	glfw.KeyInsert:       grove.KeyInsert,
	glfw.KeyDelete:       grove.KeyDelete,
	glfw.KeyRight:        grove.KeyRight,
	glfw.KeyLeft:         grove.KeyLeft,
	glfw.KeyDown:         grove.KeyDown,
	glfw.KeyUp:           grove.KeyUp,
	glfw.KeyPageUp:       grove.KeyPageUp,
	glfw.KeyPageDown:     grove.KeyPageDown,
	glfw.KeyHome:         grove.KeyHome,
	glfw.KeyEnd:          grove.KeyEnd,
	glfw.KeyF1:           grove.KeyF1,
	glfw.KeyF2:           grove.KeyF2,
	glfw.KeyF3:           grove.KeyF3,
	glfw.KeyF4:           grove.KeyF4,
	glfw.KeyF5:           grove.KeyF5,
	glfw.KeyF6:           grove.KeyF6,
	glfw.KeyF7:           grove.KeyF7,
	glfw.KeyF8:           grove.KeyF8,
	glfw.KeyF9:           grove.KeyF9,
	glfw.KeyF10:          grove.KeyF10,
	glfw.KeyF11:          grove.KeyF11,
	glfw.KeyF12:          grove.KeyF12,
	glfw.KeyLeftShift:    grove.KeyLeftShift,
	glfw.KeyLeftControl:  grove.KeyLeftControl,
	glfw.KeyLeftAlt:      grove.KeyLeftAlt,
	glfw.KeyLeftSuper:    grove.KeyLeftSuper,
	glfw.KeyRightShift:   grove.KeyRightShift,
	glfw.KeyRightControl: grove.KeyRightControl,
	glfw.KeyRightAlt:     grove.KeyRightAlt,
	glfw.KeyRightSuper:   grove.KeyRightSuper,
}

// TranslateKey maps a GLFW key to its grove equivalent.
func TranslateKey(k glfw.Key) grove.Key {
	if gk, ok := keyMap[k]; ok {
		return gk
	}
	return grove.KeyUnknown
}

func translateAction(a glfw.Action) grove.Action {
	switch a {
	case glfw.Press:
		return grove.ActionPress
	case glfw.Repeat:
		return grove.ActionRepeat
	}
	return grove.ActionRelease
}

func translateMods(m glfw.ModifierKey) grove.KeyModifiers {
	var mods grove.KeyModifiers
	if m&glfw.ModShift != 0 {
		mods |= grove.ModShift
	}
	if m&glfw.ModControl != 0 {
		mods |= grove.ModCtrl
	}
	if m&glfw.ModAlt != 0 {
		mods |= grove.ModAlt
	}
	if m&glfw.ModSuper != 0 {
		mods |= grove.ModMeta
	}
	return mods
}

func translateButton(b glfw.MouseButton) (grove.MouseButton, bool) {
	switch b {
	case glfw.MouseButtonLeft:
		return grove.MouseButtonLeft, true
	case glfw.MouseButtonRight:
		return grove.MouseButtonRight, true
	case glfw.MouseButtonMiddle:
		return grove.MouseButtonMiddle, true
	}
	return 0, false
}
