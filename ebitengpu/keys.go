package ebitengpu

import (
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/grove"
)

// keyMap translates the ebiten keys grove knows about. Everything else is
// reported as grove.KeyUnknown and not polled.
var keyMap = map[ebiten.Key]grove.Key{
	ebiten.KeySpace:        grove.KeySpace,
	ebiten.KeyQuote:        grove.KeyApostrophe,
	ebiten.KeyComma:        grove.KeyComma,
	ebiten.KeyMinus:        grove.KeyMinus,
	ebiten.KeyPeriod:       grove.KeyPeriod,
	ebiten.KeySlash:        grove.KeySlash,
	ebiten.KeyDigit0:       grove.Key0,
	ebiten.KeyDigit1:       grove.Key1,
	ebiten.KeyDigit2:       grove.Key2,
	ebiten.KeyDigit3:       grove.Key3,
	ebiten.KeyDigit4:       grove.Key4,
	ebiten.KeyDigit5:       grove.Key5,
	ebiten.KeyDigit6:       grove.Key6,
	ebiten.KeyDigit7:       grove.Key7,
	ebiten.KeyDigit8:       grove.Key8,
	ebiten.KeyDigit9:       grove.Key9,
	ebiten.KeySemicolon:    grove.KeySemicolon,
	ebiten.KeyEqual:        grove.KeyEqual,
	ebiten.KeyA:            grove.KeyA,
	ebiten.KeyB:            grove.KeyB,
	ebiten.KeyC:            grove.KeyC,
	ebiten.KeyD:            grove.KeyD,
	ebiten.KeyE:            grove.KeyE,
	ebiten.KeyF:            grove.KeyF,
	ebiten.KeyG:            grove.KeyG,
	ebiten.KeyH:            grove.KeyH,
	ebiten.KeyI:            grove.KeyI,
	ebiten.KeyJ:            grove.KeyJ,
	ebiten.KeyK:            grove.KeyK,
	ebiten.KeyL:            grove.KeyL,
	ebiten.KeyM:            grove.KeyM,
	ebiten.KeyN:            grove.KeyN,
	ebiten.KeyO:            grove.KeyO,
	ebiten.KeyP:            grove.KeyP,
	ebiten.KeyQ:            grove.KeyQ,
	ebiten.KeyR:            grove.KeyR,
	ebiten.KeyS:            grove.KeyS,
	ebiten.KeyT:            grove.KeyT,
	ebiten.KeyU:            grove.KeyU,
	ebiten.KeyV:            grove.KeyV,
	ebiten.KeyW:            grove.KeyW,
	ebiten.KeyX:            grove.KeyX,
	ebiten.KeyY:            grove.KeyY,
	ebiten.KeyZ:            grove.KeyZ,
	ebiten.KeyBracketLeft:  grove.KeyLeftBracket,
	ebiten.KeyBackslash:    grove.KeyBackslash,
	ebiten.KeyBracketRight: grove.KeyRightBracket,
	ebiten.KeyBackquote:    grove.KeyGraveAccent,
	ebiten.KeyEscape:       grove.KeyEscape,
	ebiten.KeyEnter:        grove.KeyEnter,
	ebiten.KeyTab:          grove.KeyTab,
	ebiten.KeyBackspace:    grove.KeyBackspace,
	ebiten.KeyInsert:       grove.KeyInsert,
	ebiten.KeyDelete:       grove.KeyDelete,
	ebiten.KeyArrowRight:   grove.KeyRight,
	ebiten.KeyArrowLeft:    grove.KeyLeft,
	ebiten.KeyArrowDown:    grove.KeyDown,
	ebiten.KeyArrowUp:      grove.KeyUp,
	ebiten.KeyPageUp:       grove.KeyPageUp,
	ebiten.KeyPageDown:     grove.KeyPageDown,
	ebiten.KeyHome:         grove.KeyHome,
	ebiten.KeyEnd:          grove.KeyEnd,
	ebiten.KeyF1:           grove.KeyF1,
	ebiten.KeyF2:           grove.KeyF2,
	ebiten.KeyF3:           grove.KeyF3,
	ebiten.KeyF4:           grove.KeyF4,
	ebiten.KeyF5:           grove.KeyF5,
	ebiten.KeyF6:           grove.KeyF6,
	ebiten.KeyF7:           grove.KeyF7,
	ebiten.KeyF8:           grove.KeyF8,
	ebiten.KeyF9:           grove.KeyF9,
	ebiten.KeyF10:          grove.KeyF10,
	ebiten.KeyF11:          grove.KeyF11,
	ebiten.KeyF12:          grove.KeyF12,
	ebiten.KeyShiftLeft:    grove.KeyLeftShift,
	ebiten.KeyControlLeft:  grove.KeyLeftControl,
	ebiten.KeyAltLeft:      grove.KeyLeftAlt,
	ebiten.KeyMetaLeft:     grove.KeyLeftSuper,
	ebiten.KeyShiftRight:   grove.KeyRightShift,
	ebiten.KeyControlRight: grove.KeyRightControl,
	ebiten.KeyAltRight:     grove.KeyRightAlt,
	ebiten.KeyMetaRight:    grove.KeyRightSuper,
}

// polledKeys lists the ebiten keys checked every tick, in a stable order.
var polledKeys = func() []ebiten.Key {
	keys := make([]ebiten.Key, 0, len(keyMap))
	for k := range keyMap {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}()

// TranslateKey maps an ebiten key to its grove equivalent.
func TranslateKey(k ebiten.Key) grove.Key {
	if gk, ok := keyMap[k]; ok {
		return gk
	}
	return grove.KeyUnknown
}
