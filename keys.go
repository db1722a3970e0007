package grove

var keyNames = [...]string{
	KeyUnknown:      "unknown",
	KeySpace:        "space",
	KeyApostrophe:   "apostrophe",
	KeyComma:        "comma",
	KeyMinus:        "minus",
	KeyPeriod:       "period",
	KeySlash:        "slash",
	Key0:            "0",
	Key1:            "1",
	Key2:            "2",
	Key3:            "3",
	Key4:            "4",
	Key5:            "5",
	Key6:            "6",
	Key7:            "7",
	Key8:            "8",
	Key9:            "9",
	KeySemicolon:    "semicolon",
	KeyEqual:        "equal",
	KeyA:            "a",
	KeyB:            "b",
	KeyC:            "c",
	KeyD:            "d",
	KeyE:            "e",
	KeyF:            "f",
	KeyG:            "g",
	KeyH:            "h",
	KeyI:            "i",
	KeyJ:            "j",
	KeyK:            "k",
	KeyL:            "l",
	KeyM:            "m",
	KeyN:            "n",
	KeyO:            "o",
	KeyP:            "p",
	KeyQ:            "q",
	KeyR:            "r",
	KeyS:            "s",
	KeyT:            "t",
	KeyU:            "u",
	KeyV:            "v",
	KeyW:            "w",
	KeyX:            "x",
	KeyY:            "y",
	KeyZ:            "z",
	KeyLeftBracket:  "left_bracket",
	KeyBackslash:    "backslash",
	KeyRightBracket: "right_bracket",
	KeyGraveAccent:  "grave_accent",
	KeyEscape:       "escape",
	KeyEnter:        "enter",
	KeyTab:          "tab",
	KeyBackspace:    "backspace",
	KeyInsert:       "insert",
	KeyDelete:       "delete",
	KeyRight:        "right",
	KeyLeft:         "left",
	KeyDown:         "down",
	KeyUp:           "up",
	KeyPageUp:       "page_up",
	KeyPageDown:     "page_down",
	KeyHome:         "home",
	KeyEnd:          "end",
	KeyF1:           "f1",
	KeyF2:           "f2",
	KeyF3:           "f3",
	KeyF4:           "f4",
	KeyF5:           "f5",
	KeyF6:           "f6",
	KeyF7:           "f7",
	KeyF8:           "f8",
	KeyF9:           "f9",
	KeyF10:          "f10",
	KeyF11:          "f11",
	KeyF12:          "f12",
	KeyLeftShift:    "left_shift",
	KeyLeftControl:  "left_control",
	KeyLeftAlt:      "left_alt",
	KeyLeftSuper:    "left_super",
	KeyRightShift:   "right_shift",
	KeyRightControl: "right_control",
	KeyRightAlt:     "right_alt",
	KeyRightSuper:   "right_super",
}

// String returns the key's lower-case name, e.g. "a", "space", "left_shift".
func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return keyNames[KeyUnknown]
}

var keysByName = func() map[string]Key {
	m := make(map[string]Key, len(keyNames))
	for k, name := range keyNames {
		m[name] = Key(k)
	}
	return m
}()

// ParseKey returns the key with the given name as produced by Key.String.
func ParseKey(name string) (Key, bool) {
	k, ok := keysByName[name]
	return k, ok
}
