package core

import (
	"fmt"
	"strings"
)

// KeyCode represents non-character keys
type KeyCode int

const (
	KeyUnknown KeyCode = iota
	KeyEnter
	KeyTab
	KeyBackspace
	KeyEscape
	KeySpace

	// Arrow keys
	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	// Navigation keys
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	// Editing keys
	KeyDelete
	KeyInsert
)

var keyNames = map[KeyCode]string{
	KeyEnter:     "Enter",
	KeyTab:       "Tab",
	KeyBackspace: "Backspace",
	KeyEscape:    "Escape",
	KeySpace:     "Space",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyPageUp:    "PageUp",
	KeyPageDown:  "PageDown",
	KeyDelete:    "Delete",
	KeyInsert:    "Insert",
}

// vi notation for named keys, as used in key symbols (<Esc>, <CR>, ...)
var keySymbols = map[KeyCode]string{
	KeyEnter:     "CR",
	KeyTab:       "Tab",
	KeyBackspace: "BS",
	KeyEscape:    "Esc",
	KeySpace:     "Space",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyPageUp:    "PageUp",
	KeyPageDown:  "PageDown",
	KeyDelete:    "Del",
	KeyInsert:    "Insert",
}

// KeyModifiers represents modifier keys held during a keystroke
type KeyModifiers uint8

const (
	ModNone KeyModifiers = 0
	ModCtrl KeyModifiers = 1 << iota
	ModAlt
	ModShift
)

// KeyEvent represents a keyboard input event
type KeyEvent struct {
	Rune      rune
	Key       KeyCode
	Modifiers KeyModifiers
}

// String returns a human readable form of the key, e.g. "Ctrl+r" or "Escape".
func (k KeyEvent) String() string {
	var parts []string

	if k.Modifiers&ModCtrl != 0 {
		parts = append(parts, "Ctrl")
	}
	if k.Modifiers&ModAlt != 0 {
		parts = append(parts, "Alt")
	}
	if k.Modifiers&ModShift != 0 {
		parts = append(parts, "Shift")
	}

	switch {
	case k.Key == KeyUnknown && k.Rune != 0:
		parts = append(parts, string(k.Rune))
	case keyNames[k.Key] != "":
		parts = append(parts, keyNames[k.Key])
	case k.Key == KeyUnknown:
		parts = append(parts, "Unknown")
	default:
		parts = append(parts, fmt.Sprintf("SpecialKey(%d)", k.Key))
	}

	return strings.Join(parts, "+")
}

// Symbol returns the key in vi notation. Printable keys are the character itself
// ("y", "$"), named keys are bracketed ("<Esc>", "<CR>") and modified keys carry
// their modifier ("<C-r>", "<A-x>").
func (k KeyEvent) Symbol() string {
	var name string
	if k.Key != KeyUnknown {
		name = keySymbols[k.Key]
		if name == "" {
			name = fmt.Sprintf("Key%d", k.Key)
		}
	} else if k.Rune != 0 {
		if k.Modifiers&(ModCtrl|ModAlt) == 0 {
			return string(k.Rune)
		}
		name = string(k.Rune)
	} else {
		name = "Nop"
	}

	switch {
	case k.Modifiers&ModCtrl != 0:
		name = "C-" + name
	case k.Modifiers&ModAlt != 0:
		name = "A-" + name
	}

	return "<" + name + ">"
}
