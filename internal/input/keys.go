package input

import "strings"

// Modifiers is the set of held modifier keys.
type Modifiers uint8

const (
	ModCapsLock Modifiers = 1 << iota
	ModFn
	ModCmd
	ModCtrl
	ModOpt
	ModShift
)

// modifierOrder fixes the order modifiers appear in a label.
var modifierOrder = []struct {
	mod  Modifiers
	name string
}{
	{ModCapsLock, "CapsLock"},
	{ModFn, "Fn"},
	{ModCmd, "Cmd"},
	{ModCtrl, "Ctrl"},
	{ModOpt, "Opt"},
	{ModShift, "Shift"},
}

// Count returns how many modifiers are held.
func (m Modifiers) Count() int {
	n := 0
	for _, o := range modifierOrder {
		if m&o.mod != 0 {
			n++
		}
	}
	return n
}

// Parts returns the held modifier names in label order.
func (m Modifiers) Parts() []string {
	var parts []string
	for _, o := range modifierOrder {
		if m&o.mod != 0 {
			parts = append(parts, o.name)
		}
	}
	return parts
}

// LabelSeparator joins label parts.
const LabelSeparator = " + "

// KeyNames maps virtual key codes to display names.
var KeyNames = map[int]string{
	18: "1", 19: "2", 20: "3", 21: "4", 23: "5",
	22: "6", 26: "7", 28: "8", 25: "9", 29: "0",

	0: "A", 11: "B", 8: "C", 2: "D", 14: "E", 3: "F", 5: "G", 4: "H",
	34: "I", 38: "J", 40: "K", 37: "L", 46: "M", 45: "N", 31: "O", 35: "P",
	12: "Q", 15: "R", 1: "S", 17: "T", 32: "U", 9: "V", 13: "W", 7: "X",
	16: "Y", 6: "Z",

	36: "Enter", 48: "Tab", 49: "Space", 51: "Backspace", 53: "Esc",
	123: "←", 124: "→", 125: "↓", 126: "↑",
	117: "Delete", 115: "Home", 119: "End", 116: "PageUp", 121: "PageDown",

	122: "F1", 120: "F2", 99: "F3", 118: "F4", 96: "F5", 97: "F6",
	98: "F7", 100: "F8", 101: "F9", 109: "F10", 103: "F11", 111: "F12",
	105: "F13", 107: "F14", 113: "F15", 106: "F16", 64: "F17", 79: "F18",
	80: "F19", 90: "F20",

	27: "-", 24: "=", 33: "[", 30: "]", 42: "\\",
	41: ";", 39: "'", 43: ",", 47: ".", 44: "/", 50: "`",

	82: "Keypad 0", 83: "Keypad 1", 84: "Keypad 2", 85: "Keypad 3", 86: "Keypad 4",
	87: "Keypad 5", 88: "Keypad 6", 89: "Keypad 7", 91: "Keypad 8", 92: "Keypad 9",
	65: "Keypad .", 67: "Keypad *", 69: "Keypad +", 75: "Keypad /", 78: "Keypad -",
	81: "Keypad =", 76: "Keypad Enter", 71: "Keypad Clear",
}

// Keys whose events always carry the Fn flag on laptop keyboards
// (arrows, navigation block, keypad clear). Fn is not shown for them.
var fnImplied = map[int]bool{
	71: true, 115: true, 116: true, 117: true, 119: true, 121: true,
	123: true, 124: true, 125: true, 126: true,
}

// KeyLabel formats a key-down. Unknown key codes contribute no name; ok is
// false when nothing at all would be shown.
func KeyLabel(code int, mods Modifiers) (string, bool) {
	if fnImplied[code] {
		mods &^= ModFn
	}
	parts := mods.Parts()
	if name := KeyNames[code]; name != "" {
		parts = append(parts, name)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, LabelSeparator), true
}

// ModifierLabel formats a modifier-only chord.
func ModifierLabel(mods Modifiers) (string, bool) {
	parts := mods.Parts()
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, LabelSeparator), true
}

// ModifierTracker emits a modifier event only when more modifiers are held
// than before, so releasing keys is silent and each added key emits once.
type ModifierTracker struct {
	prev Modifiers
}

// Change records the new modifier set and returns the label to emit, if any.
func (t *ModifierTracker) Change(mods Modifiers) (string, bool) {
	increased := mods.Count() > t.prev.Count()
	t.prev = mods
	if !increased {
		return "", false
	}
	return ModifierLabel(mods)
}
