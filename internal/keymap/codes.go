package keymap

// Code identifies one key press as delivered by the terminal driver.
type Code int

const (
	// KeyAlt precedes the code of a key that was pressed together with Alt.
	KeyAlt Code = 123456789

	// KeySynthetic is the first code used for keys that have no character.
	KeySynthetic Code = 1 << 21
)

// Control keys share their ASCII codes.
const (
	KeyTab       Code = 9
	KeyEnter     Code = 13
	KeyEscape    Code = 27
	KeyBackspace Code = 127
)

// Synthetic keys.
const (
	KeyUp Code = KeySynthetic + iota
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeyResize
	KeyShiftTab
	KeyDelete
	KeyInsert
)

var syntheticNames = map[Code]string{
	KeyUp:       "Up",
	KeyDown:     "Down",
	KeyLeft:     "Left",
	KeyRight:    "Right",
	KeyPageUp:   "PageUp",
	KeyPageDown: "PageDown",
	KeyHome:     "Home",
	KeyEnd:      "End",
	KeyResize:   "Resize",
	KeyShiftTab: "ShiftTab",
	KeyDelete:   "Delete",
	KeyInsert:   "Insert",
}

// Ctrl returns the control code for an ASCII letter, or -1.
func Ctrl(letter byte) Code {
	if !isAlpha(letter) {
		return -1
	}
	return Code(toLower(letter)) - 96
}

// IsDigit reports whether c is one of the codes for '0'..'9'.
func IsDigit(c Code) bool {
	return c >= '0' && c <= '9'
}

// String renders the code the way a chord string would spell it.
func (c Code) String() string {
	if name, ok := syntheticNames[c]; ok {
		return "<" + name + ">"
	}
	switch {
	case c == KeyAlt:
		return "<Alt>"
	case c == KeyTab:
		return "<Tab>"
	case c == KeyEnter:
		return "<Enter>"
	case c == KeyEscape:
		return "<Esc>"
	case c == KeyBackspace:
		return "<BS>"
	case c >= 1 && c <= 26:
		return "<Ctrl-" + string(rune('a'+c-1)) + ">"
	case c == ' ':
		return "<Space>"
	}
	return string(rune(c))
}

// Chord is the ordered code sequence of one binding.
type Chord []Code

func (ch Chord) String() string {
	out := ""
	for i := 0; i < len(ch); i++ {
		if ch[i] == KeyAlt && i+1 < len(ch) {
			out += "<Alt-" + string(rune(ch[i+1])) + ">"
			i++
			continue
		}
		out += ch[i].String()
	}
	return out
}
