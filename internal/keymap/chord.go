package keymap

import "strings"

const (
	modCtrlAlt = "<Ctrl-Alt-"
	modCtrl    = "<Ctrl-"
	modAlt     = "<Alt-"
)

// ParseChord converts a chord string into the codes a terminal delivers when
// the chord is typed. It returns nil when the string is not a valid chord.
//
// A chord is one or more printable, non-digit ASCII characters, optionally
// ending in a single modified key: <Ctrl-x> (x a letter) or <Alt-x> (x
// printable, digits allowed). A modified key anywhere but the end, an
// unsupported modified key, or <Ctrl-Alt-x> makes the whole chord invalid.
func ParseChord(s string) Chord {
	var seq Chord
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isLiteral(c) {
			return nil
		}
		if c == '<' && hasModifier(s[i:]) {
			special := parseModified(s[i:])
			if special == nil {
				return nil
			}
			return append(seq, special...)
		}
		seq = append(seq, Code(c))
	}
	return seq
}

func hasModifier(s string) bool {
	return strings.HasPrefix(s, modCtrl) || strings.HasPrefix(s, modAlt)
}

// parseModified decodes a trailing <Mod-x> token. s starts at the '<'.
func parseModified(s string) Chord {
	var mod string
	switch {
	case strings.HasPrefix(s, modCtrlAlt):
		mod = modCtrlAlt
	case strings.HasPrefix(s, modCtrl):
		mod = modCtrl
	case strings.HasPrefix(s, modAlt):
		mod = modAlt
	default:
		return nil
	}
	// The token is the modifier, one key and the closing '>'.
	if len(s) != len(mod)+2 || s[len(s)-1] != '>' {
		return nil
	}
	key := s[len(s)-2]
	switch mod {
	case modCtrl:
		if isAlpha(key) {
			return Chord{Ctrl(key)}
		}
	case modAlt:
		if isLiteral(key) || isDigit(key) {
			return Chord{KeyAlt, Code(key)}
		}
	}
	// TODO: map <Ctrl-Alt-x> once the terminal layer can report it.
	return nil
}

// isLiteral reports whether c is a printable, non-digit ASCII character.
func isLiteral(c byte) bool {
	return (c > 32 && c < 48) || (c > 57 && c < 127)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
