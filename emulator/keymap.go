package emulator

import (
	"strings"
	"unicode"
)

// KEY_LAYOUT is the keyboard layout of the hex keypad: the rune at index n
// presses key n.
//
//	1 2 3 C        1 2 3 4
//	4 5 6 D   <=   q w e r
//	7 8 9 E        a s d f
//	A 0 B F        z x c v
const KEY_LAYOUT = "x123qweasdzc4rfv"

// KeyOf returns the hex key mapped to a keyboard rune.
func KeyOf(ch rune) (key uint8, ok bool) {
	n := strings.IndexRune(KEY_LAYOUT, unicode.ToLower(ch))
	if n < 0 {
		return
	}

	return uint8(n), true
}
