package cpu

const KEY_COUNT = 16

// Keypad latches the state of the 16 hex keys, 0x0 through 0xF.
type Keypad [KEY_COUNT]bool

// Pressed reports the state of a key. Only the low nibble of key is used.
func (kp *Keypad) Pressed(key uint8) bool {
	return kp[key&0xf]
}

// First returns the lowest numbered pressed key.
func (kp *Keypad) First() (key uint8, ok bool) {
	for n, down := range kp {
		if down {
			return uint8(n), true
		}
	}
	return
}

func (kp *Keypad) Reset() {
	clear(kp[:])
}

// String renders the latch as sixteen 0/1 characters, key 0 first.
func (kp Keypad) String() (text string) {
	for _, down := range kp {
		if down {
			text += "1"
		} else {
			text += "0"
		}
	}
	return
}
