package cpu

// Timer holds the delay and sound countdown timers.
type Timer struct {
	Delay uint8
	Sound uint8
}

// Tick counts both timers down by one, stopping at zero.
// Returns true when the sound timer went from one to zero.
func (t *Timer) Tick() (edge bool) {
	if t.Delay > 0 {
		t.Delay--
	}
	if t.Sound > 0 {
		t.Sound--
		edge = t.Sound == 0
	}
	return
}

func (t *Timer) Reset() {
	t.Delay = 0
	t.Sound = 0
}
