package cpu

import (
	"iter"
	"strings"
)

const (
	DISPLAY_WIDTH  = 64
	DISPLAY_HEIGHT = 32
)

// Frame is a copy of the display, indexed [y][x]. True pixels are lit.
type Frame [DISPLAY_HEIGHT][DISPLAY_WIDTH]bool

// Lit iterates over the (x, y) coordinates of every lit pixel.
func (fr Frame) Lit() iter.Seq2[int, int] {
	return func(yield func(x, y int) bool) {
		for y, row := range fr {
			for x, on := range row {
				if on && !yield(x, y) {
					return
				}
			}
		}
	}
}

// Count of lit pixels.
func (fr Frame) Count() (count int) {
	for range fr.Lit() {
		count++
	}
	return
}

// String renders the frame as rows of '#' (lit) and '.' (unlit).
func (fr Frame) String() string {
	var sb strings.Builder
	sb.Grow(DISPLAY_HEIGHT * (DISPLAY_WIDTH + 1))
	for _, row := range fr {
		for _, on := range row {
			if on {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Display is the monochrome framebuffer. Only Clear and Draw modify it.
type Display struct {
	pixel Frame
}

// Clear turns every pixel off.
func (d *Display) Clear() {
	d.pixel = Frame{}
}

// Draw XORs an 8 pixel wide sprite onto the display with its top left corner
// at (x, y). Every pixel coordinate wraps around its own axis.
// Returns true if any lit pixel was turned off.
func (d *Display) Draw(x, y uint8, sprite []byte) (collision bool) {
	for row, bits := range sprite {
		py := (int(y) + row) % DISPLAY_HEIGHT
		for col := range 8 {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := (int(x) + col) % DISPLAY_WIDTH
			if d.pixel[py][px] {
				collision = true
			}
			d.pixel[py][px] = !d.pixel[py][px]
		}
	}
	return
}

// Pixel reports whether the pixel at (x, y) is lit. Coordinates wrap.
func (d *Display) Pixel(x, y int) bool {
	return d.pixel[y%DISPLAY_HEIGHT][x%DISPLAY_WIDTH]
}

// Snapshot returns a copy of the current frame.
func (d *Display) Snapshot() Frame {
	return d.pixel
}
