package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayDraw(t *testing.T) {
	assert := assert.New(t)

	d := &Display{}
	collision := d.Draw(10, 5, []byte{0x81})
	assert.False(collision)
	assert.True(d.Pixel(10, 5))
	assert.True(d.Pixel(17, 5))
	assert.False(d.Pixel(11, 5))

	collision = d.Draw(17, 5, []byte{0x80})
	assert.True(collision)
	assert.False(d.Pixel(17, 5))
	assert.True(d.Pixel(10, 5))

	// Drawing nothing never collides.
	collision = d.Draw(10, 5, []byte{0x00})
	assert.False(collision)
	collision = d.Draw(10, 5, nil)
	assert.False(collision)
}

func TestDisplayLit(t *testing.T) {
	assert := assert.New(t)

	d := &Display{}
	d.Draw(63, 31, []byte{0xc0})

	type xy struct{ x, y int }
	lit := []xy{}
	frame := d.Snapshot()
	for x, y := range frame.Lit() {
		lit = append(lit, xy{x, y})
	}
	assert.Equal([]xy{{0, 31}, {63, 31}}, lit)
	assert.Equal(2, frame.Count())

	d.Clear()
	assert.Equal(0, d.Snapshot().Count())
}

func TestFrameString(t *testing.T) {
	assert := assert.New(t)

	d := &Display{}
	d.Draw(0, 0, []byte{0xa0})

	text := d.Snapshot().String()
	rows := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	assert.Equal(DISPLAY_HEIGHT, len(rows))
	assert.Equal("#.#"+strings.Repeat(".", DISPLAY_WIDTH-3), rows[0])
	assert.Equal(strings.Repeat(".", DISPLAY_WIDTH), rows[1])
}
