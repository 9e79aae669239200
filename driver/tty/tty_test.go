//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package tty

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
)

func TestRender(t *testing.T) {
	assert := assert.New(t)

	var frame cpu.Frame
	frame[0][1] = true
	frame[0][2] = true
	frame[1][cpu.DISPLAY_WIDTH-1] = true

	buf := &bytes.Buffer{}
	err := Render(buf, frame)
	assert.NoError(err)

	text := buf.String()
	assert.True(strings.HasPrefix(text, ansiHome))

	rows := strings.Split(strings.TrimPrefix(text, ansiHome), "\r\n")
	assert.Equal(cpu.DISPLAY_HEIGHT+1, len(rows))
	assert.Equal("  "+ansiReverse+"    "+ansiNormal+strings.Repeat("  ", cpu.DISPLAY_WIDTH-3), rows[0])
	assert.Equal(strings.Repeat("  ", cpu.DISPLAY_WIDTH-1)+ansiReverse+"  "+ansiNormal, rows[1])
	assert.Equal(strings.Repeat("  ", cpu.DISPLAY_WIDTH), rows[2])
	assert.Equal("", rows[cpu.DISPLAY_HEIGHT])
}

func TestPress(t *testing.T) {
	assert := assert.New(t)

	d := &Driver{}
	assert.False(d.Press([]byte("wq")))
	keys := d.Keys()
	assert.True(keys[0x5])
	assert.True(keys[0x4])

	// Pressing again releases.
	assert.False(d.Press([]byte("wp")))
	keys = d.Keys()
	assert.False(keys[0x5])
	assert.True(keys[0x4])

	assert.True(d.Press([]byte("x ")))
	keys = d.Keys()
	assert.True(keys[0x0])
}

func TestDriver(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	d := &Driver{
		Input:  strings.NewReader("zc"),
		Output: out,
	}
	emu := emulator.NewEmulator(d)

	err := d.OnInit(emu)
	assert.NoError(err)
	assert.Equal(ansiClear+ansiHide, out.String())

	quit := d.OnUpdate(emu)
	assert.False(quit)
	assert.True(emu.Cpu.Keypad.Pressed(0xa))
	assert.True(emu.Cpu.Keypad.Pressed(0xb))

	// No more input keeps the latch.
	quit = d.OnUpdate(emu)
	assert.False(quit)
	assert.True(emu.Cpu.Keypad.Pressed(0xa))

	out.Reset()
	d.Beep()
	assert.Equal(ansiBell, out.String())

	out.Reset()
	d.UpdateScreen(cpu.Frame{})
	assert.True(strings.HasPrefix(out.String(), ansiHome))

	out.Reset()
	d.Fault(cpu.ErrUnknownOpcode)
	assert.Equal(fmt.Sprintf(ansiLine, FAULT_LINE)+cpu.ErrUnknownOpcode.Error()+"\r\n", out.String())

	out.Reset()
	assert.NoError(d.Close())
	assert.Equal(ansiShow, out.String())
}

func TestRegistered(t *testing.T) {
	assert := assert.New(t)

	drv, err := emulator.Lookup("tty")
	assert.NoError(err)
	assert.IsType(&Driver{}, drv)
}
