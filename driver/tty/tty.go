//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package tty

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
)

const (
	ansiHome    = "\x1b[H"
	ansiClear   = "\x1b[2J"
	ansiReverse = "\x1b[7m"
	ansiNormal  = "\x1b[0m"
	ansiHide    = "\x1b[?25l"
	ansiShow    = "\x1b[?25h"
	ansiBell    = "\a"
	ansiLine    = "\x1b[%d;1H\x1b[K" // Move to the start of a line, and clear it.
)

// Line of the fault message, below the display.
const FAULT_LINE = cpu.DISPLAY_HEIGHT + 2

// Driver is an ANSI terminal display driver.
type Driver struct {
	Input  io.Reader // Defaults to os.Stdin.
	Output io.Writer // Defaults to os.Stdout.

	keys    [cpu.KEY_COUNT]bool
	raw     bool
	restore unix.Termios
	buffer  []byte
}

// enterRaw puts the input terminal into non-blocking raw mode.
func (d *Driver) enterRaw(fd int) (err error) {
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return
	}

	d.restore = *termios
	termstate := *termios

	termstate.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR | unix.ICRNL | unix.IXON
	termstate.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	termstate.Cflag &^= unix.CSIZE | unix.PARENB
	termstate.Cflag |= unix.CS8

	termstate.Cc[unix.VMIN] = 0
	termstate.Cc[unix.VTIME] = 0

	err = unix.IoctlSetTermios(fd, ioctlSetTermios, &termstate)
	if err != nil {
		return
	}

	d.raw = true
	return
}

func (d *Driver) exitRaw(fd int) (err error) {
	if !d.raw {
		return
	}

	err = unix.IoctlSetTermios(fd, ioctlSetTermios, &d.restore)
	d.raw = false
	return
}

func (d *Driver) OnInit(emu *emulator.Emulator) (err error) {
	if d.Input == nil {
		d.Input = os.Stdin
	}
	if d.Output == nil {
		d.Output = os.Stdout
	}

	if file, ok := d.Input.(*os.File); ok {
		err = d.enterRaw(int(file.Fd()))
		if err != nil {
			return
		}
	}

	clear(d.keys[:])
	d.buffer = make([]byte, 64)

	_, err = io.WriteString(d.Output, ansiClear+ansiHide)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("tty: raw mode %v", d.raw)
	}

	return
}

// Press applies the keyboard input to the key latch.
// Returns true if the input asks to quit.
func (d *Driver) Press(input []byte) (quit bool) {
	for _, ch := range string(input) {
		if ch == ' ' {
			quit = true
			return
		}
		key, ok := emulator.KeyOf(ch)
		if ok {
			d.keys[key] = !d.keys[key]
		}
	}

	return
}

// Keys returns the current key latch.
func (d *Driver) Keys() [cpu.KEY_COUNT]bool {
	return d.keys
}

func (d *Driver) OnUpdate(emu *emulator.Emulator) (quit bool) {
	if d.buffer == nil {
		d.buffer = make([]byte, 64)
	}

	n, err := d.Input.Read(d.buffer)
	if err != nil && !errors.Is(err, io.EOF) {
		log.Printf("tty: %v", err)
		quit = true
		return
	}

	quit = d.Press(d.buffer[:n])
	emu.Cpu.SetKeys(d.keys)

	return
}

// Render writes the frame to w, with two reverse video cells per lit pixel.
func Render(w io.Writer, frame cpu.Frame) (err error) {
	var sb strings.Builder
	sb.WriteString(ansiHome)
	for _, row := range frame {
		lit := false
		for _, on := range row {
			if on != lit {
				if on {
					sb.WriteString(ansiReverse)
				} else {
					sb.WriteString(ansiNormal)
				}
				lit = on
			}
			sb.WriteString("  ")
		}
		if lit {
			sb.WriteString(ansiNormal)
		}
		sb.WriteString("\r\n")
	}

	_, err = io.WriteString(w, sb.String())
	return
}

func (d *Driver) UpdateScreen(frame cpu.Frame) {
	err := Render(d.Output, frame)
	if err != nil {
		log.Printf("tty: %v", err)
	}
}

func (d *Driver) Beep() {
	_, _ = io.WriteString(d.Output, ansiBell)
}

// Fault shows the error below the display.
func (d *Driver) Fault(err error) {
	_, werr := fmt.Fprintf(d.Output, ansiLine+"%v\r\n", FAULT_LINE, err)
	if werr != nil {
		log.Printf("tty: %v", werr)
	}
}

func (d *Driver) Close() (err error) {
	if d.Output != nil {
		_, err = io.WriteString(d.Output, ansiShow)
	}

	if file, ok := d.Input.(*os.File); ok {
		rerr := d.exitRaw(int(file.Fd()))
		if err == nil {
			err = rerr
		}
	}

	return
}

func init() {
	err := emulator.Register("tty", &Driver{})
	if err != nil {
		log.Fatal(err)
	}
}
