// Package termloop implements a display driver on top of the termloop game
// engine.
//
// The machine display is drawn with two terminal cells per pixel, with the
// registers and timers shown below it. Keys are read from the KEY_LAYOUT of
// the emulator package, the arrow keys, Enter and Tab. The terminal only
// reports key presses, so keys are released 100ms after their last press.
// Space ends the game.
package termloop

import (
	"fmt"
	"log"
	"sync"
	"time"

	tl "github.com/JoelOtter/termloop"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
)

const (
	KEY_HOLD = 100 * time.Millisecond // Time a key stays pressed.
	FPS      = 60                     // Screen refresh rate.
)

// Special keys, in addition to the keyboard layout.
var keyMap = map[tl.Key]uint8{
	tl.KeyTab:        0x0,
	tl.KeyArrowUp:    0x8,
	tl.KeyArrowDown:  0x2,
	tl.KeyArrowLeft:  0x4,
	tl.KeyArrowRight: 0x6,
	tl.KeyEnter:      0x5,
}

// Driver is a termloop display driver.
type Driver struct {
	game *tl.Game
	done chan struct{}

	lock    sync.Mutex
	frame   cpu.Frame
	pressed [cpu.KEY_COUNT]time.Time // Time of the last press, zero if released.
	status  string
	fault   string // Last skipped runtime error.
	beep    time.Time
}

// board is the termloop entity that draws the machine and handles input.
type board struct {
	d *Driver
}

func (b *board) Draw(s *tl.Screen) {
	b.d.draw(s)
}

func (b *board) Tick(ev tl.Event) {
	b.d.tick(ev)
}

// keyOf maps a terminal event to a hex key.
func keyOf(ev tl.Event) (key uint8, ok bool) {
	if ev.Type != tl.EventKey {
		return
	}

	if ev.Ch != 0 {
		return emulator.KeyOf(ev.Ch)
	}

	key, ok = keyMap[ev.Key]
	return
}

func (d *Driver) tick(ev tl.Event) {
	key, ok := keyOf(ev)
	if !ok {
		return
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	d.pressed[key] = time.Now()
}

// printAt renders text, one cell per rune.
func printAt(s *tl.Screen, x, y int, text string) {
	left := x
	for _, ch := range text {
		if ch == '\n' {
			x = left
			y++
			continue
		}
		s.RenderCell(x, y, &tl.Cell{Fg: tl.ColorDefault, Bg: tl.ColorDefault, Ch: ch})
		x++
	}
}

func (d *Driver) draw(s *tl.Screen) {
	d.lock.Lock()
	defer d.lock.Unlock()

	lit := &tl.Cell{Bg: tl.ColorWhite, Ch: ' '}
	unlit := &tl.Cell{Bg: tl.ColorBlack, Ch: ' '}
	for y, row := range d.frame {
		for x, on := range row {
			cell := unlit
			if on {
				cell = lit
			}
			s.RenderCell(x*2, y, cell)
			s.RenderCell(x*2+1, y, cell)
		}
	}

	printAt(s, 0, cpu.DISPLAY_HEIGHT+1, d.status)
	printAt(s, 0, cpu.DISPLAY_HEIGHT+3, d.fault)
	if time.Since(d.beep) < KEY_HOLD {
		printAt(s, 0, cpu.DISPLAY_HEIGHT+4, "BEEP")
	}
}

func (d *Driver) OnInit(emu *emulator.Emulator) (err error) {
	d.game = tl.NewGame()
	d.game.SetEndKey(tl.KeySpace)
	d.game.Screen().SetFps(FPS)
	d.game.Screen().AddEntity(&board{d: d})

	d.done = make(chan struct{})
	go func() {
		d.game.Start()
		close(d.done)
	}()

	if emu.Verbose {
		log.Printf("termloop: started")
	}

	return
}

func (d *Driver) OnUpdate(emu *emulator.Emulator) (quit bool) {
	select {
	case <-d.done:
		quit = true
		return
	default:
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	var keys [cpu.KEY_COUNT]bool
	for key, when := range d.pressed {
		if when.IsZero() {
			continue
		}
		if time.Since(when) > KEY_HOLD {
			d.pressed[key] = time.Time{}
			continue
		}
		keys[key] = true
	}
	emu.Cpu.SetKeys(keys)

	c := emu.Cpu
	d.status = fmt.Sprintf("pc: %03X i: %03X dt: %02X st: %02X sp: %d\nv: % 02X",
		c.Pc, c.I, c.Timer.Delay, c.Timer.Sound, c.Stack.Depth(), c.Register)

	return
}

func (d *Driver) UpdateScreen(frame cpu.Frame) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.frame = frame
}

func (d *Driver) Beep() {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.beep = time.Now()
}

// Fault shows the error below the registers.
func (d *Driver) Fault(err error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.fault = err.Error()
}

// Close waits for the game to end, so that the final display stays visible.
func (d *Driver) Close() (err error) {
	if d.done == nil {
		return
	}

	d.lock.Lock()
	d.status += "  [halted: press space]"
	d.lock.Unlock()

	<-d.done
	return
}

func init() {
	err := emulator.Register("termloop", &Driver{})
	if err != nil {
		log.Fatal(err)
	}
}
