package emulator

import (
	"errors"
	"fmt"
	"log"
	"maps"
	"slices"
	"sync"

	"github.com/ezrec/chip8/cpu"
)

// Driver is the platform side of the emulator: it polls input, shows the
// display and plays the tone.
// Drivers register themselves with Register in their package init().
type Driver interface {
	// Called once before the first cycle.
	OnInit(emu *Emulator) error
	// Called before every cycle. This is the only place a driver may
	// change the key latch. Returns true to stop the emulator.
	OnUpdate(emu *Emulator) (quit bool)
	// Called after a cycle that modified the display.
	UpdateScreen(frame cpu.Frame)
	// Called when the sound timer runs out.
	Beep()
	// Called with a runtime error that was skipped.
	Fault(err error)
	// Called once when the emulator stops.
	Close() error
}

var (
	drivers      = map[string]Driver{}
	drivers_lock sync.Mutex
)

// Register a driver by name.
func Register(name string, drv Driver) (err error) {
	drivers_lock.Lock()
	defer drivers_lock.Unlock()

	if _, ok := drivers[name]; ok {
		err = fmt.Errorf("%w: %v", ErrDriverExists, name)
		return
	}

	drivers[name] = drv
	return
}

// Lookup a registered driver by name.
func Lookup(name string) (drv Driver, err error) {
	drivers_lock.Lock()
	defer drivers_lock.Unlock()

	drv, ok := drivers[name]
	if !ok {
		err = fmt.Errorf("%w: %v", ErrDriverMissing, name)
		return
	}

	return
}

// Drivers returns the sorted names of all registered drivers.
func Drivers() []string {
	drivers_lock.Lock()
	defer drivers_lock.Unlock()

	return slices.Sorted(maps.Keys(drivers))
}

// NullDriver ignores all calls but Fault. It never quits on its own.
type NullDriver struct{}

func (d *NullDriver) OnInit(emu *Emulator) error {
	return nil
}

func (d *NullDriver) OnUpdate(emu *Emulator) (quit bool) {
	return
}

func (d *NullDriver) UpdateScreen(frame cpu.Frame) {}

func (d *NullDriver) Beep() {}

// Fault logs the error, as there is no display to show it on.
func (d *NullDriver) Fault(err error) {
	log.Printf("%v", err)
}

func (d *NullDriver) Close() error {
	return nil
}

func init() {
	err := Register("null", &NullDriver{})
	if err != nil && !errors.Is(err, ErrDriverExists) {
		log.Fatal(err)
	}
}
