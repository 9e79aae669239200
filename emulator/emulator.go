// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"time"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/internal"
)

const (
	CYCLE_RATE = 60 // Default cycles per second.
)

var _emulator_defines = map[string]string{
	"CYCLE_RATE": fmt.Sprintf("%v", CYCLE_RATE),
	"KEY_COUNT":  fmt.Sprintf("%v", cpu.KEY_COUNT),
}

// Emulator paces a CPU and connects it to a Driver.
type Emulator struct {
	Verbose     bool         // If set, enables verbose logging.
	Cpu         *cpu.Cpu     // Reference to the CPU simulation.
	Program     *cpu.Program // Listing of the running program, if assembled.
	Driver      Driver       // Display, input and sound.
	Rate        int          // Cycles per second.
	HaltOnError bool         // If set, Run stops at the first runtime error.
}

// NewEmulator creates a new emulator. A nil driver is replaced by a
// NullDriver.
func NewEmulator(driver Driver) (emu *Emulator) {
	if driver == nil {
		driver = &NullDriver{}
	}

	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
		Driver:  driver,
		Rate:    CYCLE_RATE,
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Load a raw program image. Any previous program listing is dropped.
func (emu *Emulator) Load(program []byte) (err error) {
	err = emu.Cpu.Load(program)
	if err != nil {
		return
	}

	emu.Program = &cpu.Program{}
	return
}

// LoadProgram loads an assembled program, and keeps its listing for
// runtime error reports.
func (emu *Emulator) LoadProgram(prog *cpu.Program) (err error) {
	err = emu.Cpu.Load(prog.Binary())
	if err != nil {
		return
	}

	emu.Program = prog
	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Pc returns the current program counter.
func (emu *Emulator) Pc() uint16 {
	return emu.Cpu.Pc
}

// Code returns the current instruction code.
func (emu *Emulator) Code() (code cpu.Code, err error) {
	return emu.Cpu.FetchCode()
}

// LineNo returns the current line number for the executing opcode, or 0 if
// there is no program listing.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single cycle of the emulator:
// - The driver polls its input.
// - The cpu executes one instruction and counts its timers down.
// - The driver is told about display changes and the tone.
//
// Returns ErrQuit if the driver asked to stop.
func (emu *Emulator) Tick() (outcome cpu.Outcome, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	if emu.Driver.OnUpdate(emu) {
		err = ErrQuit
		return
	}

	pc := emu.Cpu.Pc
	lineno := emu.LineNo()
	outcome, err = emu.Cpu.Step()
	if err != nil {
		err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		return
	}

	if outcome.Has(cpu.OUTCOME_DRAW) {
		emu.Driver.UpdateScreen(emu.Cpu.Snapshot())
	}

	if outcome.Has(cpu.OUTCOME_SOUND) {
		emu.Driver.Beep()
	}

	return
}

// Skip moves the program counter past a faulting instruction.
func (emu *Emulator) Skip() (err error) {
	next := emu.Cpu.Pc + 2
	if next > cpu.ADDRESS_MASK {
		err = cpu.ErrAccess{Addr: int(next), Len: 2}
		return
	}

	emu.Cpu.Pc = next
	return
}

// Run the emulator at Rate cycles per second, until the context is done,
// the driver quits, or a runtime error when HaltOnError is set.
//
// Without HaltOnError, a faulting instruction is reported to the driver's
// Fault and skipped.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	err = emu.Driver.OnInit(emu)
	if err != nil {
		return
	}

	defer func() {
		cerr := emu.Driver.Close()
		if err == nil {
			err = cerr
		}
	}()

	rate := emu.Rate
	if rate <= 0 {
		rate = CYCLE_RATE
	}

	emu.Driver.UpdateScreen(emu.Cpu.Snapshot())

	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		case <-ticker.C:
		}

		_, err = emu.Tick()
		if errors.Is(err, ErrQuit) {
			err = nil
			return
		}

		if err != nil {
			if emu.HaltOnError {
				return
			}

			emu.Driver.Fault(err)
			err = emu.Skip()
			if err != nil {
				return
			}
		}
	}
}
