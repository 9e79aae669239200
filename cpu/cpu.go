package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"math/rand/v2"
	"time"
)

var _cpu_defines = map[string]string{
	"FONT_BASE":      fmt.Sprintf("0x%03x", FONT_BASE),
	"FONT_HEIGHT":    fmt.Sprintf("%d", FONT_HEIGHT),
	"PROGRAM_START":  fmt.Sprintf("0x%03x", PROGRAM_START),
	"DISPLAY_WIDTH":  fmt.Sprintf("%d", DISPLAY_WIDTH),
	"DISPLAY_HEIGHT": fmt.Sprintf("%d", DISPLAY_HEIGHT),
	"STACK_LIMIT":    fmt.Sprintf("%d", STACK_LIMIT),
}

// Flag register index.
const VF = 0xf

// Outcome reports the side effects of a single Step.
type Outcome uint8

const (
	OUTCOME_SOUND = Outcome(1 << 0) // Sound timer reached zero.
	OUTCOME_AWAIT = Outcome(1 << 1) // Waiting for a key press.
	OUTCOME_DRAW  = Outcome(1 << 2) // Display was modified.
)

// Has returns true if all of the outcomes in mask are set.
func (oc Outcome) Has(mask Outcome) bool {
	return oc&mask == mask
}

func (oc Outcome) String() (text string) {
	for _, item := range []struct {
		mask Outcome
		name string
	}{
		{OUTCOME_SOUND, "sound"},
		{OUTCOME_AWAIT, "await"},
		{OUTCOME_DRAW, "draw"},
	} {
		if oc.Has(item.mask) {
			if text != "" {
				text += "|"
			}
			text += item.name
		}
	}
	if text == "" {
		text = "ok"
	}
	return
}

// Cpu is the complete state of a CHIP-8 machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory   Memory    // Program and font memory.
	Register [16]uint8 // v0-vf. vf is the flag register.
	I        uint16    // Address register.
	Pc       uint16    // Program counter.
	Stack    Stack     // Return addresses.
	Timer    Timer     // Delay and sound timers.
	Display  Display   // Framebuffer.
	Keypad   Keypad    // Input latch, written by the caller between steps.
	Waiting  bool      // Set while an 'ld vX, k' waits for a key.

	Ticks int // Steps executed since Reset.

	rand *rand.Rand
}

// NewCpu creates a new machine, with the font installed and the program
// counter at PROGRAM_START.
func NewCpu() (cpu *Cpu) {
	seed := uint64(time.Now().UnixNano())
	cpu = &Cpu{
		rand: rand.New(rand.NewPCG(seed, seed>>32)),
	}
	cpu.Reset()

	return
}

// Seed makes the 'rnd' instruction sequence repeatable.
func (cpu *Cpu) Seed(seed uint64) {
	cpu.rand = rand.New(rand.NewPCG(seed, 0))
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the machine state.
// - Clears memory and installs the font.
// - Clears the registers, stack, timers, display and keypad.
// - Sets the program counter to PROGRAM_START.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Memory.Reset()
	clear(cpu.Register[:])
	cpu.I = 0
	cpu.Pc = PROGRAM_START
	cpu.Stack.Reset()
	cpu.Timer.Reset()
	cpu.Display.Clear()
	cpu.Keypad.Reset()
	cpu.Waiting = false
	cpu.Ticks = 0
}

// Load resets the machine and copies the program to PROGRAM_START.
// The machine is not modified if the program does not fit.
func (cpu *Cpu) Load(program []byte) (err error) {
	if len(program) > MEMORY_SIZE-PROGRAM_START {
		err = ErrRomSize{Size: len(program), Free: MEMORY_SIZE - PROGRAM_START}
		return
	}

	cpu.Reset()
	err = cpu.Memory.Load(program)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes", len(program))
	}

	return
}

// Snapshot returns a copy of the display.
func (cpu *Cpu) Snapshot() Frame {
	return cpu.Display.Snapshot()
}

// SetKey latches the state of a single key.
func (cpu *Cpu) SetKey(key uint8, pressed bool) {
	cpu.Keypad[key&0xf] = pressed
}

// SetKeys latches the state of all keys.
func (cpu *Cpu) SetKeys(state [KEY_COUNT]bool) {
	cpu.Keypad = state
}

// DelayTimer returns the delay timer value.
func (cpu *Cpu) DelayTimer() uint8 {
	return cpu.Timer.Delay
}

// SoundTimer returns the sound timer value.
func (cpu *Cpu) SoundTimer() uint8 {
	return cpu.Timer.Sound
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("   pc: %03X\n", cpu.Pc)
	text += fmt.Sprintf("    i: %03X\n", cpu.I)
	for n, val := range cpu.Register {
		text += fmt.Sprintf("   v%X: %02X\n", n, val)
	}
	if addr, ok := cpu.Stack.Peek(); ok {
		text += fmt.Sprintf("stack: %03X (%d)\n", addr, cpu.Stack.Depth())
	} else {
		text += "stack: ---\n"
	}
	text += fmt.Sprintf("   dt: %02X\n", cpu.Timer.Delay)
	text += fmt.Sprintf("   st: %02X\n", cpu.Timer.Sound)
	text += fmt.Sprintf(" keys: %v\n", cpu.Keypad)

	return
}

// FetchCode fetches and decodes the instruction at the program counter.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	word, err := cpu.Memory.Word(cpu.Pc)
	if err != nil {
		return
	}

	code, err = Decode(word)
	return
}

// Step executes a single instruction cycle, then counts the timers down.
//
// On error, the program counter and timers are left unchanged and the error
// is returned to the caller, who decides whether to halt.
func (cpu *Cpu) Step() (outcome Outcome, err error) {
	code, err := cpu.FetchCode()
	if err != nil {
		return
	}

	outcome, err = cpu.Execute(code)
	if err != nil {
		return
	}

	if cpu.Timer.Tick() {
		outcome |= OUTCOME_SOUND
	}

	cpu.Ticks++

	return
}

// Execute executes a single decoded instruction at the program counter.
func (cpu *Cpu) Execute(code Code) (outcome Outcome, err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code.Word), err)
		}
	}()

	if cpu.Verbose {
		log.Printf("%03x: %v", cpu.Pc, code)
	}

	next_pc := cpu.Pc + 2
	skip := func(cond bool) {
		if cond {
			next_pc += 2
		}
	}

	v := &cpu.Register
	x, y := code.X(), code.Y()

	// Instructions that fall through need a following word.
	switch code.Op {
	case OP_JP, OP_CALL, OP_JP_V0, OP_RET, OP_LD_VX_K, opUnknown:
	default:
		if next_pc > ADDRESS_MASK {
			err = ErrAccess{Addr: int(next_pc), Len: 2}
			return
		}
	}

	switch code.Op {
	case OP_CLS:
		cpu.Display.Clear()
		outcome |= OUTCOME_DRAW
	case OP_RET:
		addr, ok := cpu.Stack.Peek()
		if !ok {
			err = ErrStackUnderflow
			return
		}
		next_pc = addr + 2
		if next_pc > ADDRESS_MASK {
			err = ErrAccess{Addr: int(next_pc), Len: 2}
			return
		}
		_, err = cpu.Stack.Pop()
		if err != nil {
			return
		}
	case OP_JP:
		next_pc = code.NNN()
	case OP_CALL:
		err = cpu.Stack.Push(cpu.Pc)
		if err != nil {
			return
		}
		next_pc = code.NNN()
	case OP_SE_IMM:
		skip(v[x] == code.NN())
	case OP_SNE_IMM:
		skip(v[x] != code.NN())
	case OP_SE_REG:
		skip(v[x] == v[y])
	case OP_LD_IMM:
		v[x] = code.NN()
	case OP_ADD_IMM:
		v[x] += code.NN()
	case OP_LD_REG:
		v[x] = v[y]
	case OP_OR:
		v[x] |= v[y]
	case OP_AND:
		v[x] &= v[y]
	case OP_XOR:
		v[x] ^= v[y]
	case OP_ADD_REG:
		sum := uint16(v[x]) + uint16(v[y])
		v[VF] = flag(sum > 0xff)
		v[x] = uint8(sum)
	case OP_SUB:
		diff := v[x] - v[y]
		v[VF] = flag(v[x] >= v[y])
		v[x] = diff
	case OP_SHR:
		shifted := v[x] >> 1
		v[VF] = v[x] & 0x01
		v[x] = shifted
	case OP_SUBN:
		diff := v[y] - v[x]
		v[VF] = flag(v[y] >= v[x])
		v[x] = diff
	case OP_SHL:
		shifted := v[x] << 1
		v[VF] = v[x] >> 7
		v[x] = shifted
	case OP_SNE_REG:
		skip(v[x] != v[y])
	case OP_LD_I:
		cpu.I = code.NNN()
	case OP_JP_V0:
		next_pc = code.NNN() + uint16(v[0])
	case OP_RND:
		v[x] = uint8(cpu.rand.Uint32()) & code.NN()
	case OP_DRW:
		var sprite []byte
		sprite, err = cpu.Memory.Slice(cpu.I, int(code.N()))
		if err != nil {
			return
		}
		collision := cpu.Display.Draw(v[x], v[y], sprite)
		v[VF] = flag(collision)
		outcome |= OUTCOME_DRAW
	case OP_SKP:
		skip(cpu.Keypad.Pressed(v[x]))
	case OP_SKNP:
		skip(!cpu.Keypad.Pressed(v[x]))
	case OP_LD_VX_DT:
		v[x] = cpu.Timer.Delay
	case OP_LD_VX_K:
		key, ok := cpu.Keypad.First()
		if !ok {
			if !cpu.Waiting && cpu.Verbose {
				log.Printf("cpu: waiting for key")
			}
			cpu.Waiting = true
			outcome |= OUTCOME_AWAIT
			next_pc = cpu.Pc
			break
		}
		if next_pc > ADDRESS_MASK {
			err = ErrAccess{Addr: int(next_pc), Len: 2}
			return
		}
		cpu.Waiting = false
		v[x] = key
	case OP_LD_DT:
		cpu.Timer.Delay = v[x]
	case OP_LD_ST:
		cpu.Timer.Sound = v[x]
	case OP_ADD_I:
		cpu.I = (cpu.I + uint16(v[x])) & ADDRESS_MASK
	case OP_LD_F:
		cpu.I = Glyph(v[x])
	case OP_LD_B:
		var bcd []byte
		bcd, err = cpu.Memory.Slice(cpu.I, 3)
		if err != nil {
			return
		}
		value := v[x]
		bcd[0] = value / 100
		bcd[1] = (value / 10) % 10
		bcd[2] = value % 10
	case OP_LD_MEM:
		var mem []byte
		mem, err = cpu.Memory.Slice(cpu.I, int(x)+1)
		if err != nil {
			return
		}
		copy(mem, v[:x+1])
	case OP_LD_REGS:
		var mem []byte
		mem, err = cpu.Memory.Slice(cpu.I, int(x)+1)
		if err != nil {
			return
		}
		copy(v[:x+1], mem)
	default:
		err = ErrUnknownOpcode
		return
	}

	// Skips and indexed jumps have no side effects to undo.
	if next_pc > ADDRESS_MASK {
		err = ErrAccess{Addr: int(next_pc), Len: 2}
		return
	}

	cpu.Pc = next_pc

	return
}

// flag converts a condition to a flag register value.
func flag(cond bool) uint8 {
	if cond {
		return 1
	}
	return 0
}
