package cpu

const (
	MEMORY_SIZE   = 0x1000 // Addressable bytes.
	FONT_BASE     = 0x050  // First byte of the hex font.
	FONT_HEIGHT   = 5      // Bytes per font glyph.
	PROGRAM_START = 0x200  // Load and entry address of programs.
	ADDRESS_MASK  = 0x0fff // Mask of the 12-bit address register.
)

// Font is the 4x5 hex digit glyph set, 0 through F.
var Font = [16 * FONT_HEIGHT]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the flat CHIP-8 address space.
type Memory [MEMORY_SIZE]byte

// Reset zeroes memory and installs the font.
func (mem *Memory) Reset() {
	clear(mem[:])
	copy(mem[FONT_BASE:], Font[:])
}

// Load copies a program to PROGRAM_START.
// Memory is left untouched if the program does not fit.
func (mem *Memory) Load(program []byte) (err error) {
	free := MEMORY_SIZE - PROGRAM_START
	if len(program) > free {
		err = ErrRomSize{Size: len(program), Free: free}
		return
	}

	copy(mem[PROGRAM_START:], program)
	return
}

// Slice returns count bytes starting at addr, or an ErrAccess if any of them
// fall outside of the address space.
func (mem *Memory) Slice(addr uint16, count int) (data []byte, err error) {
	if int(addr)+count > MEMORY_SIZE {
		err = ErrAccess{Addr: int(addr), Len: count}
		return
	}

	data = mem[int(addr) : int(addr)+count]
	return
}

// Word fetches the big-endian instruction word at addr.
func (mem *Memory) Word(addr uint16) (word uint16, err error) {
	data, err := mem.Slice(addr, 2)
	if err != nil {
		return
	}

	word = uint16(data[0])<<8 | uint16(data[1])
	return
}

// Glyph returns the address of the font glyph for a hex digit.
func Glyph(digit uint8) uint16 {
	return FONT_BASE + uint16(digit&0xf)*FONT_HEIGHT
}
