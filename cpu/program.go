package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and
// generated bytes.
type Opcode struct {
	LineNo int
	Addr   int
	Words  []string
	Data   []byte
	Code   bool   // Data is an instruction, not db/dw data.
	Line   string // Source text, without the comment.
}

// Program is the output of the assembler.
type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the source line that generated the byte at addr.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Addr && int(addr) < op.Addr+len(op.Data) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - op.Addr,
			}
			break
		}
	}

	return
}

// Binary returns the program image, to be loaded at PROGRAM_START.
func (prog *Program) Binary() (bin []byte) {
	for _, op := range prog.Opcodes {
		offset := op.Addr - PROGRAM_START
		if need := offset + len(op.Data); need > len(bin) {
			bin = append(bin, make([]byte, need-len(bin))...)
		}
		copy(bin[offset:], op.Data)
	}

	return
}

// Codes iterates over the decodable instructions of the program.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(addr uint16, code Code) bool) {
		for _, op := range prog.Opcodes {
			if !op.Code {
				continue
			}
			code, err := Decode(uint16(op.Data[0])<<8 | uint16(op.Data[1]))
			if err != nil {
				continue
			}
			if !yield(uint16(op.Addr), code) {
				return
			}
		}
	}
}
