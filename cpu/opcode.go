package cpu

import (
	"errors"
	"fmt"
	"strings"
)

// CodeOp is the decoded operation of an instruction word. There is one
// CodeOp for each opcode family and sub-opcode.
type CodeOp int

//go:generate go tool stringer -linecomment -type=CodeOp
const (
	OP_CLS      = CodeOp(0)  // cls
	OP_RET      = CodeOp(1)  // ret
	OP_JP       = CodeOp(2)  // jp
	OP_CALL     = CodeOp(3)  // call
	OP_SE_IMM   = CodeOp(4)  // se
	OP_SNE_IMM  = CodeOp(5)  // sne
	OP_SE_REG   = CodeOp(6)  // se
	OP_LD_IMM   = CodeOp(7)  // ld
	OP_ADD_IMM  = CodeOp(8)  // add
	OP_LD_REG   = CodeOp(9)  // ld
	OP_OR       = CodeOp(10) // or
	OP_AND      = CodeOp(11) // and
	OP_XOR      = CodeOp(12) // xor
	OP_ADD_REG  = CodeOp(13) // add
	OP_SUB      = CodeOp(14) // sub
	OP_SHR      = CodeOp(15) // shr
	OP_SUBN     = CodeOp(16) // subn
	OP_SHL      = CodeOp(17) // shl
	OP_SNE_REG  = CodeOp(18) // sne
	OP_LD_I     = CodeOp(19) // ld
	OP_JP_V0    = CodeOp(20) // jp
	OP_RND      = CodeOp(21) // rnd
	OP_DRW      = CodeOp(22) // drw
	OP_SKP      = CodeOp(23) // skp
	OP_SKNP     = CodeOp(24) // sknp
	OP_LD_VX_DT = CodeOp(25) // ld
	OP_LD_VX_K  = CodeOp(26) // ld
	OP_LD_DT    = CodeOp(27) // ld
	OP_LD_ST    = CodeOp(28) // ld
	OP_ADD_I    = CodeOp(29) // add
	OP_LD_F     = CodeOp(30) // ld
	OP_LD_B     = CodeOp(31) // ld
	OP_LD_MEM   = CodeOp(32) // ld
	OP_LD_REGS  = CodeOp(33) // ld
)

// opUnknown marks a Code whose word is not in the instruction set.
var opUnknown = CodeOp(-1)

// CodeArg is the kind of an instruction operand.
type CodeArg int

const (
	ARG_VX    = CodeArg(iota) // register, X nibble
	ARG_VY                    // register, Y nibble
	ARG_NNN                   // 12-bit address
	ARG_NN                    // 8-bit immediate
	ARG_N                     // 4-bit immediate
	ARG_V0                    // literal v0
	ARG_I                     // literal i
	ARG_DT                    // literal dt
	ARG_ST                    // literal st
	ARG_K                     // literal k
	ARG_F                     // literal f
	ARG_B                     // literal b
	ARG_I_MEM                 // literal [i]
)

// Literal returns the fixed operand text of literal operand kinds.
func (arg CodeArg) Literal() (text string, ok bool) {
	ok = true
	switch arg {
	case ARG_V0:
		text = "v0"
	case ARG_I:
		text = "i"
	case ARG_DT:
		text = "dt"
	case ARG_ST:
		text = "st"
	case ARG_K:
		text = "k"
	case ARG_F:
		text = "f"
	case ARG_B:
		text = "b"
	case ARG_I_MEM:
		text = "[i]"
	default:
		ok = false
	}
	return
}

// Limit is the largest value a numeric operand kind can encode.
func (arg CodeArg) Limit() uint16 {
	switch arg {
	case ARG_VX, ARG_VY, ARG_N:
		return 0xf
	case ARG_NN:
		return 0xff
	case ARG_NNN:
		return 0xfff
	}
	return 0
}

type codeForm struct {
	base uint16
	args []CodeArg
}

var codeForms = [...]codeForm{
	OP_CLS:      {0x00E0, nil},
	OP_RET:      {0x00EE, nil},
	OP_JP:       {0x1000, []CodeArg{ARG_NNN}},
	OP_CALL:     {0x2000, []CodeArg{ARG_NNN}},
	OP_SE_IMM:   {0x3000, []CodeArg{ARG_VX, ARG_NN}},
	OP_SNE_IMM:  {0x4000, []CodeArg{ARG_VX, ARG_NN}},
	OP_SE_REG:   {0x5000, []CodeArg{ARG_VX, ARG_VY}},
	OP_LD_IMM:   {0x6000, []CodeArg{ARG_VX, ARG_NN}},
	OP_ADD_IMM:  {0x7000, []CodeArg{ARG_VX, ARG_NN}},
	OP_LD_REG:   {0x8000, []CodeArg{ARG_VX, ARG_VY}},
	OP_OR:       {0x8001, []CodeArg{ARG_VX, ARG_VY}},
	OP_AND:      {0x8002, []CodeArg{ARG_VX, ARG_VY}},
	OP_XOR:      {0x8003, []CodeArg{ARG_VX, ARG_VY}},
	OP_ADD_REG:  {0x8004, []CodeArg{ARG_VX, ARG_VY}},
	OP_SUB:      {0x8005, []CodeArg{ARG_VX, ARG_VY}},
	OP_SHR:      {0x8006, []CodeArg{ARG_VX, ARG_VY}},
	OP_SUBN:     {0x8007, []CodeArg{ARG_VX, ARG_VY}},
	OP_SHL:      {0x800E, []CodeArg{ARG_VX, ARG_VY}},
	OP_SNE_REG:  {0x9000, []CodeArg{ARG_VX, ARG_VY}},
	OP_LD_I:     {0xA000, []CodeArg{ARG_I, ARG_NNN}},
	OP_JP_V0:    {0xB000, []CodeArg{ARG_V0, ARG_NNN}},
	OP_RND:      {0xC000, []CodeArg{ARG_VX, ARG_NN}},
	OP_DRW:      {0xD000, []CodeArg{ARG_VX, ARG_VY, ARG_N}},
	OP_SKP:      {0xE09E, []CodeArg{ARG_VX}},
	OP_SKNP:     {0xE0A1, []CodeArg{ARG_VX}},
	OP_LD_VX_DT: {0xF007, []CodeArg{ARG_VX, ARG_DT}},
	OP_LD_VX_K:  {0xF00A, []CodeArg{ARG_VX, ARG_K}},
	OP_LD_DT:    {0xF015, []CodeArg{ARG_DT, ARG_VX}},
	OP_LD_ST:    {0xF018, []CodeArg{ARG_ST, ARG_VX}},
	OP_ADD_I:    {0xF01E, []CodeArg{ARG_I, ARG_VX}},
	OP_LD_F:     {0xF029, []CodeArg{ARG_F, ARG_VX}},
	OP_LD_B:     {0xF033, []CodeArg{ARG_B, ARG_VX}},
	OP_LD_MEM:   {0xF055, []CodeArg{ARG_I_MEM, ARG_VX}},
	OP_LD_REGS:  {0xF065, []CodeArg{ARG_VX, ARG_I_MEM}},
}

// Args returns the operand kinds of the operation, in assembly order.
func (op CodeOp) Args() []CodeArg {
	if op < 0 || int(op) >= len(codeForms) {
		return nil
	}
	return codeForms[op].args
}

// Encode builds an instruction from the numeric operands of op, in assembly
// order. Literal operands take no value.
func (op CodeOp) Encode(values ...uint16) (code Code, err error) {
	if op < 0 || int(op) >= len(codeForms) {
		err = ErrOpcodeInvalid
		return
	}

	form := codeForms[op]
	word := form.base
	for _, arg := range form.args {
		if _, ok := arg.Literal(); ok {
			continue
		}
		if len(values) == 0 {
			err = ErrOperandCount
			return
		}
		value := values[0]
		values = values[1:]
		if value > arg.Limit() {
			err = fmt.Errorf("%w: 0x%x > 0x%x", ErrValueRange, value, arg.Limit())
			return
		}
		switch arg {
		case ARG_VX:
			word |= value << 8
		case ARG_VY:
			word |= value << 4
		default:
			word |= value
		}
	}

	if len(values) != 0 {
		err = ErrOperandCount
		return
	}

	code = Code{Op: op, Word: word}
	return
}

// MustEncode is Encode that panics on error, for fixed instruction tables.
func (op CodeOp) MustEncode(values ...uint16) Code {
	code, err := op.Encode(values...)
	if err != nil {
		panic(err)
	}
	return code
}

// Code is a single decoded instruction.
type Code struct {
	Op   CodeOp
	Word uint16
}

// Decode the instruction word. Words outside of the instruction set return
// an error that matches ErrUnknownOpcode.
func Decode(word uint16) (code Code, err error) {
	code.Word = word

	unknown := func() {
		err = errors.Join(ErrOpcode(word), ErrUnknownOpcode)
	}

	switch word & 0xF000 {
	case 0x0000:
		switch word {
		case 0x00E0:
			code.Op = OP_CLS
		case 0x00EE:
			code.Op = OP_RET
		default:
			unknown()
		}
	case 0x1000:
		code.Op = OP_JP
	case 0x2000:
		code.Op = OP_CALL
	case 0x3000:
		code.Op = OP_SE_IMM
	case 0x4000:
		code.Op = OP_SNE_IMM
	case 0x5000:
		if word&0x000F != 0 {
			unknown()
		}
		code.Op = OP_SE_REG
	case 0x6000:
		code.Op = OP_LD_IMM
	case 0x7000:
		code.Op = OP_ADD_IMM
	case 0x8000:
		switch word & 0x000F {
		case 0x0:
			code.Op = OP_LD_REG
		case 0x1:
			code.Op = OP_OR
		case 0x2:
			code.Op = OP_AND
		case 0x3:
			code.Op = OP_XOR
		case 0x4:
			code.Op = OP_ADD_REG
		case 0x5:
			code.Op = OP_SUB
		case 0x6:
			code.Op = OP_SHR
		case 0x7:
			code.Op = OP_SUBN
		case 0xE:
			code.Op = OP_SHL
		default:
			unknown()
		}
	case 0x9000:
		if word&0x000F != 0 {
			unknown()
		}
		code.Op = OP_SNE_REG
	case 0xA000:
		code.Op = OP_LD_I
	case 0xB000:
		code.Op = OP_JP_V0
	case 0xC000:
		code.Op = OP_RND
	case 0xD000:
		code.Op = OP_DRW
	case 0xE000:
		switch word & 0x00FF {
		case 0x9E:
			code.Op = OP_SKP
		case 0xA1:
			code.Op = OP_SKNP
		default:
			unknown()
		}
	case 0xF000:
		switch word & 0x00FF {
		case 0x07:
			code.Op = OP_LD_VX_DT
		case 0x0A:
			code.Op = OP_LD_VX_K
		case 0x15:
			code.Op = OP_LD_DT
		case 0x18:
			code.Op = OP_LD_ST
		case 0x1E:
			code.Op = OP_ADD_I
		case 0x29:
			code.Op = OP_LD_F
		case 0x33:
			code.Op = OP_LD_B
		case 0x55:
			code.Op = OP_LD_MEM
		case 0x65:
			code.Op = OP_LD_REGS
		default:
			unknown()
		}
	}

	if err != nil {
		code = Code{Op: opUnknown, Word: word}
	}

	return
}

// X is the register selected by bits 8-11.
func (code Code) X() uint8 { return uint8(code.Word>>8) & 0xf }

// Y is the register selected by bits 4-7.
func (code Code) Y() uint8 { return uint8(code.Word>>4) & 0xf }

// N is the low nibble immediate.
func (code Code) N() uint8 { return uint8(code.Word) & 0xf }

// NN is the low byte immediate.
func (code Code) NN() uint8 { return uint8(code.Word) }

// NNN is the 12-bit address.
func (code Code) NNN() uint16 { return code.Word & 0xfff }

// String returns the assembly language representation of this instruction.
func (code Code) String() string {
	if code.Op == opUnknown {
		return fmt.Sprintf("dw 0x%04x", code.Word)
	}

	args := code.Op.Args()
	words := make([]string, 0, len(args))
	for _, arg := range args {
		if text, ok := arg.Literal(); ok {
			words = append(words, text)
			continue
		}
		switch arg {
		case ARG_VX:
			words = append(words, fmt.Sprintf("v%x", code.X()))
		case ARG_VY:
			words = append(words, fmt.Sprintf("v%x", code.Y()))
		case ARG_NNN:
			words = append(words, fmt.Sprintf("0x%03x", code.NNN()))
		case ARG_NN:
			words = append(words, fmt.Sprintf("0x%02x", code.NN()))
		case ARG_N:
			words = append(words, fmt.Sprintf("%d", code.N()))
		}
	}

	if len(words) == 0 {
		return code.Op.String()
	}

	return code.Op.String() + " " + strings.Join(words, ", ")
}
