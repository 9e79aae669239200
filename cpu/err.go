package cpu

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	// Machine errors
	ErrRomTooLarge    = errors.New(f("rom too large"))
	ErrStackOverflow  = errors.New(f("stack overflow"))
	ErrStackUnderflow = errors.New(f("stack underflow"))
	ErrUnknownOpcode  = errors.New(f("unknown opcode"))
	ErrOutOfBounds    = errors.New(f("out of bounds access"))

	// Assembler errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrOpcodeInvalid   = errors.New(f("opcode invalid"))
	ErrOperandCount    = errors.New(f("wrong number of operands"))
	ErrRegisterInvalid = errors.New(f("register invalid"))
	ErrValueRange      = errors.New(f("value out of range"))
	ErrProgramTooLarge = errors.New(f("program too large"))
)

// ErrRomSize is returned by Load when a program does not fit in memory.
type ErrRomSize struct {
	Size int // Size of the rejected program.
	Free int // Bytes available from PROGRAM_START.
}

func (err ErrRomSize) Error() string {
	return f("rom too large (size %d, free %d)", err.Size, err.Free)
}

func (err ErrRomSize) Is(target error) bool {
	return target == ErrRomTooLarge
}

// ErrAccess is returned when an instruction touches memory outside of the
// address space.
type ErrAccess struct {
	Addr int // First address accessed.
	Len  int // Number of bytes accessed.
}

func (err ErrAccess) Error() string {
	return f("out of bounds access 0x%04x+%d", err.Addr, err.Len)
}

func (err ErrAccess) Is(target error) bool {
	return target == ErrOutOfBounds
}

// ErrOpcode carries the instruction word that failed to decode or execute.
type ErrOpcode uint16

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%04x", uint16(eo))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
