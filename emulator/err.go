package emulator

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	ErrDriverExists  = errors.New(f("driver already registered"))
	ErrDriverMissing = errors.New(f("driver not registered"))
	ErrQuit          = errors.New(f("quit requested"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Pc     uint16 // Address of the faulting instruction.
	LineNo int    // Source line, if a program listing is known.
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo > 0 {
		return f("0x%03x (line %d) %v", err.Pc, err.LineNo, err.Err)
	}
	return f("0x%03x %v", err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
