// Package cpu implements the CHIP-8 virtual machine and an assembler for it.
//
// The machine consists of 4K of byte addressable memory holding the font
// glyphs and the loaded program, sixteen 8-bit registers (v0-vf, where vf
// doubles as the carry/borrow/collision flag), a 12-bit address register (I),
// a program counter, a 16 entry call stack, delay and sound timers, a 64x32
// monochrome display and a 16 key hexadecimal keypad.
//
// Each call to Step fetches, decodes and executes exactly one instruction,
// then counts both timers down by one. The keypad is only ever written by the
// caller between steps; the machine never reads an input device itself.
//
// The assembler accepts the same mnemonics the disassembler (Code.String)
// prints. Source may also use labels, .equ and .macro definitions, db and
// dw data, and $(...) compile-time expressions.
package cpu
