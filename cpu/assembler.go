// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = maps.Collect((&Cpu{}).Defines())

// reserved operand words, which can never be labels or equates.
var reserved = []string{
	"v0", "v1", "v2", "v3", "v4", "v5", "v6", "v7",
	"v8", "v9", "va", "vb", "vc", "vd", "ve", "vf",
	"i", "dt", "st", "k", "f", "b", "[i]",
}

// Assembler is a two pass macro assembler for CHIP-8.
// Pass one expands macros and assigns addresses to labels, pass two
// resolves operands and encodes instructions.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of jump labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	addr int // Address of the next opcode.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// isReserved returns true for register and operand keywords.
func isReserved(word string) bool {
	return slices.Contains(reserved, strings.ToLower(word))
}

// registerOf returns the index of a vX register word.
func registerOf(word string) (reg uint16, ok bool) {
	word = strings.ToLower(word)
	if len(word) != 2 || word[0] != 'v' {
		return
	}
	value, err := strconv.ParseUint(word[1:], 16, 8)
	if err != nil {
		return
	}
	return uint16(value), true
}

// resolve replaces an equate by its value, following chained equates.
func (asm *Assembler) resolve(word string) string {
	for range 8 {
		equate, ok := asm.Equate[word]
		if !ok {
			break
		}
		word = equate
	}
	return word
}

// valueOf returns the numeric value of an operand word.
func (asm *Assembler) valueOf(word string) (value uint16, err error) {
	word = asm.resolve(word)

	if strings.HasPrefix(word, "$(") && strings.HasSuffix(word, ")") {
		return asm.parenEval(word[2 : len(word)-1])
	}

	if addr, ok := asm.Label[word]; ok {
		value = uint16(addr)
		return
	}

	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil {
		if identifier.MatchString(word) {
			err = ErrLabelMissing(word)
		} else {
			err = ErrParseNumber(word)
		}
		return
	}

	if v64 < 0 || v64 > 0xffff {
		err = fmt.Errorf("%w: %v", ErrValueRange, word)
		return
	}

	value = uint16(v64)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint16, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	for key := range asm.Equate {
		var value16 uint16
		str := asm.resolve(key)
		if strings.HasPrefix(str, "$(") {
			// Nested expressions are not predeclared.
			continue
		}
		value16, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(int(value16))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < 0 || st_int64 > 0xffff {
		err = ErrParseExpression(expr)
		return
	}
	value = uint16(st_int64)
	return
}

// splitOperands splits an operand list on commas outside of parentheses.
func splitOperands(text string) (operands []string) {
	depth := 0
	start := 0
	for n, ch := range text {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				operands = append(operands, strings.TrimSpace(text[start:n]))
				start = n + 1
			}
		}
	}
	if last := strings.TrimSpace(text[start:]); len(last) > 0 || len(operands) > 0 {
		operands = append(operands, last)
	}
	return
}

// splitLine splits a line into its labels, mnemonic, and operands.
func splitLine(line string) (labels []string, words []string) {
	line = strings.TrimSpace(strings.ReplaceAll(line, "\t", " "))
	for {
		head, rest, _ := strings.Cut(line, " ")
		if !strings.HasSuffix(head, ":") {
			break
		}
		labels = append(labels, head[:len(head)-1])
		line = strings.TrimSpace(rest)
	}

	if len(line) == 0 {
		return
	}

	mnemonic, rest, _ := strings.Cut(line, " ")
	words = append([]string{strings.ToLower(mnemonic)}, splitOperands(rest)...)
	return
}

var macroLocal = regexp.MustCompile(`@`)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// parseLine handles labels, equates and macros, then reserves space for
// the opcode of a single line.
func (asm *Assembler) parseLine(line string, lineno int) (err error) {
	labels, words := splitLine(line)

	for _, label := range labels {
		if isReserved(label) {
			err = ErrRegisterInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = asm.addr
	}

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		text := strings.TrimSpace(strings.Join(words[1:], ","))
		name, value, _ := strings.Cut(text, " ")
		value = strings.TrimSpace(value)
		if !identifier.MatchString(name) || isReserved(name) || len(value) == 0 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[name]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[name] = value
		return
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]
		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrOperandCount
			return
		}

		local := fmt.Sprintf("%v_%v_", name, lineno)
		for n, text := range macro.Lines {
			lineno := macro.LineNo + n
			text = macroLocal.ReplaceAllLiteralString(text, local)
			for m, arg := range macro.Args {
				re := regexp.MustCompile(`\b` + regexp.QuoteMeta(arg) + `\b`)
				text = re.ReplaceAllLiteralString(text, args[m])
			}
			err = asm.parseLine(text, lineno)
			if err != nil {
				err = &ErrSyntax{LineNo: lineno, Line: text, Err: err}
				return
			}
		}
		return
	}

	op := Opcode{
		LineNo: lineno,
		Addr:   asm.addr,
		Words:  words,
		Line:   line,
	}

	switch words[0] {
	case "db":
		op.Data = make([]byte, len(words)-1)
	case "dw":
		op.Data = make([]byte, 2*(len(words)-1))
	default:
		op.Data = make([]byte, 2)
		op.Code = true
	}

	if len(op.Data) == 0 {
		err = ErrOperandCount
		return
	}

	asm.addr += len(op.Data)
	if asm.addr > MEMORY_SIZE {
		err = ErrProgramTooLarge
		return
	}

	asm.Opcode = append(asm.Opcode, op)
	return
}

// operandFits returns true if the operand word can be used for arg.
func (asm *Assembler) operandFits(arg CodeArg, word string) bool {
	word = asm.resolve(word)
	if literal, ok := arg.Literal(); ok {
		return strings.ToLower(word) == literal
	}
	switch arg {
	case ARG_VX, ARG_VY:
		_, ok := registerOf(word)
		return ok
	}
	return !isReserved(word)
}

// encode generates the bytes of a single opcode.
func (asm *Assembler) encode(op *Opcode) (err error) {
	mnemonic := op.Words[0]
	operands := op.Words[1:]

	switch mnemonic {
	case "db":
		for n, word := range operands {
			var value uint16
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			if value > 0xff {
				err = fmt.Errorf("%w: %v", ErrValueRange, word)
				return
			}
			op.Data[n] = byte(value)
		}
		return
	case "dw":
		for n, word := range operands {
			var value uint16
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			op.Data[2*n] = byte(value >> 8)
			op.Data[2*n+1] = byte(value)
		}
		return
	}

	known := false
	for n := range len(codeForms) {
		cop := CodeOp(n)
		if cop.String() != mnemonic {
			continue
		}
		known = true

		args := cop.Args()
		if len(args) != len(operands) {
			continue
		}

		fits := true
		for m, arg := range args {
			if !asm.operandFits(arg, operands[m]) {
				fits = false
				break
			}
		}
		if !fits {
			continue
		}

		var values []uint16
		for m, arg := range args {
			if _, ok := arg.Literal(); ok {
				continue
			}
			word := asm.resolve(operands[m])
			var value uint16
			switch arg {
			case ARG_VX, ARG_VY:
				value, _ = registerOf(word)
			default:
				value, err = asm.valueOf(word)
				if err != nil {
					return
				}
			}
			values = append(values, value)
		}

		var code Code
		code, err = cop.Encode(values...)
		if err != nil {
			return
		}
		op.Data[0] = byte(code.Word >> 8)
		op.Data[1] = byte(code.Word)
		return
	}

	if !known {
		err = ErrOpcodeInvalid
		return
	}

	for _, word := range operands {
		word = asm.resolve(word)
		if strings.HasPrefix(strings.ToLower(word), "v") && !isReserved(word) {
			err = fmt.Errorf("%w: %v", ErrRegisterInvalid, word)
			return
		}
	}

	err = ErrOperandCount
	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			if _, ok := err.(*ErrSyntax); !ok {
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
			}
		}
	}()

	asm.Label = make(map[string]int, 16)
	asm.Opcode = asm.Opcode[:0]
	asm.Macro = make(map[string](*Macro))
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}
	asm.addr = PROGRAM_START

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line, _, _ = strings.Cut(text, ";")
		line = strings.TrimSpace(line)
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil || len(words) < 2 {
				err = ErrOpcodeInvalid
				return
			}
			name := strings.ToLower(words[1])
			_, ok := asm.Macro[name]
			if ok {
				err = ErrLabelDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = splitOperands(strings.Join(words[2:], " "))
			}
			asm.Macro[name] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrOpcodeInvalid
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrOpcodeInvalid
		return
	}

	for n := range asm.Opcode {
		op := &asm.Opcode[n]
		lineno = op.LineNo
		line = op.Line
		err = asm.encode(op)
		if err != nil {
			return
		}
		if asm.Verbose {
			log.Printf("%03x: % 02x %v", op.Addr, op.Data, op.Words)
		}
	}

	prog = &Program{Opcodes: slices.Clone(asm.Opcode)}
	return
}
