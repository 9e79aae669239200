// Package rom loads CHIP-8 programs, either as raw images or as assembly
// source.
package rom

import (
	"fmt"
	"io/fs"
	"iter"
	"path"
	"slices"
	"strings"

	"github.com/ezrec/chip8/cpu"
)

// Extensions of assembly language source files.
var SourceExt = []string{".8s", ".asm"}

// IsSource returns true if the file name is assembly language source.
func IsSource(name string) bool {
	return slices.Contains(SourceExt, strings.ToLower(path.Ext(name)))
}

// Assemble a source file, with the defines predefined as equates.
func Assemble(fsys fs.FS, name string, defines iter.Seq2[string, string]) (prog *cpu.Program, err error) {
	inf, err := fsys.Open(name)
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &cpu.Assembler{}
	if defines != nil {
		for key, value := range defines {
			asm.Predefine(key, value)
		}
	}

	prog, err = asm.Parse(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", name, err)
		return
	}

	return
}

// Read returns the program image of a file. Source files are assembled.
func Read(fsys fs.FS, name string) (image []byte, err error) {
	if IsSource(name) {
		var prog *cpu.Program
		prog, err = Assemble(fsys, name, (&cpu.Cpu{}).Defines())
		if err != nil {
			return
		}
		image = prog.Binary()
		return
	}

	image, err = fs.ReadFile(fsys, name)
	return
}
