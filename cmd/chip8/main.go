// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/rom"

	_ "github.com/ezrec/chip8/driver/termloop"
	_ "github.com/ezrec/chip8/driver/tty"
)

// listing writes a disassembly of the program image.
func listing(w io.Writer, image []byte, prog *cpu.Program) (err error) {
	tw := tabwriter.NewWriter(w, 8, 8, 1, ' ', 0)
	fmt.Fprintln(tw, "addr\topcode\tinstruction\tline\t")

	for offset := 0; offset+1 < len(image); offset += 2 {
		addr := uint16(cpu.PROGRAM_START + offset)
		word := uint16(image[offset])<<8 | uint16(image[offset+1])
		code, _ := cpu.Decode(word)

		line := ""
		if dbg := prog.Debug(addr); dbg.Opcode != nil {
			line = fmt.Sprintf("%d: %v", dbg.LineNo, dbg.Line)
		}

		fmt.Fprintf(tw, "%03X\t%04X\t%v\t%v\t\n", addr, word, code, line)
	}

	err = tw.Flush()
	return
}

func main() {
	var driver string
	var rate int
	var verbose bool
	var halt bool
	var seed uint64
	var list bool

	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(os.Args[0])))

	flag.StringVar(&driver, "d", "termloop", fmt.Sprintf("Display driver %v", emulator.Drivers()))
	flag.IntVar(&rate, "hz", emulator.CYCLE_RATE, "Cycles per second")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&halt, "halt", false, "Halt on the first runtime error")
	flag.Uint64Var(&seed, "s", 0, "Random number seed, 0 for the time of day")
	flag.BoolVar(&list, "l", false, "List the program disassembly, do not execute")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: %v [options] rom", filepath.Base(os.Args[0]))
	}

	path := flag.Arg(0)
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	fsys := os.DirFS(dir)

	drv, err := emulator.Lookup(driver)
	if err != nil {
		log.Fatal(err)
	}

	emu := emulator.NewEmulator(drv)
	emu.Verbose = verbose
	emu.Rate = rate
	emu.HaltOnError = halt
	if seed != 0 {
		emu.Cpu.Seed(seed)
	}

	var image []byte
	if rom.IsSource(name) {
		prog, err := rom.Assemble(fsys, name, emu.Defines())
		if err != nil {
			log.Fatal(err)
		}
		err = emu.LoadProgram(prog)
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}
		image = prog.Binary()
	} else {
		image, err = rom.Read(fsys, name)
		if err != nil {
			log.Fatal(err)
		}
		err = emu.Load(image)
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}
	}

	if list {
		err = listing(os.Stdout, image, emu.Program)
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = emu.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Print(emu.Cpu.String())
		log.Fatal(err)
	}
}
