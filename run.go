package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/nf/brainfuck/machine"
	"github.com/nf/brainfuck/source"
	"github.com/nf/brainfuck/tape"
)

// newTape creates the tape for each run.
var newTape = tape.New

// run compiles and executes the named program once. Program input comes
// from stdin unless cfg names an input file.
func run(cfg *config, name string, stdin io.Reader, stdout io.Writer) error {
	prog, err := source.Load(name)
	if err != nil {
		return err
	}
	log.Debug("loaded", "file", name, "instructions", prog.Len())

	in := stdin
	if cfg.Input != "" {
		f, err := os.Open(cfg.Input)
		if err != nil {
			return &source.FileError{Name: cfg.Input, Err: err}
		}
		defer f.Close()
		in = f
	}

	con := machine.NewConsole(in, stdout, cfg.style(), cfg.EOF)
	t, err := newTape()
	if err != nil {
		return err
	}
	m := machine.NewWithTape(prog, con, t)
	defer t.Release()

	err = m.Run()
	if ferr := con.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		// The newline still follows the output of an aborted run,
		// but the tape is not dumped.
		fmt.Fprintln(stdout)
		return err
	}
	log.Debug("halted", "steps", m.Steps, "blocks", m.Tape.Blocks())
	return finish(m, stdout, cfg.Memory)
}

// finish writes the newline that follows program output and, if dump is
// set, the contents of the tape.
func finish(m *machine.Machine, w io.Writer, dump bool) error {
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if dump {
		return m.Tape.Dump(w)
	}
	return nil
}
