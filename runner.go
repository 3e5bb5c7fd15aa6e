package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nf/brainfuck/machine"
	"github.com/nf/brainfuck/source"
)

// StateKind describes why the runner reported the machine state.
type StateKind int

const (
	ClearState StateKind = iota // program loaded, running
	QuietState                  // periodic refresh while running
	BreakState                  // stopped at a breakpoint
	PauseState                  // paused by a command or after stepping
	HaltState                   // program finished or failed
)

// sliceLen is the number of instructions executed between checks for
// commands and program swaps.
const sliceLen = 4096

// Runner executes programs in slices so that it can be paused, stepped
// and reset while a program is running. All machine state is owned by the
// goroutine calling Run.
type Runner struct {
	cfg   *config
	out   io.Writer
	state func(*machine.Machine, StateKind) // may be nil

	reset chan *source.Program
	debug chan debugCmd
	done  chan struct{}

	prog    *source.Program
	m       *machine.Machine
	con     *machine.Console
	input   io.Closer
	paused  bool
	halted  bool
	resumed bool // skip the breakpoint check for the next instruction
	steps   int  // remaining single steps, if positive
	brk     int  // breakpoint instruction index, or -1
	lastRef time.Time
}

type debugCmd struct {
	name string
	arg  int
}

// NewRunner returns a Runner that writes program output to out.
// If paused is set each program starts paused.
func NewRunner(cfg *config, out io.Writer, paused bool, state func(*machine.Machine, StateKind)) *Runner {
	return &Runner{
		cfg:    cfg,
		out:    out,
		state:  state,
		paused: paused,
		brk:    -1,
		reset:  make(chan *source.Program),
		debug:  make(chan debugCmd),
		done:   make(chan struct{}),
	}
}

// Reset replaces the running program with p, starting it from scratch.
func (r *Runner) Reset(p *source.Program) {
	select {
	case r.reset <- p:
	case <-r.done:
	}
}

// Debug sends a debugger command to the runner. It is a no-op after Run
// has returned.
func (r *Runner) Debug(cmd string, arg int) {
	select {
	case r.debug <- debugCmd{cmd, arg}:
	case <-r.done:
	}
}

// Run executes p, and any programs passed to Reset, until the exit
// command is received.
func (r *Runner) Run(p *source.Program) {
	defer close(r.done)
	defer r.unload()
	startPaused := r.paused
	r.load(p, startPaused)
	for {
		if r.running() {
			select {
			case p := <-r.reset:
				r.load(p, startPaused)
			case c := <-r.debug:
				if !r.command(c) {
					return
				}
			default:
				r.execSlice()
			}
			continue
		}
		select {
		case p := <-r.reset:
			r.load(p, startPaused)
		case c := <-r.debug:
			if !r.command(c) {
				return
			}
		}
	}
}

func (r *Runner) running() bool { return r.m != nil && !r.paused && !r.halted }

func (r *Runner) load(p *source.Program, paused bool) {
	r.unload()
	r.prog = p
	r.paused, r.halted, r.resumed, r.steps = paused, false, false, 0

	var in io.Reader
	if name := r.cfg.Input; name != "" {
		f, err := os.Open(name)
		if err != nil {
			log.Error("opening input", "err", err)
		} else {
			in, r.input = f, f
		}
	}
	r.con = machine.NewConsole(in, r.out, r.cfg.style(), r.cfg.EOF)
	m, err := machine.New(p, r.con)
	if err != nil {
		log.Error(formatError(err))
		r.halted = true
		return
	}
	r.m = m
	if paused {
		r.notify(PauseState)
	} else {
		r.notify(ClearState)
	}
}

func (r *Runner) unload() {
	if r.input != nil {
		r.input.Close()
		r.input = nil
	}
	if r.m != nil {
		r.m.Tape.Release()
		r.m = nil
	}
}

func (r *Runner) command(c debugCmd) bool {
	switch c.name {
	case "exit":
		return false
	case "s", "step":
		r.steps = max(c.arg, 1)
		r.paused, r.resumed = false, true
	case "c", "cont":
		r.steps = 0
		r.paused, r.resumed = false, true
	case "p", "pause":
		if !r.paused && !r.halted {
			r.paused = true
			r.notify(PauseState)
		}
	case "b", "break":
		r.brk = c.arg
	case "r", "reset":
		if r.prog != nil {
			r.load(r.prog, true)
		}
	default:
		log.Warn("unknown command", "cmd", c.name)
	}
	return true
}

func (r *Runner) execSlice() {
	defer r.con.Flush()
	for i := 0; i < sliceLen; i++ {
		if r.m.PC == r.brk && !r.resumed {
			r.paused = true
			r.notify(BreakState)
			return
		}
		r.resumed = false
		if err := r.m.Exec(); err != nil {
			r.halt(err)
			return
		}
		if r.steps > 0 {
			if r.steps--; r.steps == 0 {
				r.paused = true
				r.notify(PauseState)
				return
			}
		}
	}
	if time.Since(r.lastRef) > 50*time.Millisecond {
		r.lastRef = time.Now()
		r.notify(QuietState)
	}
}

func (r *Runner) halt(err error) {
	r.halted = true
	if ferr := r.con.Flush(); err == machine.ErrHalted {
		err = ferr
	}
	if err == nil {
		err = finish(r.m, r.out, r.cfg.Memory)
	} else {
		fmt.Fprintln(r.out)
	}
	if err != nil {
		log.Error(formatError(err))
	} else {
		log.Info("halted", "steps", r.m.Steps, "blocks", r.m.Tape.Blocks())
	}
	r.notify(HaltState)
}

func (r *Runner) notify(k StateKind) {
	if r.state != nil && r.m != nil {
		r.state(r.m, k)
	}
}
