// Package machine executes a compiled program against a tape.
package machine

import (
	"errors"
	"fmt"

	"github.com/nf/brainfuck/source"
	"github.com/nf/brainfuck/tape"
)

// Machine holds the state of one program execution.
type Machine struct {
	Prog  *source.Program
	PC    int
	Tape  *tape.Tape
	Dev   Device
	Steps uint64 // instructions executed
}

// Device performs the input and output instructions.
type Device interface {
	// In returns the new value of the current cell, which holds cell.
	In(cell byte) (byte, error)
	// Out emits the value of the current cell.
	Out(cell byte) error
}

// New returns a Machine ready to execute prog from its first instruction
// against a fresh tape.
func New(prog *source.Program, dev Device) (*Machine, error) {
	t, err := tape.New()
	if err != nil {
		return nil, err
	}
	return NewWithTape(prog, dev, t), nil
}

// NewWithTape returns a Machine that executes prog against t.
func NewWithTape(prog *source.Program, dev Device, t *tape.Tape) *Machine {
	return &Machine{Prog: prog, Tape: t, Dev: dev}
}

// ErrHalted is returned by Exec when PC is at the end of the program.
var ErrHalted = errors.New("halted")

// Exec executes the instruction at m.PC. It returns ErrHalted if there is no
// instruction left to execute, and otherwise only returns a non-nil error
// (a HaltError) if the tape or device fails.
//
// Brackets are matched by scanning the program each time they are
// executed. The scan relies on the program being balanced and does not
// check the bounds of the instruction stream.
func (m *Machine) Exec() error {
	ops := m.Prog.Ops
	if m.PC >= len(ops) {
		return ErrHalted
	}
	var (
		op   = ops[m.PC]
		opPC = m.PC
		t    = m.Tape
		err  error
	)
	switch op {
	case source.Right:
		err = t.MoveRight()
		m.PC++
	case source.Left:
		err = t.MoveLeft()
		m.PC++
	case source.Inc:
		t.Inc()
		m.PC++
	case source.Dec:
		t.Dec()
		m.PC++
	case source.Out:
		err = m.Dev.Out(t.Cell())
		m.PC++
	case source.In:
		var v byte
		if v, err = m.Dev.In(t.Cell()); err == nil {
			t.Set(v)
		}
		m.PC++
	case source.Open:
		if t.Cell() != 0 {
			m.PC++
			break
		}
		depth := 1
		m.PC++
		for depth > 0 {
			switch ops[m.PC] {
			case source.Open:
				depth++
			case source.Close:
				depth--
			}
			m.PC++
		}
	case source.Close:
		if t.Cell() == 0 {
			m.PC++
			break
		}
		depth := 1
		m.PC--
		for depth > 0 {
			switch ops[m.PC] {
			case source.Open:
				depth--
			case source.Close:
				depth++
			}
			m.PC--
		}
		m.PC += 2
	default:
		panic(fmt.Errorf("internal error: invalid op %q at %d", byte(op), m.PC))
	}
	m.Steps++
	if err != nil {
		return HaltError{Err: err, Op: op, PC: opPC}
	}
	return nil
}

// Run executes the program until it reaches its end, returning nil, or
// until Exec fails.
func (m *Machine) Run() error {
	for {
		if err := m.Exec(); err != nil {
			if err == ErrHalted {
				return nil
			}
			return err
		}
	}
}

// Done reports whether every instruction has been executed.
func (m *Machine) Done() bool { return m.PC >= len(m.Prog.Ops) }

// HaltError is returned by Exec if the tape or device fails while
// executing an instruction.
type HaltError struct {
	Err error
	Op  source.Op
	PC  int
}

func (e HaltError) Error() string {
	return fmt.Sprintf("%v executing %s at %d", e.Err, e.Op, e.PC)
}

func (e HaltError) Unwrap() error { return e.Err }
