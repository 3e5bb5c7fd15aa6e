package main

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/brainfuck/machine"
	"github.com/nf/brainfuck/tape"
)

type debugger struct {
	run *Runner

	log    *tview.TextView
	output *tview.TextView
	tape   *tview.TextView
	state  *tview.TextView
	input  *tview.InputField
	right  *tview.Flex
	cols   *tview.Flex
	rows   *tview.Flex
	app    *tview.Application

	stopped atomic.Bool
}

var debugCommands = []string{"step", "cont", "pause", "break", "reset", "exit"}

func newDebugger() *debugger {
	d := &debugger{
		log: tview.NewTextView().
			SetMaxLines(1000),
		output: tview.NewTextView().
			SetMaxLines(1000),
		tape: tview.NewTextView().
			SetWrap(false).
			SetDynamicColors(true),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		right: tview.NewFlex().
			SetDirection(tview.FlexRow),
		cols: tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.output.SetChangedFunc(func() { d.app.Draw() })
	d.output.SetTitle("output").SetBorder(true)
	d.tape.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.right.
		AddItem(d.output, 0, 1, false).
		AddItem(d.log, 0, 1, false)
	d.cols.
		AddItem(d.tape, 0, 1, false).
		AddItem(d.right, 0, 1, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 3, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if t == "" || strings.Contains(t, " ") {
			return nil
		}
		for _, c := range debugCommands {
			if strings.HasPrefix(c, t) {
				entries = append(entries, c)
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := d.input.GetText()
		if text == "" {
			return
		}
		d.input.SetText("")
		if text == "exit" {
			d.stopped.Store(true)
			d.app.Stop()
			return
		}
		cmd, arg, err := parseDebugCmd(text)
		if err != nil {
			fmt.Fprintln(d.log, err)
			return
		}
		d.run.Debug(cmd, arg)
		switch cmd {
		case "b", "break":
			if arg < 0 {
				fmt.Fprintln(d.log, "cleared break")
			} else {
				fmt.Fprintf(d.log, "set break %d\n", arg)
			}
		}
	})
	return d
}

// parseDebugCmd splits a command line into its name and numeric argument.
// A missing argument is -1 for break, which clears the breakpoint, and
// 1 for step.
func parseDebugCmd(text string) (cmd string, arg int, err error) {
	cmd, rest, hasArg := strings.Cut(strings.TrimSpace(text), " ")
	switch cmd {
	case "b", "break":
		arg = -1
	case "s", "step":
		arg = 1
	}
	if hasArg {
		if arg, err = strconv.Atoi(strings.TrimSpace(rest)); err != nil || arg < 0 {
			return "", 0, fmt.Errorf("invalid argument %q", rest)
		}
	}
	return cmd, arg, nil
}

// Run runs the interface until it is stopped, by the user or by Ctrl-C.
// State updates are dropped once Run returns.
func (d *debugger) Run() error {
	defer d.stopped.Store(true)
	return d.app.Run()
}

func (d *debugger) StateFunc(m *machine.Machine, k StateKind) {
	if d.stopped.Load() {
		return
	}
	var (
		tapeText = tapeContent(m.Tape)
		state    string
	)
	if k != QuietState {
		state = stateMsg(m, k)
	}
	d.app.QueueUpdateDraw(func() {
		switch k {
		case ClearState:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGrey)
		case BreakState:
			d.state.SetTextColor(tcell.ColorYellow)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case PauseState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case HaltState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkRed)
		}
		d.tape.SetText(tapeText)
		if k != QuietState {
			d.state.SetText(state)
		}
	})
}

// progWindow is the number of instructions shown around the PC.
const progWindow = 64

func stateMsg(m *machine.Machine, k StateKind) string {
	ops := m.Prog.Ops
	lo := max(m.PC-progWindow/2, 0)
	hi := min(lo+progWindow, len(ops))
	var win strings.Builder
	for _, o := range ops[lo:hi] {
		win.WriteByte(byte(o))
	}

	op := "end"
	if !m.Done() {
		op = ops[m.PC].String()
	}
	kind := "       "
	switch k {
	case BreakState:
		kind = "[break]"
	case PauseState:
		kind = "[pause]"
	case HaltState:
		kind = "[HALT!]"
	}
	return fmt.Sprintf("%s\n%s^\npc %d %s line %d %s steps %d blocks %d cell %d",
		win.String(), strings.Repeat(" ", m.PC-lo),
		m.PC, op, m.Prog.Line(m.PC), kind,
		m.Steps, m.Tape.Blocks(), int8(m.Tape.Cell()))
}

// maxTapeBlocks limits the number of blocks rendered by tapeContent.
const maxTapeBlocks = 64

// tapeContent renders the tape as hex, 16 cells per row, with the cell
// under the cursor highlighted using tview color tags.
func tapeContent(t *tape.Tape) string {
	var (
		b strings.Builder
		n int
	)
	t.Visit(func(cells *[tape.Width]byte, cursor int) {
		if n++; n > maxTapeBlocks {
			return
		}
		mark := ' '
		if cursor >= 0 {
			mark = '>'
		}
		fmt.Fprintf(&b, "%c block %d\n", mark, n-1)
		for i, v := range cells {
			if i%16 == 0 {
				fmt.Fprintf(&b, "  %02d ", i)
			}
			if i == cursor {
				fmt.Fprintf(&b, "[black:yellow]%.2x[-:-]", v)
			} else {
				fmt.Fprintf(&b, "%.2x", v)
			}
			if i%16 == 15 {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
	})
	if n > maxTapeBlocks {
		fmt.Fprintf(&b, "  (%d more blocks)\n", n-maxTapeBlocks)
	}
	return b.String()
}
