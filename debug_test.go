package main

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/nf/brainfuck/machine"
)

func TestParseDebugCmd(t *testing.T) {
	for _, c := range []struct {
		text string
		cmd  string
		arg  int
		ok   bool
	}{
		{"s", "s", 1, true},
		{"step 10", "step", 10, true},
		{"b", "b", -1, true},
		{"break 42", "break", 42, true},
		{"c", "c", 0, true},
		{" reset ", "reset", 0, true},
		{"b x", "", 0, false},
		{"s -2", "", 0, false},
	} {
		cmd, arg, err := parseDebugCmd(c.text)
		if (err == nil) != c.ok {
			t.Errorf("parseDebugCmd(%q) error %v", c.text, err)
			continue
		}
		if cmd != c.cmd || arg != c.arg {
			t.Errorf("parseDebugCmd(%q) = %q, %d, want %q, %d", c.text, cmd, arg, c.cmd, c.arg)
		}
	}
}

func TestStateMsg(t *testing.T) {
	m, err := machine.New(compile(t, "+\n[-]"), nil)
	if err != nil {
		t.Fatal(err)
	}
	m.Exec()
	msg := stateMsg(m, BreakState)
	lines := strings.Split(msg, "\n")
	if len(lines) != 3 {
		t.Fatalf("stateMsg has %d lines, want 3:\n%s", len(lines), msg)
	}
	if lines[0] != "+[-]" {
		t.Errorf("program line %q, want %q", lines[0], "+[-]")
	}
	if lines[1] != " ^" {
		t.Errorf("caret line %q, want %q", lines[1], " ^")
	}
	for _, want := range []string{"pc 1 [", "line 2", "[break]", "steps 1", "blocks 1", "cell 1"} {
		if !strings.Contains(lines[2], want) {
			t.Errorf("status %q lacks %q", lines[2], want)
		}
	}

	m.Run()
	if msg := stateMsg(m, HaltState); !strings.Contains(msg, "pc 4 end line 0 [HALT!]") {
		t.Errorf("halt state %q", msg)
	}
}

func TestTapeContent(t *testing.T) {
	m, _ := machine.New(compile(t, "<+++"), nil)
	m.Run()
	got := tapeContent(m.Tape)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("tapeContent has %d lines, want 10:\n%s", len(lines), got)
	}
	if lines[0] != "> block 0" || lines[5] != "  block 1" {
		t.Errorf("block headers %q, %q", lines[0], lines[5])
	}
	if !strings.HasSuffix(lines[4], "[black:yellow]03[-:-]") {
		t.Errorf("cursor row %q does not end with highlighted 03", lines[4])
	}
	if !strings.HasPrefix(lines[6], "  00 00 00") {
		t.Errorf("first row of block 1 %q", lines[6])
	}
}

func TestDebuggerStop(t *testing.T) {
	d := newDebugger()
	d.app.SetScreen(tcell.NewSimulationScreen(""))
	done := make(chan error)
	go func() { done <- d.Run() }()

	// Stopping the application directly, as Ctrl-C does, bypasses the
	// exit command.
	d.app.QueueUpdate(d.app.Stop)
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("debugger did not stop")
	}
	if !d.stopped.Load() {
		t.Fatal("debugger not marked stopped after Run returned")
	}

	// With no event loop left to drain them, queued updates would block.
	m, _ := machine.New(compile(t, "+"), nil)
	finished := make(chan bool)
	go func() {
		for i := 0; i < 200; i++ {
			d.StateFunc(m, PauseState)
		}
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("StateFunc blocked after the debugger stopped")
	}
}
