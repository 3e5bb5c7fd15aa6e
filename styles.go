package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/nf/brainfuck/machine"
	"github.com/nf/brainfuck/source"
	"github.com/nf/brainfuck/tape"
)

var (
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EF4444"))
	noticeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))
)

func errorMsg(format string, args ...any) string {
	return errorStyle.Render("Error:") + " " + fmt.Sprintf(format, args...)
}

func noticeMsg(format string, args ...any) string {
	return noticeStyle.Render("Notice:") + " " + fmt.Sprintf(format, args...)
}

// formatError renders err as the single line shown to the user.
func formatError(err error) string {
	var (
		se *source.StructuralError
		fe *source.FileError
		he machine.HaltError
	)
	switch {
	case errors.As(err, &se):
		return errorMsg("Miss-matched bracket on line %d.", se.Line)
	case errors.As(err, &fe):
		return errorMsg("Could not read file %q.", fe.Name)
	case errors.Is(err, tape.ErrNoMemory):
		return errorMsg("Insufficient memory.")
	case errors.As(err, &he):
		return errorMsg("%v executing %s at instruction %d.", he.Err, he.Op, he.PC)
	}
	return errorMsg("%v.", err)
}
