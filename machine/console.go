package machine

import (
	"bufio"
	"fmt"
	"io"
)

// PrintStyle selects how the output instruction renders a cell.
type PrintStyle int

const (
	Char PrintStyle = iota // raw byte
	Int                    // signed decimal value followed by a space
)

func (s PrintStyle) String() string {
	switch s {
	case Char:
		return "char"
	case Int:
		return "int"
	}
	return fmt.Sprintf("PrintStyle(%d)", int(s))
}

// EOFPolicy selects what the input instruction stores at end of input.
type EOFPolicy int

const (
	EOFMinusOne  EOFPolicy = iota // store 255 (-1), what getchar's EOF truncates to
	EOFZero                       // store 0
	EOFUnchanged                  // leave the cell as it is
)

func (p EOFPolicy) String() string {
	switch p {
	case EOFMinusOne:
		return "minus-one"
	case EOFZero:
		return "zero"
	case EOFUnchanged:
		return "unchanged"
	}
	return fmt.Sprintf("EOFPolicy(%d)", int(p))
}

// ParseEOFPolicy returns the policy named by s, as printed by String.
func ParseEOFPolicy(s string) (EOFPolicy, error) {
	for _, p := range []EOFPolicy{EOFMinusOne, EOFZero, EOFUnchanged} {
		if s == p.String() {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown eof policy %q (want minus-one, zero or unchanged)", s)
}

// Console is a Device that reads program input from an io.Reader and
// writes program output to an io.Writer. Output is buffered and flushed
// before every read and by Flush.
type Console struct {
	Style PrintStyle
	EOF   EOFPolicy

	r   *bufio.Reader
	w   *bufio.Writer
	eof bool
}

// NewConsole returns a Console reading from r and writing to w.
// A nil r behaves as an empty input.
func NewConsole(r io.Reader, w io.Writer, style PrintStyle, eof EOFPolicy) *Console {
	c := &Console{Style: style, EOF: eof, w: bufio.NewWriter(w)}
	if r != nil {
		c.r = bufio.NewReader(r)
	}
	return c
}

func (c *Console) In(cell byte) (byte, error) {
	if err := c.w.Flush(); err != nil {
		return cell, err
	}
	if c.r != nil && !c.eof {
		b, err := c.r.ReadByte()
		if err == nil {
			return b, nil
		}
		if err != io.EOF {
			return cell, err
		}
		c.eof = true
	}
	switch c.EOF {
	case EOFZero:
		return 0, nil
	case EOFUnchanged:
		return cell, nil
	default:
		return 0xff, nil
	}
}

func (c *Console) Out(cell byte) error {
	if c.Style == Int {
		_, err := fmt.Fprintf(c.w, "%d ", int8(cell))
		return err
	}
	return c.w.WriteByte(cell)
}

// Flush writes any buffered output.
func (c *Console) Flush() error { return c.w.Flush() }
