// Package tape implements an unbounded tape of 8-bit cells, stored as a
// doubly linked chain of fixed-size blocks that grows in either direction
// as the cursor moves past its ends.
package tape

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Width is the number of cells in a block.
const Width = 64

// ErrNoMemory is returned when a new block cannot be allocated.
var ErrNoMemory = errors.New("insufficient memory")

type block struct {
	cells      [Width]byte
	prev, next *block
}

// Tape is a chain of blocks with a single cursor.
// The zero value is not usable; call New.
type Tape struct {
	cur    *block
	off    int
	blocks int
	alloc  func() error
}

// New returns a tape of one zeroed block with the cursor at its first cell.
func New() (*Tape, error) { return NewAlloc(nil) }

// NewAlloc is like New, but consults alloc before allocating each block,
// including the first. A non-nil error from alloc fails the allocation
// and is returned to the caller. A nil alloc never fails.
func NewAlloc(alloc func() error) (*Tape, error) {
	t := &Tape{alloc: alloc}
	b, err := t.newBlock()
	if err != nil {
		return nil, err
	}
	t.cur, t.blocks = b, 1
	return t, nil
}

func (t *Tape) newBlock() (*block, error) {
	if t.alloc != nil {
		if err := t.alloc(); err != nil {
			return nil, err
		}
	}
	return new(block), nil
}

// MoveLeft moves the cursor one cell to the left, linking in a new block if
// the cursor is at the leftmost cell of the chain.
func (t *Tape) MoveLeft() error {
	if t.off > 0 {
		t.off--
		return nil
	}
	if t.cur.prev == nil {
		b, err := t.newBlock()
		if err != nil {
			return err
		}
		b.next = t.cur
		t.cur.prev = b
		t.blocks++
	}
	t.cur = t.cur.prev
	t.off = Width - 1
	return nil
}

// MoveRight moves the cursor one cell to the right, linking in a new block
// if the cursor is at the rightmost cell of the chain.
func (t *Tape) MoveRight() error {
	if t.off < Width-1 {
		t.off++
		return nil
	}
	if t.cur.next == nil {
		b, err := t.newBlock()
		if err != nil {
			return err
		}
		b.prev = t.cur
		t.cur.next = b
		t.blocks++
	}
	t.cur = t.cur.next
	t.off = 0
	return nil
}

// Cell returns the value of the cell under the cursor.
func (t *Tape) Cell() byte { return t.cur.cells[t.off] }

// Set stores v in the cell under the cursor.
func (t *Tape) Set(v byte) { t.cur.cells[t.off] = v }

// Inc adds one to the cell under the cursor, wrapping 255 to 0.
func (t *Tape) Inc() { t.cur.cells[t.off]++ }

// Dec subtracts one from the cell under the cursor, wrapping 0 to 255.
func (t *Tape) Dec() { t.cur.cells[t.off]-- }

// Offset returns the cursor's position within its block.
func (t *Tape) Offset() int { return t.off }

// Blocks returns the number of allocated blocks.
func (t *Tape) Blocks() int { return t.blocks }

func (t *Tape) first() *block {
	b := t.cur
	for b.prev != nil {
		b = b.prev
	}
	return b
}

// Visit calls fn for each block from left to right. The cursor argument is
// the cursor offset if the block holds the cursor, and -1 otherwise.
// The cells must not be retained after fn returns.
func (t *Tape) Visit(fn func(cells *[Width]byte, cursor int)) {
	for b := t.first(); b != nil; b = b.next {
		cursor := -1
		if b == t.cur {
			cursor = t.off
		}
		fn(&b.cells, cursor)
	}
}

// Dump writes every cell of the tape to w, one line of bracketed signed
// values per block, between START OF TAPE and END OF TAPE markers.
func (t *Tape) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("START OF TAPE\n")
	t.Visit(func(cells *[Width]byte, _ int) {
		bw.WriteString(formatBlock(cells))
		bw.WriteByte('\n')
	})
	bw.WriteString("END OF TAPE\n")
	return bw.Flush()
}

// formatBlock renders the cells of a block as bracketed signed values.
func formatBlock(cells *[Width]byte) string {
	var b strings.Builder
	for _, v := range cells {
		fmt.Fprintf(&b, "[%d]", int8(v))
	}
	return b.String()
}

// Release unlinks every block of the tape. The tape must not be used
// afterwards.
func (t *Tape) Release() {
	for b := t.first(); b != nil; {
		next := b.next
		b.prev, b.next = nil, nil
		b = next
	}
	t.cur = nil
	t.blocks = 0
}
