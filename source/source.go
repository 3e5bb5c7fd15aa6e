// Package source validates program text and compacts it into an
// executable instruction stream.
package source

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Program is a validated, compacted instruction stream.
// Its brackets are balanced and properly nested.
type Program struct {
	Ops []Op

	lines []lineStart // sorted by pc
}

// lineStart records the first instruction on a source line.
type lineStart struct {
	pc   int
	line int
}

// Len returns the number of instructions in p.
func (p *Program) Len() int { return len(p.Ops) }

// Line returns the source line of the instruction at pc, or 0 if pc is out
// of range.
func (p *Program) Line(pc int) int {
	if pc < 0 || pc >= len(p.Ops) {
		return 0
	}
	i := sort.Search(len(p.lines), func(i int) bool { return p.lines[i].pc > pc })
	return p.lines[i-1].line
}

func (p *Program) String() string {
	var b strings.Builder
	for _, o := range p.Ops {
		b.WriteByte(byte(o))
	}
	return b.String()
}

// StructuralError reports a bracket that has no partner.
type StructuralError struct {
	Line int
	Op   Op // Open or Close
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("unmatched %s on line %d", e.Op, e.Line)
}

// FileError reports a source file that could not be read.
type FileError struct {
	Name string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("reading %s: %v", e.Name, e.Err) }
func (e *FileError) Unwrap() error { return e.Err }

// Compile validates src and returns its instruction stream. Every byte that
// is not an instruction symbol is a comment. Newlines only advance the line
// count used in error reports.
func Compile(src []byte) (*Program, error) {
	var (
		line      = 1
		lastOpen  = 0
		lastClose = 0
		depth     = 0
		count     = 0
	)
	for _, c := range src {
		switch Op(c) {
		case Open:
			depth++
			lastOpen = line
		case Close:
			depth--
			lastClose = line
			if depth < 0 {
				return nil, &StructuralError{Line: lastClose, Op: Close}
			}
		}
		if Op(c).Valid() {
			count++
		} else if c == '\n' {
			line++
		}
	}
	if depth != 0 {
		// depth can only be positive here; the negative case returned above.
		return nil, &StructuralError{Line: lastOpen, Op: Open}
	}

	p := &Program{Ops: make([]Op, 0, count)}
	line = 1
	for _, c := range src {
		if c == '\n' {
			line++
			continue
		}
		if !Op(c).Valid() {
			continue
		}
		if n := len(p.lines); n == 0 || p.lines[n-1].line != line {
			p.lines = append(p.lines, lineStart{pc: len(p.Ops), line: line})
		}
		p.Ops = append(p.Ops, Op(c))
	}
	return p, nil
}

// Load reads the named file and compiles it.
func Load(name string) (*Program, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, &FileError{Name: name, Err: err}
	}
	return Compile(b)
}
