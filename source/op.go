package source

// Op is a single instruction symbol.
type Op byte

const (
	Right Op = '>'
	Left  Op = '<'
	Inc   Op = '+'
	Dec   Op = '-'
	Out   Op = '.'
	In    Op = ','
	Open  Op = '['
	Close Op = ']'
)

// Valid reports whether o is one of the eight instruction symbols.
func (o Op) Valid() bool {
	switch o {
	case Right, Left, Inc, Dec, Out, In, Open, Close:
		return true
	}
	return false
}

func (o Op) String() string {
	if o.Valid() {
		return string(rune(o))
	}
	return "?"
}
