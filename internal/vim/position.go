package vim

import "fmt"

// Position is a zero-indexed (row, grapheme column) location in a buffer.
type Position struct {
	Row int
	Col int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Col)
}

// Less reports whether p sorts before o, row first.
func (p Position) Less(o Position) bool {
	if p.Row != o.Row {
		return p.Row < o.Row
	}
	return p.Col < o.Col
}

// RangeKind classifies how an operator treats the end of a range.
type RangeKind int

const (
	// Exclusive ranges do not include the character at End.
	Exclusive RangeKind = iota
	// Inclusive ranges include the character at End.
	Inclusive
	// Linewise ranges cover whole lines from Start.Row to End.Row.
	Linewise
)

func (k RangeKind) String() string {
	switch k {
	case Exclusive:
		return "exclusive"
	case Inclusive:
		return "inclusive"
	case Linewise:
		return "linewise"
	default:
		return "unknown"
	}
}

// Range is a span of text produced by a motion or text object.
type Range struct {
	Start Position
	End   Position
	Kind  RangeKind
}

// Normalize returns the range with Start <= End.
func (r Range) Normalize() Range {
	if r.End.Less(r.Start) {
		r.Start, r.End = r.End, r.Start
	}
	return r
}
