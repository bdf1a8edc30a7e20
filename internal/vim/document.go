package vim

import "github.com/zjrosen/modal/internal/grapheme"

// document is a read-only grapheme view of a Buffer, split lazily per row
// for the duration of one motion or text object computation.
type document struct {
	buf   Buffer
	lines map[int][]string
}

func newDocument(b Buffer) *document {
	return &document{buf: b, lines: make(map[int][]string)}
}

func (d *document) lineCount() int {
	return d.buf.LineCount()
}

func (d *document) line(row int) []string {
	if row < 0 || row >= d.lineCount() {
		return nil
	}
	if g, ok := d.lines[row]; ok {
		return g
	}
	g := grapheme.Split(d.buf.Line(row))
	d.lines[row] = g
	return g
}

func (d *document) lineLen(row int) int {
	return len(d.line(row))
}

// at returns the grapheme at p, or "" past the end of the line.
func (d *document) at(p Position) string {
	l := d.line(p.Row)
	if p.Col < 0 || p.Col >= len(l) {
		return ""
	}
	return l[p.Col]
}

// wordClass is the motion-level class: an empty line forms its own class
// so that word motions stop on it.
type wordClass int

const (
	classBlank wordClass = iota
	classWord
	classPunct
	classEmpty
)

// classAt classifies p. The slot one past the end of a non-empty line is
// the line break and counts as whitespace.
func (d *document) classAt(p Position, big bool) wordClass {
	l := d.line(p.Row)
	if len(l) == 0 {
		return classEmpty
	}
	if p.Col >= len(l) {
		return classBlank
	}
	c := grapheme.Classify(l[p.Col])
	if big {
		c = grapheme.ClassifyBig(l[p.Col])
	}
	switch c {
	case grapheme.Word:
		return classWord
	case grapheme.Punctuation:
		return classPunct
	default:
		return classBlank
	}
}

// next steps one slot forward through the document, visiting the line
// break slot of every non-empty line. It reports false at the end.
func (d *document) next(p Position) (Position, bool) {
	n := d.lineLen(p.Row)
	if p.Col < n {
		return Position{Row: p.Row, Col: p.Col + 1}, true
	}
	if p.Row+1 >= d.lineCount() {
		return p, false
	}
	return Position{Row: p.Row + 1}, true
}

// prev steps one slot backward, the mirror of next.
func (d *document) prev(p Position) (Position, bool) {
	if p.Col > 0 {
		return Position{Row: p.Row, Col: p.Col - 1}, true
	}
	if p.Row == 0 {
		return p, false
	}
	return Position{Row: p.Row - 1, Col: d.lineLen(p.Row - 1)}, true
}

// firstNonBlank returns the first non-whitespace column of row.
func (d *document) firstNonBlank(row int) int {
	for i, g := range d.line(row) {
		if grapheme.Classify(g) != grapheme.Whitespace {
			return i
		}
	}
	return 0
}

// lastNonBlank returns the last non-whitespace column of row.
func (d *document) lastNonBlank(row int) int {
	l := d.line(row)
	for i := len(l) - 1; i >= 0; i-- {
		if grapheme.Classify(l[i]) != grapheme.Whitespace {
			return i
		}
	}
	return 0
}
