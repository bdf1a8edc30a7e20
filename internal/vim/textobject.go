package vim

import "github.com/zjrosen/modal/internal/log"

// TextObjectKind enumerates the text objects.
type TextObjectKind int

const (
	ObjInnerWord TextObjectKind = iota
	ObjAWord
	ObjInnerBigWord
	ObjABigWord
	ObjInnerDoubleQuote
	ObjADoubleQuote
	ObjInnerSingleQuote
	ObjASingleQuote
	ObjInnerBacktick
	ObjABacktick
	ObjInnerParen
	ObjAParen
	ObjInnerBracket
	ObjABracket
	ObjInnerBrace
	ObjABrace
	ObjInnerAngle
	ObjAAngle
	objectCount
)

// TextObjectResult is a range around the cursor. End is exclusive for
// charwise results; a Linewise result covers rows Start.Row..End.Row.
type TextObjectResult struct {
	Start  Position
	End    Position
	Kind   RangeKind
	Failed bool
}

func (r TextObjectResult) Range() Range {
	return Range{Start: r.Start, End: r.End, Kind: r.Kind}
}

var failedObject = TextObjectResult{Failed: true}

type textObjectFunc func(d *document, from Position, count int) TextObjectResult

var textObjectFuncs = [objectCount]textObjectFunc{
	ObjInnerWord:        wordObject(false, true),
	ObjAWord:            wordObject(false, false),
	ObjInnerBigWord:     wordObject(true, true),
	ObjABigWord:         wordObject(true, false),
	ObjInnerDoubleQuote: quoteObject(`"`, true),
	ObjADoubleQuote:     quoteObject(`"`, false),
	ObjInnerSingleQuote: quoteObject("'", true),
	ObjASingleQuote:     quoteObject("'", false),
	ObjInnerBacktick:    quoteObject("`", true),
	ObjABacktick:        quoteObject("`", false),
	ObjInnerParen:       bracketObject("(", ")", true),
	ObjAParen:           bracketObject("(", ")", false),
	ObjInnerBracket:     bracketObject("[", "]", true),
	ObjABracket:         bracketObject("[", "]", false),
	ObjInnerBrace:       bracketObject("{", "}", true),
	ObjABrace:           bracketObject("{", "}", false),
	ObjInnerAngle:       bracketObject("<", ">", true),
	ObjAAngle:           bracketObject("<", ">", false),
}

// ExecuteTextObject computes a text object around the buffer cursor.
func ExecuteTextObject(b Buffer, kind TextObjectKind, count int) TextObjectResult {
	return runTextObject(newDocument(b), kind, b.Cursor(), count)
}

func runTextObject(d *document, kind TextObjectKind, from Position, count int) TextObjectResult {
	if kind < 0 || kind >= objectCount {
		return failedObject
	}
	res := textObjectFuncs[kind](d, from, max(1, count))
	if res.Failed {
		log.Debug(log.CatEngine, "Text object not found", "object", int(kind), "at", from.String())
	}
	return res
}

// wordObject selects the run of the cursor's class. With around, trailing
// whitespace is added, or leading whitespace when there is none. On
// whitespace, around adds the following word instead.
func wordObject(big, inner bool) textObjectFunc {
	return func(d *document, from Position, count int) TextObjectResult {
		n := d.lineLen(from.Row)
		if n == 0 {
			return failedObject
		}
		row := from.Row
		col := min(from.Col, n-1)
		cls := d.classAt(Position{Row: row, Col: col}, big)

		runStart := func(c int) int {
			k := d.classAt(Position{Row: row, Col: c}, big)
			for c > 0 && d.classAt(Position{Row: row, Col: c - 1}, big) == k {
				c--
			}
			return c
		}
		runEnd := func(c int) int {
			k := d.classAt(Position{Row: row, Col: c}, big)
			for c < n && d.classAt(Position{Row: row, Col: c}, big) == k {
				c++
			}
			return c
		}

		start := runStart(col)
		end := runEnd(col)
		for i := 1; i < count && end < n; i++ {
			end = runEnd(end)
		}
		if !inner {
			switch {
			case cls == classBlank:
				if end < n {
					end = runEnd(end)
				}
			case end < n && d.classAt(Position{Row: row, Col: end}, big) == classBlank:
				end = runEnd(end)
			case start > 0 && d.classAt(Position{Row: row, Col: start - 1}, big) == classBlank:
				start = runStart(start - 1)
			}
		}
		return TextObjectResult{
			Start: Position{Row: row, Col: start},
			End:   Position{Row: row, Col: end},
			Kind:  Exclusive,
		}
	}
}

// quoteObject pairs quote characters left to right on the cursor's line,
// skipping backslash-escaped ones. The pair enclosing the cursor wins,
// otherwise the first pair after it.
func quoteObject(quote string, inner bool) textObjectFunc {
	return func(d *document, from Position, _ int) TextObjectResult {
		line := d.line(from.Row)
		var quotes []int
		for i, g := range line {
			if g == quote && !escaped(line, i) {
				quotes = append(quotes, i)
			}
		}
		for i := 0; i+1 < len(quotes); i += 2 {
			opener, closer := quotes[i], quotes[i+1]
			if from.Col > closer {
				continue
			}
			if inner {
				return TextObjectResult{
					Start: Position{Row: from.Row, Col: opener + 1},
					End:   Position{Row: from.Row, Col: closer},
					Kind:  Exclusive,
				}
			}
			return TextObjectResult{
				Start: Position{Row: from.Row, Col: opener},
				End:   Position{Row: from.Row, Col: closer + 1},
				Kind:  Exclusive,
			}
		}
		return failedObject
	}
}

func escaped(line []string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && line[j] == `\`; j-- {
		n++
	}
	return n%2 == 1
}

// bracketObject finds the innermost open..close pair around the cursor,
// scanning across lines and skipping nested pairs. A cursor on either
// delimiter selects that pair.
func bracketObject(opener, closer string, inner bool) textObjectFunc {
	return func(d *document, from Position, count int) TextObjectResult {
		start := from
		if d.at(from) == closer {
			p, ok := d.prev(from)
			if !ok {
				return failedObject
			}
			start = p
		}

		var openPos Position
		found := false
		pos := start
		for level := count; level > 0; level-- {
			openPos, found = scanOpen(d, pos, opener, closer)
			if !found {
				return failedObject
			}
			if level > 1 {
				p, ok := d.prev(openPos)
				if !ok {
					return failedObject
				}
				pos = p
			}
		}
		closePos, ok := scanClose(d, openPos, opener, closer)
		if !ok {
			return failedObject
		}

		if !inner {
			return TextObjectResult{
				Start: openPos,
				End:   Position{Row: closePos.Row, Col: closePos.Col + 1},
				Kind:  Exclusive,
			}
		}
		if closePos.Row-openPos.Row >= 2 &&
			openPos.Col == d.lastNonBlank(openPos.Row) &&
			closePos.Col == d.firstNonBlank(closePos.Row) {
			return TextObjectResult{
				Start: Position{Row: openPos.Row + 1},
				End:   Position{Row: closePos.Row - 1},
				Kind:  Linewise,
			}
		}
		return TextObjectResult{
			Start: Position{Row: openPos.Row, Col: openPos.Col + 1},
			End:   closePos,
			Kind:  Exclusive,
		}
	}
}

// scanOpen walks backward from p, inclusive, counting closes as depth.
func scanOpen(d *document, p Position, opener, closer string) (Position, bool) {
	depth := 0
	for {
		switch d.at(p) {
		case closer:
			depth++
		case opener:
			if depth == 0 {
				return p, true
			}
			depth--
		}
		var ok bool
		if p, ok = d.prev(p); !ok {
			return Position{}, false
		}
	}
}

// scanClose walks forward from just after the open bracket.
func scanClose(d *document, openPos Position, opener, closer string) (Position, bool) {
	depth := 0
	p := openPos
	for {
		var ok bool
		if p, ok = d.next(p); !ok {
			return Position{}, false
		}
		switch d.at(p) {
		case opener:
			depth++
		case closer:
			if depth == 0 {
				return p, true
			}
			depth--
		}
	}
}
