// Package grapheme provides grapheme cluster helpers for Unicode-aware column math.
//
// Every column the editing engine stores (Position.Col) is a grapheme index,
// never a byte offset. A single grapheme may span many bytes and occupy one
// or two terminal cells, so the three units must not be mixed:
//
//   - bytes: len(s)
//   - graphemes: Count(s), the unit of cursor columns
//   - cells: Width(s), the unit of rendering
package grapheme

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Class is the character class used for word boundary detection.
type Class int

const (
	Whitespace Class = iota
	Word
	Punctuation
)

func (c Class) String() string {
	switch c {
	case Whitespace:
		return "whitespace"
	case Word:
		return "word"
	case Punctuation:
		return "punctuation"
	default:
		return "unknown"
	}
}

// Count returns the number of grapheme clusters in s.
func Count(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// Split returns the grapheme clusters of s in order.
func Split(s string) []string {
	if s == "" {
		return nil
	}
	clusters := make([]string, 0, len(s))
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.StepString(s, state)
		clusters = append(clusters, cluster)
	}
	return clusters
}

// At returns the grapheme at index idx, or "" when idx is out of bounds.
func At(s string, idx int) string {
	if idx < 0 {
		return ""
	}
	i := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.StepString(s, state)
		if i == idx {
			return cluster
		}
		i++
	}
	return ""
}

// ByteOffset converts a grapheme index into a byte offset.
// Indices at or past the end map to len(s).
func ByteOffset(s string, idx int) int {
	if idx <= 0 {
		return 0
	}
	original := len(s)
	i := 0
	state := -1
	for len(s) > 0 {
		_, s, _, state = uniseg.StepString(s, state)
		i++
		if i == idx {
			return original - len(s)
		}
	}
	return original
}

// Slice returns the graphemes in [start, end).
func Slice(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end <= start {
		return ""
	}
	return s[ByteOffset(s, start):ByteOffset(s, end)]
}

// Insert places text before the grapheme at idx.
func Insert(s string, idx int, text string) string {
	off := ByteOffset(s, idx)
	return s[:off] + text + s[off:]
}

// Delete removes the graphemes in [start, end).
func Delete(s string, start, end int) string {
	if end <= start {
		return s
	}
	return s[:ByteOffset(s, start)] + s[ByteOffset(s, end):]
}

// Classify returns the class of a grapheme, judged by its base rune.
// Letters, digits and underscore are word characters in any script.
func Classify(cluster string) Class {
	for _, r := range cluster {
		switch {
		case unicode.IsSpace(r):
			return Whitespace
		case r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r):
			return Word
		default:
			return Punctuation
		}
	}
	return Whitespace
}

// ClassifyBig collapses word and punctuation into one non-blank class,
// the classification used by WORD motions.
func ClassifyBig(cluster string) Class {
	if Classify(cluster) == Whitespace {
		return Whitespace
	}
	return Word
}

// IsBlank reports whether s consists only of whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// FirstNonBlank returns the grapheme index of the first non-whitespace
// grapheme, or 0 for a blank line.
func FirstNonBlank(s string) int {
	for i, g := range Split(s) {
		if Classify(g) != Whitespace {
			return i
		}
	}
	return 0
}

// LastNonBlank returns the grapheme index of the last non-whitespace
// grapheme, or 0 for a blank line.
func LastNonBlank(s string) int {
	clusters := Split(s)
	for i := len(clusters) - 1; i >= 0; i-- {
		if Classify(clusters[i]) != Whitespace {
			return i
		}
	}
	return 0
}

// Width returns the display width of s in terminal cells.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate cuts s to at most maxWidth cells without splitting a cluster.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	var b strings.Builder
	used := 0
	for _, g := range Split(s) {
		w := Width(g)
		if used+w > maxWidth {
			break
		}
		b.WriteString(g)
		used += w
	}
	return b.String()
}
