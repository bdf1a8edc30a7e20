package history

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Stats counts lines added and removed between two snapshots.
type Stats struct {
	Added   int
	Removed int
}

func (s Stats) String() string {
	return fmt.Sprintf("+%d -%d", s.Added, s.Removed)
}

// DiffStats compares before and after line by line. Empty text has no lines.
func DiffStats(before, after string) Stats {
	before, after = terminate(before), terminate(after)
	if before == after {
		return Stats{}
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var st Stats
	for _, d := range diffs {
		n := strings.Count(d.Text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			st.Added += n
		case diffmatchpatch.DiffDelete:
			st.Removed += n
		}
	}
	return st
}

// terminate makes every line end in a newline so diff segments are whole lines.
func terminate(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
