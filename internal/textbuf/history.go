package textbuf

import "github.com/zjrosen/modal/internal/vim"

// edit is one reversible replacement: removed was at `at` and inserted
// took its place. cursor is where the cursor was before the edit.
type edit struct {
	at       vim.Position
	removed  string
	inserted string
	cursor   vim.Position
}

// group is the unit of undo. Outside an explicit group every edit is its
// own group.
type group []edit

// history manages the edit stack for undo/redo.
//
// undoIndex is -1 at the base state and len(groups)-1 at the latest
// group. Pushing after an undo discards the redo tail, since a new edit
// starts a new branch.
type history struct {
	groups    []group
	undoIndex int
	open      group
	grouping  bool
	limit     int
}

func newHistory(limit int) *history {
	return &history{undoIndex: -1, limit: limit}
}

func (h *history) push(e edit) {
	if h.grouping {
		h.open = append(h.open, e)
		return
	}
	h.commit(group{e})
}

func (h *history) commit(g group) {
	if len(g) == 0 {
		return
	}
	h.groups = append(h.groups[:h.undoIndex+1], g)
	if h.limit > 0 && len(h.groups) > h.limit {
		h.groups = h.groups[len(h.groups)-h.limit:]
	}
	h.undoIndex = len(h.groups) - 1
}

func (h *history) begin() {
	if h.grouping {
		return
	}
	h.grouping = true
	h.open = nil
}

func (h *history) end() {
	if !h.grouping {
		return
	}
	h.grouping = false
	g := h.open
	h.open = nil
	h.commit(g)
}

// undoGroup returns the group to revert and steps back.
func (h *history) undoGroup() (group, bool) {
	h.end()
	if h.undoIndex < 0 {
		return nil, false
	}
	g := h.groups[h.undoIndex]
	h.undoIndex--
	return g, true
}

// redoGroup returns the group to reapply and steps forward.
func (h *history) redoGroup() (group, bool) {
	h.end()
	if h.undoIndex >= len(h.groups)-1 {
		return nil, false
	}
	h.undoIndex++
	return h.groups[h.undoIndex], true
}

func (h *history) canUndo() bool { return h.undoIndex >= 0 || len(h.open) > 0 }
func (h *history) canRedo() bool { return h.undoIndex < len(h.groups)-1 }

func (h *history) clear() {
	h.groups = nil
	h.open = nil
	h.grouping = false
	h.undoIndex = -1
}
