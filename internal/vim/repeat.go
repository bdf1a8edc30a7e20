package vim

import (
	"slices"

	"github.com/zjrosen/modal/internal/log"
)

// finishChange runs after every key. Once the engine is idle in Normal
// mode again, the keys typed since the last idle point become the
// repeatable change if they modified the buffer without passing through
// Insert, Visual or CommandLine mode.
func (e *Engine) finishChange() {
	if !e.idle() {
		if e.state.mode != ModeNormal && e.state.mode != ModeOperatorPending {
			e.recordable = false
		}
		return
	}
	if e.changed && e.recordable {
		e.lastChange = slices.Clone(e.recording)
		log.Debug(log.CatEngine, "Recorded change", "keys", len(e.lastChange))
	}
	e.recording = e.recording[:0]
	e.changed = false
	e.recordable = true
}

// recordedKey is one key of a change. count marks digits that were
// folded into a count, wherever they appeared in the sequence.
type recordedKey struct {
	key   string
	count bool
}

// repeatLastChange replays the last recorded change. A count typed before
// '.' replaces every count of the original change.
func (e *Engine) repeatLastChange() KeyResult {
	s := e.state
	var count string
	if s.HasCount() {
		count = s.inputBuffer
		s.inputBuffer = ""
	}
	e.recordable = false
	if !e.dotRepeat || len(e.lastChange) == 0 || e.replaying {
		return consumed
	}

	keys := make([]string, 0, len(e.lastChange)+len(count))
	for _, ch := range count {
		keys = append(keys, string(ch))
	}
	for _, k := range e.lastChange {
		if count != "" && k.count {
			continue
		}
		keys = append(keys, k.key)
	}

	e.replaying = true
	defer func() { e.replaying = false }()
	for _, k := range keys {
		e.HandleKey(k)
	}
	if e.state.mode != ModeNormal {
		e.EnterNormal()
	}
	return consumed
}

func isDigitKey(key string) bool {
	return len(key) == 1 && key[0] >= '0' && key[0] <= '9'
}
