package vim

import (
	"fmt"
	"strings"

	"github.com/zjrosen/modal/internal/grapheme"
)

// CommandAction is what the host should do after an ex command.
type CommandAction int

const (
	ActionNone CommandAction = iota
	ActionQuit
	ActionQuitForce
	ActionWrite
	ActionWriteQuit
)

func (a CommandAction) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionQuit:
		return "quit"
	case ActionQuitForce:
		return "quit!"
	case ActionWrite:
		return "write"
	case ActionWriteQuit:
		return "write-quit"
	default:
		return "unknown"
	}
}

const (
	// MsgWritten confirms a :w.
	MsgWritten = "Query saved to history"
	// MsgHelp lists the ex commands.
	MsgHelp = "Commands: :q (quit), :w (save), :wq (save & quit), :q! (force quit)"
)

// CommandResult is the outcome of executing the command line.
type CommandResult struct {
	Action  CommandAction
	Message string
	// Args is the text after the command name, e.g. the path in ":w out.sql".
	Args  string
	Error bool
}

// CommandLine is the ':' line editor. It never touches the text buffer.
type CommandLine struct {
	buf string
}

// Start clears the line.
func (c *CommandLine) Start() { c.buf = "" }

// Text returns the typed command without the leading ':'.
func (c *CommandLine) Text() string { return c.buf }

// AddChar appends one character.
func (c *CommandLine) AddChar(ch string) {
	if grapheme.Count(ch) == 1 {
		c.buf += ch
	}
}

// Backspace removes the last character. It reports false when the line
// was already empty.
func (c *CommandLine) Backspace() bool {
	n := grapheme.Count(c.buf)
	if n == 0 {
		return false
	}
	c.buf = grapheme.Slice(c.buf, 0, n-1)
	return true
}

// Cancel abandons the line.
func (c *CommandLine) Cancel() { c.buf = "" }

// Execute parses and clears the line.
func (c *CommandLine) Execute() CommandResult {
	cmd := strings.TrimSpace(c.buf)
	c.buf = ""
	return ParseCommand(cmd)
}

// ParseCommand maps an ex command to its action.
func ParseCommand(cmd string) CommandResult {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return CommandResult{}
	}
	name := strings.Fields(cmd)[0]
	args := strings.TrimSpace(cmd[len(name):])
	switch strings.ToLower(name) {
	case "q", "quit":
		return CommandResult{Action: ActionQuit}
	case "q!", "quit!":
		return CommandResult{Action: ActionQuitForce}
	case "w", "write":
		return CommandResult{Action: ActionWrite, Message: MsgWritten, Args: args}
	case "wq", "x", "exit":
		return CommandResult{Action: ActionWriteQuit, Args: args}
	case "h", "help":
		return CommandResult{Message: MsgHelp}
	}
	return CommandResult{Message: fmt.Sprintf("Unknown command: %s", cmd), Error: true}
}
