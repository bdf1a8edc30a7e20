package vim

import "github.com/zjrosen/modal/internal/log"

func (e *Engine) startCommandLine() KeyResult {
	e.cmdline.Start()
	e.setMode(ModeCommandLine)
	text := e.CommandText()
	e.listeners.OnCommandLineStart(text)
	return KeyResult{Consumed: true, ShowCommandLine: true, CommandText: text}
}

func (e *Engine) handleCommandLine(key string) KeyResult {
	switch {
	case isEscape(key):
		e.cmdline.Cancel()
		e.setMode(ModeNormal)
		return consumed
	case key == "enter":
		res := e.cmdline.Execute()
		e.setMode(ModeNormal)
		if res.Error {
			log.Debug(log.CatCommand, "Unknown command", "message", res.Message)
		} else {
			log.Debug(log.CatCommand, "Command executed", "action", res.Action.String())
		}
		return KeyResult{
			Consumed:      true,
			CommandAction: res.Action,
			CommandArgs:   res.Args,
			Message:       res.Message,
			Error:         res.Error,
		}
	case key == "backspace":
		if !e.cmdline.Backspace() {
			e.setMode(ModeNormal)
			return consumed
		}
		return e.commandLineUpdated()
	}
	if ch, ok := charArg(key); ok {
		e.cmdline.AddChar(ch)
		return e.commandLineUpdated()
	}
	return KeyResult{Consumed: true, ShowCommandLine: true, CommandText: e.CommandText()}
}

func (e *Engine) commandLineUpdated() KeyResult {
	text := e.CommandText()
	e.listeners.OnCommandLineUpdate(text)
	return KeyResult{Consumed: true, ShowCommandLine: true, CommandText: text}
}
