// Package playground is the Bubble Tea host for the editing engine: a
// buffer view with a status bar, the ex command line, a keymap help panel
// and an optional live log pane.
package playground

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/modal/internal/clipboard"
	"github.com/zjrosen/modal/internal/config"
	"github.com/zjrosen/modal/internal/flags"
	"github.com/zjrosen/modal/internal/grapheme"
	"github.com/zjrosen/modal/internal/history"
	"github.com/zjrosen/modal/internal/log"
	"github.com/zjrosen/modal/internal/pubsub"
	"github.com/zjrosen/modal/internal/textbuf"
	"github.com/zjrosen/modal/internal/tracing"
	"github.com/zjrosen/modal/internal/vim"
)

const (
	// DefaultName is the snapshot name used when no file is open.
	DefaultName = "scratch"

	msgUnsaved     = "No write since last change (add ! to override)"
	msgNoTarget    = "No history store or file to write"
	maxLogLines    = 200
	minHelpWidth   = 20
	configReloaded = "Config reloaded"
)

// Store persists buffer snapshots on :w.
type Store interface {
	Save(ctx context.Context, name, content string) (history.Snapshot, error)
}

// Options configures a playground Model.
type Options struct {
	Config config.Config
	// Flags defaults to the config's flags merged over flags.Defaults.
	Flags *flags.Registry
	// Store receives a snapshot on every :w. Nil disables history.
	Store Store
	// Name labels snapshots and the status bar. Defaults to DefaultName.
	Name string
	// FilePath is written on :w when set.
	FilePath string
	Content  string
	// Clipboard backs the + and * registers. Nil selects one from config.
	Clipboard vim.Clipboard
	// Tracer records a span per host command. Nil disables tracing.
	Tracer trace.Tracer

	// ConfigChanges signals that the config file changed. LoadConfig is
	// then called and the new keymap and indent unit are applied.
	ConfigChanges <-chan struct{}
	LoadConfig    func() (config.Config, error)
}

// configChangedMsg is sent when the watched config file changes.
type configChangedMsg struct{}

// notificationMsg is an engine notification relayed through the broker.
type notificationMsg = pubsub.Event[vim.Notification]

// Model holds the playground state.
type Model struct {
	buf    *textbuf.Buffer
	engine *vim.Engine
	keys   KeyMap
	cfg    config.Config
	flags  *flags.Registry

	store    Store
	name     string
	filePath string
	saved    string

	editor   viewport.Model
	helpView viewport.Model
	showHelp bool
	showLog  bool

	logLines    []string
	logListener *log.LogListener
	notes       *pubsub.ContinuousListener[vim.Notification]

	configChanges <-chan struct{}
	loadConfig    func() (config.Config, error)

	ctx    context.Context
	cancel context.CancelFunc
	tracer trace.Tracer

	message    string
	messageErr bool

	width    int
	height   int
	quitting bool
}

// New creates a playground model editing opts.Content.
func New(opts Options) Model {
	cfg := opts.Config
	reg := opts.Flags
	if reg == nil {
		reg = flags.WithDefaults(cfg.Flags)
	}

	clip := opts.Clipboard
	if clip == nil {
		clip = clipboard.New(cfg.Vim.UseSystemClipboard() && reg.Enabled(flags.FlagSystemClipboard))
	}

	ctx, cancel := context.WithCancel(context.Background())
	broker := pubsub.NewBroker[vim.Notification]()

	buf := textbuf.New(opts.Content)
	km, kmErr := config.BuildKeymap(cfg.Vim)
	engine := vim.New(buf,
		vim.WithListener(vim.NewBrokerListener(broker)),
		vim.WithKeymap(km),
		vim.WithClipboard(clip),
		vim.WithIndentUnit(cfg.Vim.IndentText()),
		vim.WithStartMode(cfg.Vim.Mode()),
		vim.WithDotRepeat(reg.Enabled(flags.FlagDotRepeat)),
	)
	if engine.Mode() == vim.ModeInsert {
		buf.BeginGroup()
	}

	name := opts.Name
	if name == "" {
		name = DefaultName
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = tracing.Noop()
	}

	m := Model{
		buf:         buf,
		engine:      engine,
		keys:        DefaultKeyMap(),
		cfg:         cfg,
		flags:       reg,
		store:       opts.Store,
		name:        name,
		filePath:    opts.FilePath,
		saved:       buf.Text(),
		editor:      viewport.New(0, 0),
		showLog:     cfg.UI.ShowLog,
		logListener: log.NewListener(ctx, log.ParseLevel(cfg.UI.LogLevel)),
		notes:       pubsub.NewContinuousListener[vim.Notification](ctx, broker),
		loadConfig:  opts.LoadConfig,
		ctx:         ctx,
		cancel:      cancel,
		tracer:      tracer,
	}
	if reg.Enabled(flags.FlagConfigReload) {
		m.configChanges = opts.ConfigChanges
	}
	if kmErr != nil {
		m.setMessage(kmErr.Error(), true)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.notes.Listen()}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	if cmd := m.waitForConfigChange(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.showHelp {
			m.openHelp()
		}
		m.syncEditor()
		return m, nil

	case configChangedMsg:
		m.reloadConfig()
		m.syncEditor()
		return m, m.waitForConfigChange()

	case log.LogEvent:
		m.logLines = append(m.logLines, msg.Payload.String())
		if len(m.logLines) > maxLogLines {
			m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
		}
		return m, m.logListener.Listen()

	case notificationMsg:
		logNotification(msg.Payload)
		return m, m.notes.Listen()

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func logNotification(n vim.Notification) {
	switch n.Kind {
	case vim.NotifyModeChange:
		log.Debug(log.CatMode, "Mode changed", "mode", n.Mode)
	case vim.NotifyCommandLineStart:
		log.Debug(log.CatCommand, "Command line opened", "text", n.Text)
	case vim.NotifyCommandLineUpdate:
		log.Debug(log.CatCommand, "Command line edited", "text", n.Text)
	}
}

// handleKeyMsg routes host keys, the help panel, then the engine.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.CloseHelp) {
			m.showHelp = false
			return m, nil
		}
		var cmd tea.Cmd
		m.helpView, cmd = m.helpView.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.openHelp()
		return m, nil
	case key.Matches(msg, m.keys.ToggleLog):
		m.showLog = !m.showLog
		m.syncEditor()
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		cmd := m.quit(false)
		m.syncEditor()
		return m, cmd
	}

	if msg.Paste && m.engine.Mode() == vim.ModeInsert {
		m.buf.InsertText(string(msg.Runes))
		m.syncEditor()
		return m, nil
	}

	for _, name := range keyName(msg) {
		res := m.dispatch(name)
		if cmd := m.applyResult(res); cmd != nil {
			return m, cmd
		}
	}
	m.syncEditor()
	return m, nil
}

// dispatch sends one key to the engine. Every Normal mode key runs inside
// an undo group that stays open through Insert mode, so a change and the
// text typed after it undo together.
func (m *Model) dispatch(name string) vim.KeyResult {
	if m.engine.Mode() != vim.ModeInsert {
		m.buf.BeginGroup()
	}
	res := m.engine.HandleKey(name)
	if !res.Consumed && res.Mode == vim.ModeInsert {
		m.insertKey(name)
	}
	if res.Mode != vim.ModeInsert {
		m.buf.EndGroup()
	}
	return res
}

// insertKey applies an Insert mode key the engine left to the host.
func (m *Model) insertKey(name string) {
	cur := m.buf.Cursor()
	switch name {
	case "space":
		m.buf.InsertText(" ")
	case "tab":
		m.buf.InsertText("\t")
	case "enter":
		m.buf.InsertText("\n")
	case "backspace":
		switch {
		case cur.Col > 0:
			m.buf.DeleteRange(vim.Position{Row: cur.Row, Col: cur.Col - 1}, cur)
		case cur.Row > 0:
			prevLen := grapheme.Count(m.buf.Line(cur.Row - 1))
			m.buf.DeleteRange(vim.Position{Row: cur.Row - 1, Col: prevLen}, cur)
		}
	case "left":
		m.buf.MoveCursor(vim.Position{Row: cur.Row, Col: max(cur.Col-1, 0)}, false)
	case "right":
		m.buf.MoveCursor(vim.Position{Row: cur.Row, Col: cur.Col + 1}, false)
	case "up", "down":
		row := cur.Row - 1
		if name == "down" {
			row = cur.Row + 1
		}
		if row < 0 || row >= m.buf.LineCount() {
			return
		}
		m.buf.MoveCursor(vim.Position{Row: row, Col: min(cur.Col, grapheme.Count(m.buf.Line(row)))}, false)
	default:
		if grapheme.Count(name) == 1 {
			m.buf.InsertText(name)
		}
	}
}

// applyResult performs the host side of an ex command and records
// messages. It returns a command only when the playground quits.
func (m *Model) applyResult(res vim.KeyResult) tea.Cmd {
	switch res.CommandAction {
	case vim.ActionWrite, vim.ActionWriteQuit, vim.ActionQuit, vim.ActionQuitForce:
		return m.runCommand(res.CommandAction, res.CommandArgs)
	}

	switch {
	case res.Message != "":
		m.setMessage(res.Message, res.Error)
	case res.ShowCommandLine:
		m.message = ""
	}
	return nil
}

// runCommand executes a host ex command inside a command span.
func (m *Model) runCommand(action vim.CommandAction, args string) tea.Cmd {
	ctx, span := m.tracer.Start(m.ctx, tracing.SpanPrefixCommand+action.String(),
		trace.WithAttributes(
			attribute.String(tracing.AttrCommandAction, action.String()),
			attribute.String(tracing.AttrCommandArgs, args),
			attribute.String(tracing.AttrBufferName, m.name),
			attribute.Int(tracing.AttrBufferLines, m.buf.LineCount()),
			attribute.Bool(tracing.AttrBufferDirty, m.Dirty()),
		))

	var (
		cmd tea.Cmd
		err error
	)
	switch action {
	case vim.ActionWrite:
		err = m.write(ctx, args)
	case vim.ActionWriteQuit:
		if err = m.write(ctx, args); err == nil {
			cmd = m.quit(false)
		}
	case vim.ActionQuit:
		if cmd = m.quit(false); cmd == nil {
			err = errors.New(msgUnsaved)
		}
	case vim.ActionQuitForce:
		cmd = m.quit(true)
	}
	tracing.End(span, err)
	return cmd
}

// write saves the buffer to the history store and to the target file.
// The target is args when given, else the file the playground opened.
// A failure is also shown on the status line.
func (m *Model) write(ctx context.Context, args string) error {
	text := m.buf.Text()
	path := args
	if path == "" {
		path = m.filePath
	}
	if m.store == nil && path == "" {
		m.setMessage(msgNoTarget, true)
		return errors.New(msgNoTarget)
	}

	var parts []string
	if m.store != nil {
		snap, err := m.store.Save(ctx, m.name, text)
		if err != nil {
			log.ErrorErr(log.CatUI, "Save to history failed", err, "name", m.name)
			m.setMessage(fmt.Sprintf("Save failed: %v", err), true)
			return err
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", vim.MsgWritten, snap.Stats))
	}
	if path != "" {
		if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil { //nolint:gosec // G306: user-owned text file
			log.ErrorErr(log.CatUI, "Write file failed", err, "path", path)
			m.setMessage(fmt.Sprintf("Write failed: %v", err), true)
			return err
		}
		parts = append(parts, fmt.Sprintf("%q %dL written", path, m.buf.LineCount()))
	}

	m.saved = text
	m.setMessage(strings.Join(parts, ", "), false)
	log.Info(log.CatUI, "Buffer written", "name", m.name, "path", path)
	return nil
}

// quit leaves the playground. Without force it refuses while the buffer
// has unsaved edits; with force the edits are discarded first.
func (m *Model) quit(force bool) tea.Cmd {
	if m.Dirty() {
		if !force {
			m.setMessage(msgUnsaved, true)
			return nil
		}
		m.buf.SetText(m.saved)
		log.Info(log.CatUI, "Discarded unsaved edits", "name", m.name)
	}
	m.quitting = true
	m.cancel()
	return tea.Quit
}

// reloadConfig applies a changed config file to the live engine.
func (m *Model) reloadConfig() {
	if m.loadConfig == nil {
		return
	}
	cfg, err := m.loadConfig()
	if err != nil {
		log.ErrorErr(log.CatConfig, "Config reload failed", err)
		m.setMessage(fmt.Sprintf("Config reload failed: %v", err), true)
		return
	}

	km, kmErr := config.BuildKeymap(cfg.Vim)
	m.engine.SetKeymap(km)
	m.engine.SetIndentUnit(cfg.Vim.IndentText())
	m.cfg = cfg
	if m.showHelp {
		m.openHelp()
	}

	log.Info(log.CatConfig, "Config reloaded", "remaps", len(cfg.Vim.Keymap))
	if kmErr != nil {
		m.setMessage(kmErr.Error(), true)
		return
	}
	m.setMessage(configReloaded, false)
}

func (m Model) waitForConfigChange() tea.Cmd {
	ch := m.configChanges
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return configChangedMsg{}
	}
}

// openHelp renders the keymap into the help viewport.
func (m *Model) openHelp() {
	md := helpMarkdown(m.engine.Keymap(), m.keys)
	out, err := renderHelp(md, max(m.width-2, minHelpWidth), m.cfg.UI.HelpStyle)
	if err != nil {
		log.ErrorErr(log.CatUI, "Help render failed", err, "style", m.cfg.UI.HelpStyle)
		out = md
	}
	m.helpView = viewport.New(m.width, m.editorHeight())
	m.helpView.SetContent(out)
	m.showHelp = true
}

func (m *Model) setMessage(msg string, isErr bool) {
	m.message = msg
	m.messageErr = isErr
}

// editorHeight is what remains after the status bar, message line and log pane.
func (m Model) editorHeight() int {
	h := m.height - max(lipgloss.Height(m.renderMessage()), 1)
	if m.cfg.UI.ShowStatusBar {
		h--
	}
	if m.showLog {
		h -= logPaneHeight + 2
	}
	return max(h, 1)
}

// syncEditor re-renders the buffer and scrolls the cursor row into view.
func (m *Model) syncEditor() {
	m.editor.Width = m.width
	m.editor.Height = m.editorHeight()
	m.editor.SetContent(m.renderEditor())

	row := m.buf.Cursor().Row
	switch {
	case row < m.editor.YOffset:
		m.editor.SetYOffset(row)
	case row >= m.editor.YOffset+m.editor.Height:
		m.editor.SetYOffset(row - m.editor.Height + 1)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	if m.showHelp {
		sections = append(sections, m.helpView.View())
	} else {
		sections = append(sections, m.editor.View())
	}
	if m.showLog {
		sections = append(sections, m.renderLogPane())
	}
	if m.cfg.UI.ShowStatusBar {
		sections = append(sections, m.renderStatusBar())
	}
	sections = append(sections, m.renderMessage())
	return strings.Join(sections, "\n")
}

// Text returns the buffer content.
func (m Model) Text() string { return m.buf.Text() }

// Mode returns the engine mode.
func (m Model) Mode() vim.Mode { return m.engine.Mode() }

// Message returns the last message and whether it is an error.
func (m Model) Message() (string, bool) { return m.message, m.messageErr }

// Dirty reports whether the buffer differs from the last saved text.
func (m Model) Dirty() bool { return m.buf.Text() != m.saved }

// Quitting reports whether the playground has quit.
func (m Model) Quitting() bool { return m.quitting }
