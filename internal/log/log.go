// Package log provides structured logging for modal.
// Entries carry a level, category and key=value fields. Logging stays off
// unless the --debug flag or MODAL_DEBUG is set; every entry is also
// published on a broker so the playground can show a live log pane.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/modal/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name from configuration. Unknown names map
// to LevelDebug.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelDebug
	}
}

// Category groups related log messages.
type Category string

const (
	CatEngine  Category = "engine"  // Key dispatch, motions, operators
	CatMode    Category = "mode"    // Mode transitions
	CatKeymap  Category = "keymap"  // Remaps and discarded sequences
	CatCommand Category = "command" // Ex command line
	CatConfig  Category = "config"  // Configuration loading/saving
	CatWatcher Category = "watcher" // File watcher events
	CatDB      Category = "db"      // History store
	CatCache   Category = "cache"   // cache operations
	CatUI      Category = "ui"      // Playground updates
)

// Entry is one formatted log line.
type Entry struct {
	Time     time.Time
	Level    Level
	Category Category
	Message  string
	// Fields holds the rendered key=value pairs.
	Fields string
}

// String renders the entry the way it is written to the log file:
// 2025-12-06T10:45:00 [ERROR] [db] message key=value key2=value2
func (e Entry) String() string {
	s := fmt.Sprintf("%s [%s] [%s] %s", e.Time.Format("2006-01-02T15:04:05"), e.Level, e.Category, e.Message)
	if e.Fields != "" {
		s += " " + e.Fields
	}
	return s
}

// replaySize is how many recent entries a late listener receives.
const replaySize = 200

// Logger provides structured logging.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[Entry]
}

var (
	mu            sync.RWMutex
	defaultLogger *Logger
)

// Init opens path for appending and installs the global logger.
// Returns a cleanup function to close the log file.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G304: path is user-controlled debug log path
	if err != nil {
		return nil, err
	}
	install(newLogger(f))
	return func() { _ = f.Close() }, nil
}

// InitWithTeaLog uses tea.LogToFile for initialization.
func InitWithTeaLog(path string, prefix string) (func(), error) {
	f, err := tea.LogToFile(path, prefix)
	if err != nil {
		return nil, err
	}
	install(newLogger(f))
	return func() { _ = f.Close() }, nil
}

// InitWriter installs a logger writing to w. Used by tests and by hosts
// that only want the broker (w may be nil).
func InitWriter(w io.Writer) {
	install(newLogger(w))
}

// Reset removes the global logger and closes its broker.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger != nil {
		defaultLogger.broker.Close()
	}
	defaultLogger = nil
}

func newLogger(w io.Writer) *Logger {
	return &Logger{
		writer:   w,
		enabled:  true,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[Entry](pubsub.WithReplay(replaySize)),
	}
}

func install(l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger != nil {
		defaultLogger.broker.Close()
	}
	defaultLogger = l
}

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	log(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	log(LevelError, cat, msg, fields...)
}

func formatFields(fields []any) string {
	var b strings.Builder
	for i := 0; i+1 < len(fields); i += 2 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v=%v", fields[i], fields[i+1])
	}
	// Odd field count: the orphan key gets no value.
	if len(fields)%2 != 0 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v=<missing>", fields[len(fields)-1])
	}
	return b.String()
}

func log(level Level, cat Category, msg string, fields ...any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || level < l.minLevel {
		return
	}

	entry := Entry{
		Time:     time.Now(),
		Level:    level,
		Category: cat,
		Message:  msg,
		Fields:   formatFields(fields),
	}

	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry.String()+"\n")
	}

	// Non-blocking; slow subscribers drop entries.
	l.broker.Publish(pubsub.LoggedEvent, entry)
}

// LogEvent is a pubsub event containing a log entry.
type LogEvent = pubsub.Event[Entry]

// LogListener wraps a continuous listener for log events.
type LogListener = pubsub.ContinuousListener[Entry]

// NewListener subscribes to the global logger, delivering entries at or
// above minLevel until ctx is cancelled. Returns nil when logging is off.
func NewListener(ctx context.Context, minLevel Level) *LogListener {
	l := current()
	if l == nil {
		return nil
	}
	atLeast := func(ev LogEvent) bool { return ev.Payload.Level >= minLevel }
	return pubsub.NewContinuousListener[Entry](ctx, l.broker, pubsub.WithFilter(atLeast))
}
