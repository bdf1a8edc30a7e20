// Package config provides configuration types and defaults for modal.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/zjrosen/modal/internal/flags"
	"github.com/zjrosen/modal/internal/log"
	"github.com/zjrosen/modal/internal/tracing"
	"github.com/zjrosen/modal/internal/vim"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all configuration options for modal.
type Config struct {
	Vim     VimConfig       `mapstructure:"vim"`
	History HistoryConfig   `mapstructure:"history"`
	UI      UIConfig        `mapstructure:"ui"`
	Tracing tracing.Config  `mapstructure:"tracing"`
	Flags   map[string]bool `mapstructure:"flags"`
}

// VimConfig configures the editing engine.
type VimConfig struct {
	StartMode  string `mapstructure:"start_mode"`  // "normal" (default) or "insert"
	IndentUnit string `mapstructure:"indent_unit"` // number of spaces, or "tab"
	Clipboard  string `mapstructure:"clipboard"`   // "system" (default) or "none"

	// Keymap maps key sequences to handler names, applied over the
	// default bindings. The handler "nop" unbinds a key.
	Keymap map[string]string `mapstructure:"keymap"`
}

// HistoryConfig configures the snapshot store written by :w.
type HistoryConfig struct {
	Path     string        `mapstructure:"path"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// UIConfig holds playground display options.
type UIConfig struct {
	ShowStatusBar bool   `mapstructure:"show_status_bar"`
	ShowLog       bool   `mapstructure:"show_log"`
	HelpStyle     string `mapstructure:"help_style"` // glamour style: "dark" (default), "light", "notty"
	LogLevel      string `mapstructure:"log_level"`  // lowest level shown in the log pane
}

// helpStyles are the glamour standard styles accepted by ui.help_style.
var helpStyles = []string{"ascii", "dark", "dracula", "light", "notty", "pink", "tokyo-night"}

// DefaultHistoryPath returns ~/.modal/history.db, or a relative path when
// the home directory is unavailable.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".modal", "history.db")
	}
	return filepath.Join(home, ".modal", "history.db")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Vim: VimConfig{
			StartMode:  "normal",
			IndentUnit: "4",
			Clipboard:  "system",
		},
		History: HistoryConfig{
			Path:     DefaultHistoryPath(),
			CacheTTL: time.Minute,
		},
		UI: UIConfig{
			ShowStatusBar: true,
			ShowLog:       false,
			HelpStyle:     "dark",
			LogLevel:      "info",
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// Validate checks every section and returns all problems joined.
func Validate(cfg Config) error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...)))
	}

	switch cfg.Vim.StartMode {
	case "", "normal", "insert":
	default:
		invalid("vim.start_mode must be \"normal\" or \"insert\", got %q", cfg.Vim.StartMode)
	}

	if _, err := ParseIndentUnit(cfg.Vim.IndentUnit); err != nil {
		invalid("vim.indent_unit: %v", err)
	}

	switch cfg.Vim.Clipboard {
	case "", "system", "none":
	default:
		invalid("vim.clipboard must be \"system\" or \"none\", got %q", cfg.Vim.Clipboard)
	}

	for _, keys := range slices.Sorted(maps.Keys(cfg.Vim.Keymap)) {
		handler := cfg.Vim.Keymap[keys]
		if keys == "" {
			invalid("vim.keymap: empty key for handler %q", handler)
			continue
		}
		if handler == "nop" {
			continue
		}
		if _, err := vim.ParseHandler(handler); err != nil {
			invalid("vim.keymap[%q]: %v", keys, err)
		}
	}

	if cfg.History.CacheTTL < 0 {
		invalid("history.cache_ttl must not be negative, got %s", cfg.History.CacheTTL)
	}

	if cfg.UI.HelpStyle != "" && !slices.Contains(helpStyles, cfg.UI.HelpStyle) {
		invalid("ui.help_style must be one of %s, got %q", strings.Join(helpStyles, ", "), cfg.UI.HelpStyle)
	}

	if unknown := flags.Unknown(cfg.Flags); len(unknown) > 0 {
		invalid("unknown flags: %s", strings.Join(unknown, ", "))
	}

	switch strings.ToLower(cfg.UI.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		invalid("ui.log_level must be debug, info, warn or error, got %q", cfg.UI.LogLevel)
	}

	if err := cfg.Tracing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}

	return errors.Join(errs...)
}

// ParseIndentUnit converts vim.indent_unit into the text one indent level
// inserts. Empty means the engine default.
func ParseIndentUnit(s string) (string, error) {
	switch s {
	case "":
		return vim.DefaultIndentUnit, nil
	case "tab":
		return "\t", nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 16 {
		return "", fmt.Errorf("must be \"tab\" or a number of spaces between 1 and 16, got %q", s)
	}
	return strings.Repeat(" ", n), nil
}

// IndentText returns the configured indent, falling back to the engine
// default on invalid input.
func (c VimConfig) IndentText() string {
	unit, err := ParseIndentUnit(c.IndentUnit)
	if err != nil {
		return vim.DefaultIndentUnit
	}
	return unit
}

// Mode returns the configured start mode.
func (c VimConfig) Mode() vim.Mode {
	if c.StartMode == "insert" {
		return vim.ModeInsert
	}
	return vim.ModeNormal
}

// UseSystemClipboard reports whether + and * should reach the OS clipboard.
func (c VimConfig) UseSystemClipboard() bool {
	return c.Clipboard != "none"
}

// BuildKeymap returns the default keymap with the configured remaps
// applied in key order. Invalid entries are skipped and reported.
func BuildKeymap(c VimConfig) (*vim.Keymap, error) {
	km := vim.NewKeymap()
	var errs []error
	for _, keys := range slices.Sorted(maps.Keys(c.Keymap)) {
		if err := km.Remap(keys, c.Keymap[keys]); err != nil {
			log.ErrorErr(log.CatConfig, "Skipping keymap entry", err, "keys", keys)
			errs = append(errs, fmt.Errorf("%w: vim.keymap[%q]: %w", ErrInvalidConfig, keys, err))
		}
	}
	return km, errors.Join(errs...)
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Modal Configuration

# Editing engine
vim:
  start_mode: normal   # "normal" (default) or "insert"
  indent_unit: "4"     # spaces per indent level, or "tab"
  clipboard: system    # "system" uses the OS clipboard for "+ and "*, "none" keeps them local

  # Remap keys to engine handlers (run 'modal keys --handlers' for the list).
  # The handler "nop" removes a binding.
  # keymap:
  #   Q: motion_word_forward
  #   x: nop

# Snapshots written by :w
history:
  # path: ~/.modal/history.db
  cache_ttl: 1m

# Playground display
ui:
  show_status_bar: true
  show_log: false      # show the live log pane (requires --debug)
  help_style: dark     # glamour style for the f1 help panel
  log_level: info      # lowest level shown in the log pane

# OpenTelemetry spans for ex commands and history calls (--debug turns this on)
tracing:
  enabled: false
  exporter: file       # "file", "otlp" or "none"
  file_path: traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0

# Feature flags
# flags:
#   dot-repeat: true
#   system-clipboard: true
#   config-reload: true
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
