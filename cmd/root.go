package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/modal/internal/config"
	"github.com/zjrosen/modal/internal/flags"
	"github.com/zjrosen/modal/internal/history"
	"github.com/zjrosen/modal/internal/log"
	"github.com/zjrosen/modal/internal/playground"
	"github.com/zjrosen/modal/internal/tracing"
	"github.com/zjrosen/modal/internal/watcher"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in the buffer.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

// defaultConfigPath is where a commented default config is written when
// no config file exists anywhere in the lookup order.
const defaultConfigPath = ".modal/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:   "modal [file]",
	Short: "A vim-style modal editing playground",
	Long: `A terminal playground for a vim-style modal editing engine.

Opens the given file, or an empty scratch buffer, with Normal, Insert,
Visual and command-line modes. :w saves a snapshot to the history
database (and writes the file when one was given), :q quits.`,
	Version: version,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runPlayground,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/modal/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log and trace file (also enabled by MODAL_DEBUG)")
	rootCmd.Flags().String("history", "",
		"path to the history database")
	rootCmd.Flags().Bool("no-history", false,
		"do not save snapshots on :w")

	// Bind flags to viper
	_ = viper.BindPFlag("history.path", rootCmd.Flags().Lookup("history"))
}

func setDefaults(defaults config.Config) {
	viper.SetDefault("vim.start_mode", defaults.Vim.StartMode)
	viper.SetDefault("vim.indent_unit", defaults.Vim.IndentUnit)
	viper.SetDefault("vim.clipboard", defaults.Vim.Clipboard)
	viper.SetDefault("history.path", defaults.History.Path)
	viper.SetDefault("history.cache_ttl", defaults.History.CacheTTL)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)
	viper.SetDefault("ui.show_log", defaults.UI.ShowLog)
	viper.SetDefault("ui.help_style", defaults.UI.HelpStyle)
	viper.SetDefault("ui.log_level", defaults.UI.LogLevel)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
}

func initConfig() {
	setDefaults(config.Defaults())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .modal/config.yaml (current directory)
		// 2. ~/.config/modal/config.yaml (user config)
		if _, err := os.Stat(defaultConfigPath); err == nil {
			viper.SetConfigFile(defaultConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "modal"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .modal/config.yaml
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if writeErr := config.WriteDefaultConfig(defaultConfigPath); writeErr == nil {
				viper.SetConfigFile(defaultConfigPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	loaded, err := loadConfig()
	if err != nil {
		log.ErrorErr(log.CatConfig, "Failed to load config", err, "path", viper.ConfigFileUsed())
	}
	cfg = loaded
}

// loadConfig decodes the viper state into a Config. The keymap is read
// again from the file because viper lowercases map keys.
func loadConfig() (config.Config, error) {
	var c config.Config
	if err := viper.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decoding config: %w", err)
	}
	if path := viper.ConfigFileUsed(); path != "" {
		keymap, err := config.ReadKeymap(path)
		if err != nil {
			return c, err
		}
		c.Vim.Keymap = keymap
	}
	return c, nil
}

// reloadConfig re-reads the config file for the playground's hot reload.
func reloadConfig() (config.Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		return config.Config{}, fmt.Errorf("reading config: %w", err)
	}
	c, err := loadConfig()
	if err != nil {
		return c, err
	}
	if err := config.Validate(c); err != nil {
		return c, err
	}
	return c, nil
}

// configPath is the file that keymap edits are written to.
func configPath() string {
	if path := viper.ConfigFileUsed(); path != "" {
		return path
	}
	return defaultConfigPath
}

func debugEnabled() bool {
	return debugFlag || os.Getenv("MODAL_DEBUG") != ""
}

// initLogging enables the debug log when --debug or MODAL_DEBUG is set.
// The returned cleanup is always safe to call.
func initLogging(prefix string) (func(), error) {
	if !debugEnabled() {
		return func() {}, nil
	}
	logPath := os.Getenv("MODAL_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}
	cleanup, err := log.InitWithTeaLog(logPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatConfig, "Modal starting", "version", version, "logPath", logPath, "config", viper.ConfigFileUsed())
	return cleanup, nil
}

// traceConfig turns tracing on in debug mode, writing spans to
// MODAL_TRACE or the configured file. An explicitly enabled config is
// left as is.
func traceConfig(c tracing.Config, debug bool) tracing.Config {
	if !debug || c.Enabled {
		return c
	}
	c.Enabled = true
	c.Exporter = "file"
	if path := os.Getenv("MODAL_TRACE"); path != "" {
		c.FilePath = path
	}
	return c
}

// initTracing starts the tracer provider. The returned cleanup flushes
// pending spans and is always safe to call.
func initTracing() (trace.Tracer, func(), error) {
	tc := traceConfig(cfg.Tracing, debugEnabled())
	provider, err := tracing.NewProvider(tc)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing tracing: %w", err)
	}
	if provider.Enabled() {
		log.Info(log.CatConfig, "Tracing enabled", "exporter", tc.Exporter, "path", tc.FilePath)
	}
	return provider.Tracer(), func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			log.ErrorErr(log.CatConfig, "Tracing shutdown failed", err)
		}
	}, nil
}

// readBuffer loads the file to edit. A missing file starts empty and is
// created on the first :w.
func readBuffer(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is the user's file argument
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

func openHistory(cmd *cobra.Command, tracer trace.Tracer) (*history.Store, error) {
	if noHistory, _ := cmd.Flags().GetBool("no-history"); noHistory {
		return nil, nil
	}
	path := cfg.History.Path
	if path == "" {
		path = config.DefaultHistoryPath()
	}
	store, err := history.Open(path,
		history.WithCacheTTL(cfg.History.CacheTTL),
		history.WithTracer(tracer),
	)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	return store, nil
}

// startWatcher watches the config file when hot reload is enabled. It
// returns a nil channel when there is nothing to watch.
func startWatcher(reg *flags.Registry) (<-chan struct{}, func()) {
	path := viper.ConfigFileUsed()
	if path == "" || !reg.Enabled(flags.FlagConfigReload) {
		return nil, func() {}
	}
	w, err := watcher.New(watcher.DefaultConfig(path))
	if err != nil {
		log.ErrorErr(log.CatWatcher, "Config watcher unavailable", err)
		return nil, func() {}
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		log.ErrorErr(log.CatWatcher, "Config watcher unavailable", err)
		return nil, func() {}
	}
	return changes, func() { _ = w.Stop() }
}

func runPlayground(cmd *cobra.Command, args []string) error {
	cleanup, err := initLogging("modal")
	if err != nil {
		return err
	}
	defer cleanup()

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	reg := flags.WithDefaults(cfg.Flags)

	tracer, stopTracing, err := initTracing()
	if err != nil {
		return err
	}
	defer stopTracing()

	opts := playground.Options{
		Config:     cfg,
		Flags:      reg,
		LoadConfig: reloadConfig,
		Tracer:     tracer,
	}
	if len(args) == 1 {
		content, err := readBuffer(args[0])
		if err != nil {
			return err
		}
		opts.Content = content
		opts.FilePath = args[0]
		opts.Name = filepath.Base(args[0])
	}

	store, err := openHistory(cmd, tracer)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() { _ = store.Close() }()
		opts.Store = store
	}

	changes, stopWatcher := startWatcher(reg)
	defer stopWatcher()
	opts.ConfigChanges = changes

	p := tea.NewProgram(playground.New(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
