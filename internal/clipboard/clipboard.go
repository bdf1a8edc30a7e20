// Package clipboard provides the providers behind the + and * registers.
package clipboard

import (
	"fmt"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/zjrosen/modal/internal/log"
	"github.com/zjrosen/modal/internal/vim"
)

// System reads and writes the operating system clipboard.
type System struct{}

var _ vim.Clipboard = System{}

func (System) Get() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return text, nil
}

func (System) Set(content string) error {
	if err := clipboard.WriteAll(content); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// Memory is a process-local clipboard, used when no system clipboard
// utility is available or the system-clipboard flag is off.
type Memory struct {
	mu   sync.Mutex
	text string
}

var _ vim.Clipboard = (*Memory)(nil)

func (m *Memory) Get() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

func (m *Memory) Set(content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = content
	return nil
}

// New returns the system clipboard when useSystem is set and the platform
// supports it, otherwise an in-memory one.
func New(useSystem bool) vim.Clipboard {
	if useSystem && !clipboard.Unsupported {
		return System{}
	}
	if useSystem {
		log.Warn(log.CatEngine, "System clipboard unavailable, using in-memory registers")
	}
	return &Memory{}
}
