// Package flags provides feature flag support for optional editor behaviour.
// Flags are read-only after initialization and provide safe defaults for unknown flags.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/modal/internal/log"
)

// Flag name constants for type-safe flag access.
const (
	// FlagDotRepeat controls whether '.' replays the last change.
	FlagDotRepeat = "dot-repeat"

	// FlagSystemClipboard controls whether the + and * registers reach the
	// system clipboard. When disabled they behave like named registers.
	FlagSystemClipboard = "system-clipboard"

	// FlagConfigReload controls whether the playground watches the config
	// file and applies keymap changes without a restart.
	FlagConfigReload = "config-reload"
)

// Defaults returns the value of every known flag when config sets none.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagDotRepeat:       true,
		FlagSystemClipboard: true,
		FlagConfigReload:    true,
	}
}

// Unknown returns the sorted names in flags that Defaults does not know.
func Unknown(flags map[string]bool) []string {
	known := Defaults()
	var names []string
	for name := range flags {
		if _, ok := known[name]; !ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Registry holds feature flag state loaded from configuration.
// Flags are read-only after initialization.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map.
// If flags is nil, an empty registry is created (all flags disabled).
func New(flags map[string]bool) *Registry {
	if flags == nil {
		flags = make(map[string]bool)
	}
	r := &Registry{flags: flags}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(flags), "flags", r.All())
	return r
}

// WithDefaults creates a Registry where flags missing from overrides take
// their value from Defaults.
func WithDefaults(overrides map[string]bool) *Registry {
	merged := Defaults()
	maps.Copy(merged, overrides)
	return New(merged)
}

// Enabled returns true if the named flag is enabled.
// Returns false for unknown flags (safe default).
// Returns false when called on nil registry (nil-safe).
func (r *Registry) Enabled(name string) bool {
	if r == nil || r.flags == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name, "result", false)
		return false
	}
	return value
}

// All returns a copy of all flags (for debugging/logging).
// Returns an empty map if the registry is nil.
func (r *Registry) All() map[string]bool {
	if r == nil || r.flags == nil {
		return make(map[string]bool)
	}
	result := make(map[string]bool, len(r.flags))
	maps.Copy(result, r.flags)
	return result
}
