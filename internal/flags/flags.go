// Package flags gates optional editor behavior behind named switches read
// from the flags section of the config file. Flags are read-only after
// initialization and unknown flags read as disabled.
package flags

import (
	"maps"

	"github.com/zjrosen/csvedit/internal/log"
)

// Flag name constants for type-safe flag access.
const (
	// FlagSessionRestore remembers the cursor per file in the state database
	// and restores it on open. When disabled the database is never opened.
	FlagSessionRestore = "session-restore"

	// FlagSaveDiffSummary adds the added/removed line counts to the save toast.
	FlagSaveDiffSummary = "save-diff-summary"
)

// Defaults returns the flags enabled out of the box.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagSessionRestore:  true,
		FlagSaveDiffSummary: true,
	}
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map. The map is copied.
// If flags is nil, an empty registry is created (all flags disabled).
func New(flags map[string]bool) *Registry {
	r := &Registry{flags: make(map[string]bool, len(flags))}
	maps.Copy(r.flags, flags)
	log.Debug(log.CatConfig, "feature flags initialized", "count", len(r.flags), "flags", r.All())
	return r
}

// Enabled reports whether the named flag is on. Unknown flags and a nil
// registry report false.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "unknown flag accessed", "flag", name)
		return false
	}
	return value
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	result := make(map[string]bool)
	if r != nil {
		maps.Copy(result, r.flags)
	}
	return result
}
