package features

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Flag represents a feature flag with metadata
type Flag struct {
	Name        string    `json:"name"`
	Enabled     bool      `json:"enabled"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Tags        []string  `json:"tags,omitempty"`
}

// FlagManager manages feature flags with thread-safe operations
type FlagManager struct {
	flags map[string]*Flag
	mu    sync.RWMutex
}

// NewFlagManager creates a new feature flag manager
func NewFlagManager() *FlagManager {
	return &FlagManager{
		flags: make(map[string]*Flag),
	}
}

// Flag name constants for type safety
const (
	// Core behavior
	FlagImmediateReplay    = "immediate_replay"
	FlagNotificationReplay = "notification_replay"
	FlagEntityCleanup      = "entity_cleanup"

	// Control API surface
	FlagStatusFeed = "status_feed"

	// Observability
	FlagDistributedTracing = "distributed_tracing"
)

// FlagDefinition contains metadata about a flag
type FlagDefinition struct {
	Name         string
	Description  string
	DefaultValue bool
	Tags         []string
}

// DefaultFlags defines all available feature flags with their defaults
var DefaultFlags = []FlagDefinition{
	{FlagImmediateReplay, "Attempt online submissions against the API before queueing", true, []string{"core", "sync"}},
	{FlagNotificationReplay, "Replay queued notifications after reconnecting", true, []string{"core", "notifications"}},
	{FlagEntityCleanup, "Periodically purge stale cached directory entities", true, []string{"core", "storage"}},
	{FlagStatusFeed, "Expose the websocket status feed on the control API", true, []string{"api"}},
	{FlagDistributedTracing, "Enable OpenTelemetry distributed tracing", true, []string{"observability"}},
}

// InitializeDefaults sets up all default flags
func (fm *FlagManager) InitializeDefaults() {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	now := time.Now()
	for _, def := range DefaultFlags {
		if _, exists := fm.flags[def.Name]; !exists {
			fm.flags[def.Name] = &Flag{
				Name:        def.Name,
				Enabled:     def.DefaultValue,
				Description: def.Description,
				CreatedAt:   now,
				UpdatedAt:   now,
				Tags:        def.Tags,
			}
		}
	}
}

// IsEnabled checks if a feature flag is enabled. Unknown flags are off.
func (fm *FlagManager) IsEnabled(flagName string) bool {
	fm.mu.RLock()
	defer fm.mu.RUnlock()

	flag, exists := fm.flags[flagName]
	if !exists {
		return false
	}
	return flag.Enabled
}

// Enable enables a feature flag
func (fm *FlagManager) Enable(flagName string) error {
	return fm.setEnabled(flagName, true)
}

// Disable disables a feature flag
func (fm *FlagManager) Disable(flagName string) error {
	return fm.setEnabled(flagName, false)
}

func (fm *FlagManager) setEnabled(flagName string, enabled bool) error {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	flag, exists := fm.flags[flagName]
	if !exists {
		return ErrFlagNotFound{Name: flagName}
	}

	flag.Enabled = enabled
	flag.UpdatedAt = time.Now()
	return nil
}

// GetFlag returns a copy of a flag
func (fm *FlagManager) GetFlag(flagName string) (*Flag, error) {
	fm.mu.RLock()
	defer fm.mu.RUnlock()

	flag, exists := fm.flags[flagName]
	if !exists {
		return nil, ErrFlagNotFound{Name: flagName}
	}

	copied := *flag
	return &copied, nil
}

// ListFlags returns all flags sorted by name
func (fm *FlagManager) ListFlags() []*Flag {
	fm.mu.RLock()
	defer fm.mu.RUnlock()

	flags := make([]*Flag, 0, len(fm.flags))
	for _, flag := range fm.flags {
		copied := *flag
		flags = append(flags, &copied)
	}

	sort.Slice(flags, func(i, j int) bool {
		return flags[i].Name < flags[j].Name
	})
	return flags
}

// ExportJSON serializes all flags
func (fm *FlagManager) ExportJSON() ([]byte, error) {
	return json.Marshal(fm.ListFlags())
}

var globalFlagManager = NewFlagManager()

// Initialize sets up the global manager with defaults and environment
// overrides.
func Initialize() {
	globalFlagManager.InitializeDefaults()
	globalFlagManager.LoadFromEnvironment()
}

// IsEnabled checks a flag on the global manager
func IsEnabled(flagName string) bool {
	return globalFlagManager.IsEnabled(flagName)
}

// Enable enables a flag on the global manager
func Enable(flagName string) error {
	return globalFlagManager.Enable(flagName)
}

// Disable disables a flag on the global manager
func Disable(flagName string) error {
	return globalFlagManager.Disable(flagName)
}

// GetGlobalManager returns the global flag manager
func GetGlobalManager() *FlagManager {
	return globalFlagManager
}

// ErrFlagNotFound is returned for operations on unknown flags
type ErrFlagNotFound struct {
	Name string
}

func (e ErrFlagNotFound) Error() string {
	return fmt.Sprintf("feature flag not found: %s", e.Name)
}
