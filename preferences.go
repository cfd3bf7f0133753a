package organizer

import (
	"context"
	"sync"
)

// Preferences are the user's planning preferences: the preferred event
// category, how many items a day plan may hold, and the assumed duration of
// a single event.
type Preferences struct {
	Category           string `json:"category"`
	MaxItems           int    `json:"max_items"`
	EventDurationHours int    `json:"event_duration_hours"`
}

// DefaultPreferences returns the built-in defaults.
func DefaultPreferences() Preferences {
	return Preferences{Category: "any", MaxItems: 4, EventDurationHours: 2}
}

// PreferencesStore persists per-user preferences. The sqlite and postgres
// store packages provide durable implementations; MemoryPreferences backs
// tests and single-process runs.
type PreferencesStore interface {
	Get(ctx context.Context, userID string) (Preferences, error)
	Set(ctx context.Context, userID string, prefs Preferences) error
	Update(ctx context.Context, userID string, apply func(Preferences) Preferences) (Preferences, error)
}

// MemoryPreferences is an in-memory PreferencesStore.
type MemoryPreferences struct {
	mu    sync.RWMutex
	prefs map[string]Preferences
}

var _ PreferencesStore = (*MemoryPreferences)(nil)

// NewMemoryPreferences returns an empty in-memory store.
func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{prefs: make(map[string]Preferences)}
}

// Get returns the stored preferences for userID, or the defaults when the
// user has none yet.
func (s *MemoryPreferences) Get(ctx context.Context, userID string) (Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.prefs[userID]; ok {
		return p, nil
	}
	return DefaultPreferences(), nil
}

func (s *MemoryPreferences) Set(ctx context.Context, userID string, prefs Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[userID] = prefs
	return nil
}

// Update applies a read-modify-write under the store lock.
func (s *MemoryPreferences) Update(ctx context.Context, userID string, apply func(Preferences) Preferences) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.prefs[userID]
	if !ok {
		current = DefaultPreferences()
	}
	next := apply(current)
	s.prefs[userID] = next
	return next, nil
}
