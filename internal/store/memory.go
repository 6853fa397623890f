// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Sessions are memory-resident and ephemeral: nothing here survives
// a process restart.
//
// Characteristics:
//   - Stores *game.Session objects keyed by session ID in a map.
//   - Concurrency-safe via a Mutex (Get also updates last-seen time).
//   - ErrNotFound is returned for missing IDs.
//   - Save and Get refresh a session's last-seen time; Prune drops sessions
//     idle for longer than a given duration.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shash-786/wordle-engine/internal/game"
)

// ErrNotFound is returned by Get and Delete for unknown session IDs.
var ErrNotFound = errors.New("store: session not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or replaces a session under s.ID().
	Save(ctx context.Context, s *game.Session) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*game.Session, error)

	// Delete drops a session.
	Delete(ctx context.Context, id string) error

	// Len reports how many sessions are held.
	Len() int

	// Prune drops sessions not saved or read within idle and reports how many
	// were removed.
	Prune(ctx context.Context, idle time.Duration) (int, error)
}

type entry struct {
	sess     *game.Session
	lastSeen time.Time
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.Mutex        // guards sessions map
	sessions map[string]*entry // keyed by Session.ID()
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*entry), now: time.Now}
}

// Save adds or updates the session in the map.
func (m *memory) Save(ctx context.Context, s *game.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = &entry{sess: s, lastSeen: m.now()}
	return nil
}

// Get looks up a session by ID.
func (m *memory) Get(ctx context.Context, id string) (*game.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok {
		e.lastSeen = m.now()
		return e.sess, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Prune removes sessions whose last Save or Get is older than idle.
func (m *memory) Prune(ctx context.Context, idle time.Duration) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-idle)
	n := 0
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}
