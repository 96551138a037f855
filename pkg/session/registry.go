// Package session tracks live MCP connections and the per-tenant state
// bound to each one.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned for session keys with no registered entry.
// Lookups require an exact key match: there is deliberately no fallback to
// "most recent" or per-address matching, because under concurrent
// connections such fallbacks can hand one tenant's client to another
// tenant's request.
var ErrNotFound = errors.New("session not found")

// Session is the per-connection state: which tenant it serves and when it
// was established.
type Session struct {
	ID         string
	LocationID string
	StartedAt  time.Time
}

// Registry maps canonical session ids to sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	log      zerolog.Logger
}

// NewRegistry creates an empty session registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		log:      log.With().Str("component", "session").Logger(),
	}
}

// Put registers a session under its canonical id, replacing any previous
// entry with the same id.
func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	r.sessions[s.ID] = s
	count := len(r.sessions)
	r.mu.Unlock()
	r.log.Info().
		Str("session_id", s.ID).
		Str("location_id", s.LocationID).
		Int("active", count).
		Msg("Session registered")
}

// Get returns the session for an exact id match.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete removes a session. Deleting an unknown id is a no-op.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	count := len(r.sessions)
	r.mu.Unlock()
	if ok {
		r.log.Info().
			Str("session_id", id).
			Str("location_id", s.LocationID).
			Int("active", count).
			Msg("Session removed")
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
