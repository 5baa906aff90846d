package engine

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the in-process owner of live sessions, keyed by attempt id.
// It enforces the single-writer discipline: at most one Session holds the
// authoritative mutable state for a given attempt at a time.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*Session)}
}

// Get returns the live session for an attempt, if any.
func (r *Registry) Get(attemptID uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[attemptID]
	return s, ok
}

// GetOrPut registers sess under attemptID unless a session already exists,
// in which case the existing one wins. Guards against two goroutines
// rehydrating the same attempt concurrently.
func (r *Registry) GetOrPut(attemptID uuid.UUID, sess *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[attemptID]; ok {
		return existing
	}
	r.sessions[attemptID] = sess
	return sess
}

// Remove drops a finished session from the registry.
func (r *Registry) Remove(attemptID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, attemptID)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
