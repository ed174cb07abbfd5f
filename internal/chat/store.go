package chat

import (
	"sync"

	"github.com/google/uuid"
)

// Store keeps the live sessions of one process, keyed by ID.
type Store struct {
	agg *Aggregator

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore returns an empty store whose sessions stream through agg.
func NewStore(agg *Aggregator) *Store {
	return &Store{agg: agg, sessions: make(map[string]*Session)}
}

// Create starts a new session with a random ID.
func (st *Store) Create() *Session {
	s := NewSession(uuid.NewString(), st.agg)
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get looks a session up by ID.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete drops a session. It reports whether the session existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
