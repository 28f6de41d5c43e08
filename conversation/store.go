package conversation

import (
	"sync"
	"time"
)

// Store owns one Context per session id
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Context
	maxTurns int
	now      func() time.Time
}

// NewStore creates an empty store whose contexts hold at most maxTurns turns
func NewStore(maxTurns int) *Store {
	return &Store{
		sessions: make(map[string]*Context),
		maxTurns: maxTurns,
		now:      time.Now,
	}
}

// Get returns the session's context, creating it on first use
func (s *Store) Get(sessionID string) *Context {
	s.mu.RLock()
	c, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		c.touch()
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.sessions[sessionID]; ok {
		c.touch()
		return c
	}
	c = newContext(s.maxTurns, s.now)
	s.sessions[sessionID] = c
	return c
}

// Peek returns the session's context without creating or touching it
func (s *Store) Peek(sessionID string) (*Context, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.sessions[sessionID]
	return c, ok
}

// Delete drops a session's context
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// Sweep removes sessions idle for longer than idle and returns how many were removed
func (s *Store) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, c := range s.sessions {
		if c.LastActive().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
