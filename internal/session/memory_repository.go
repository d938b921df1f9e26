package session

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository for
// testing and local development.
type InMemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*Session // session ID -> session
}

// NewInMemoryRepository creates a new in-memory session repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{sessions: make(map[string]*Session)}
}

// Save upserts a session snapshot.
func (r *InMemoryRepository) Save(_ context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *s
	r.sessions[s.ID] = &copied
	return nil
}

// Get retrieves a session by user and session ID.
func (r *InMemoryRepository) Get(_ context.Context, userID, sessionID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok || s.UserID != userID {
		return nil, ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

// History lists a user's sessions, most recent first.
func (r *InMemoryRepository) History(_ context.Context, userID string, limit int) ([]Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sessions []Session
	for _, s := range r.sessions {
		if s.UserID == userID {
			sessions = append(sessions, *s)
		}
	}
	sort.Slice(sessions, func(a, b int) bool {
		return sessions[a].StartedAt.After(sessions[b].StartedAt)
	})
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
