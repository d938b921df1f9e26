package escalation

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository for
// testing and local development.
type InMemoryRepository struct {
	mu       sync.RWMutex
	runs     map[string]*Run // session ID -> run
	attempts map[string][]Attempt
}

// NewInMemoryRepository creates a new in-memory escalation repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		runs:     make(map[string]*Run),
		attempts: make(map[string][]Attempt),
	}
}

// SaveRun upserts a run record.
func (r *InMemoryRepository) SaveRun(_ context.Context, run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *run
	r.runs[run.SessionID] = &copied
	return nil
}

// GetRun retrieves the run for a session.
func (r *InMemoryRepository) GetRun(_ context.Context, sessionID string) (*Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[sessionID]
	if !ok {
		return nil, ErrRunNotFound
	}
	copied := *run
	return &copied, nil
}

// SaveAttempt appends a delivery attempt.
func (r *InMemoryRepository) SaveAttempt(_ context.Context, attempt *Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.attempts[attempt.SessionID] = append(r.attempts[attempt.SessionID], *attempt)
	return nil
}

// ListAttempts retrieves a session's attempts in insertion order.
func (r *InMemoryRepository) ListAttempts(_ context.Context, sessionID string) ([]Attempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	attempts := make([]Attempt, len(r.attempts[sessionID]))
	copy(attempts, r.attempts[sessionID])
	return attempts, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
