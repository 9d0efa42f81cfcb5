package session

import (
	"context"
	"sync"
	"time"

	domain "gymfront/internal/domain/session"
)

// MemoryStore is an in-process session store. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]domain.Session),
		now:      time.Now,
	}
}

// Create stores s and returns its token.
// PRE: s.ExpiresAt is set
// POST: Session is stored under a fresh token
func (m *MemoryStore) Create(_ context.Context, s domain.Session) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = s
	return token, nil
}

// Get retrieves a live session by token.
// POST: Expired sessions are removed and reported as ErrNotFound
func (m *MemoryStore) Get(_ context.Context, token string) (domain.Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	if s.Expired(m.now()) {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return domain.Session{}, domain.ErrNotFound
	}
	return s, nil
}

// Delete removes a session. Deleting an unknown token is not an error.
func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// Len reports how many sessions are held, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
