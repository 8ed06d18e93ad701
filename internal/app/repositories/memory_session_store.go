package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/pkg/apperrors"
)

// MemorySessionStore keeps sessions in process memory. Sessions are lost on restart.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.WizardSession
	now      func() time.Time
}

// NewMemorySessionStore creates an empty store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[uuid.UUID]*models.WizardSession),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create implements SessionStore
func (m *MemorySessionStore) Create(_ context.Context, s *models.WizardSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; ok {
		return apperrors.NewConflictError("session already exists")
	}
	now := m.now()
	s.Version = 1
	s.CreatedAt, s.UpdatedAt = now, now
	if s.PendingUploads == nil {
		s.PendingUploads = []string{}
	}
	m.sessions[s.ID] = s.Clone()
	return nil
}

// Get implements SessionStore
func (m *MemorySessionStore) Get(_ context.Context, id uuid.UUID) (*models.WizardSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return s.Clone(), nil
}

// Update implements SessionStore
func (m *MemorySessionStore) Update(_ context.Context, s *models.WizardSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.sessions[s.ID]
	if !ok {
		return apperrors.ErrSessionNotFound
	}
	if stored.Version != s.Version {
		return apperrors.NewConflictError("the session was changed by another request")
	}

	next := s.Clone()
	next.Status = stored.Status
	next.Version = s.Version + 1
	next.UpdatedAt = m.now()
	m.sessions[s.ID] = next

	s.Version = next.Version
	s.UpdatedAt = next.UpdatedAt
	return nil
}

// TransitionStatus implements SessionStore
func (m *MemorySessionStore) TransitionStatus(_ context.Context, id uuid.UUID, from, to models.SessionStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	s.Version++
	s.UpdatedAt = m.now()
	return true, nil
}

// Delete implements SessionStore
func (m *MemorySessionStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return apperrors.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// DeleteIdleBefore implements SessionStore
func (m *MemorySessionStore) DeleteIdleBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(cutoff) && s.Status != models.SessionSubmitting {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}
