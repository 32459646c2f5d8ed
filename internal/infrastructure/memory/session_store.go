package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/vanstock-api/internal/application/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore sesiones en memoria del proceso (REDIS_ADDR vacío). Las vencidas se descartan al leer.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]ports.Session
	now      func() time.Time
}

// NewSessionStore crea el almacén.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]ports.Session), now: time.Now}
}

func (s *SessionStore) Save(_ context.Context, sess ports.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*ports.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	if !sess.ExpiresAt.IsZero() && s.now().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return nil, ports.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) DeleteByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}
