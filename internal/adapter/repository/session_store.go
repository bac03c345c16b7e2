package repository

import (
	"fmt"
	"sync"
	"time"

	"trail-orchestrator/internal/domain"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// SessionStore keeps live conversation sessions in an expirable LRU.
// Idle sessions fall out after the TTL, and the size cap bounds memory
// under session-id churn. A ttl of zero disables expiry.
type SessionStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, *domain.Session]
}

func NewSessionStore(maxSessions int, ttl time.Duration) (*SessionStore, error) {
	if maxSessions <= 0 {
		return nil, fmt.Errorf("maxSessions must be positive, got %d", maxSessions)
	}
	return &SessionStore{
		cache: expirable.NewLRU[string, *domain.Session](maxSessions, nil, ttl),
	}, nil
}

// GetOrCreate returns the session for id, creating it on first use. The
// lookup and insert are atomic so concurrent first requests for the same
// id share one session.
func (s *SessionStore) GetOrCreate(id string) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.cache.Get(id); ok {
		return session
	}
	session := domain.NewSession(id)
	s.cache.Add(id, session)
	return session
}

func (s *SessionStore) Get(id string) (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(id)
}

func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Remove(id)
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

var _ domain.SessionStore = (*SessionStore)(nil)
