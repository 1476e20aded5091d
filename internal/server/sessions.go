package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/nextstep/internal/agent"
)

// session serializes the turns of one conversation.
type session struct {
	mu   sync.Mutex
	conv agent.Conversation

	lastSeen time.Time // guarded by sessionStore.mu
}

// sessionStore holds open conversations. Sessions idle longer than ttl are
// dropped, and creating a session beyond max evicts the least recently used one.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	max      int
	ttl      time.Duration
	now      func() time.Time
}

func newSessionStore(max int, ttl time.Duration) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*session),
		max:      max,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *sessionStore) create() (string, *session) {
	id := uuid.New().String()
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	if s.max > 0 && len(s.sessions) >= s.max {
		s.evictOldestLocked()
	}
	sess := &session{lastSeen: now}
	s.sessions[id] = sess
	return id, sess
}

func (s *sessionStore) get(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(sess, now) {
		delete(s.sessions, id)
		return nil, false
	}
	sess.lastSeen = now
	return sess, true
}

func (s *sessionStore) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.now())
	return len(s.sessions)
}

func (s *sessionStore) expired(sess *session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.lastSeen) > s.ttl
}

func (s *sessionStore) pruneLocked(now time.Time) {
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
		}
	}
}

func (s *sessionStore) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, sess := range s.sessions {
		if oldestID == "" || sess.lastSeen.Before(oldest) {
			oldestID, oldest = id, sess.lastSeen
		}
	}
	delete(s.sessions, oldestID)
}
