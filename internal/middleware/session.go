package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionTTL bounds an operator login; the cookie MaxAge uses the same value.
const SessionTTL = 7 * 24 * time.Hour

// Session is the server side half of an operator login.
type Session struct {
	CreatedAt time.Time
	ExpiresAt time.Time
}

func newSession(now time.Time) Session {
	return Session{CreatedAt: now, ExpiresAt: now.Add(SessionTTL)}
}

// Expired reports whether the session is no longer valid at t.
func (s Session) Expired(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// SessionStore keeps operator sessions keyed by an opaque id.
type SessionStore interface {
	Create(ctx context.Context) (string, error)
	Get(ctx context.Context, id string) (Session, bool)
	Delete(ctx context.Context, id string)
}

// MemorySessionStore holds sessions in process. They are lost on restart
// and not shared between instances; use RedisSessionStore for that.
type MemorySessionStore struct {
	mu  sync.Mutex
	m   map[string]Session
	now func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{m: make(map[string]Session), now: time.Now}
}

// Create stores a fresh session and drops any that have expired.
func (s *MemorySessionStore) Create(_ context.Context) (string, error) {
	id := uuid.NewString()
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, sess := range s.m {
		if sess.Expired(now) {
			delete(s.m, k)
		}
	}
	s.m[id] = newSession(now)
	return id, nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.m[id]
	if !ok {
		return Session{}, false
	}
	if sess.Expired(s.now()) {
		delete(s.m, id)
		return Session{}, false
	}
	return sess, true
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) {
	s.mu.Lock()
	delete(s.m, id)
	s.mu.Unlock()
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

var sessions SessionStore = NewMemorySessionStore()

// SetSessionStore replaces the store behind CreateSession, GetSession and
// DeleteSession. Call it before the server starts handling requests.
func SetSessionStore(s SessionStore) {
	sessions = s
}

func CreateSession(ctx context.Context) (string, error) {
	return sessions.Create(ctx)
}

// GetSession returns false for unknown or expired ids.
func GetSession(ctx context.Context, id string) (Session, bool) {
	if id == "" {
		return Session{}, false
	}
	return sessions.Get(ctx, id)
}

func DeleteSession(ctx context.Context, id string) {
	sessions.Delete(ctx, id)
}
