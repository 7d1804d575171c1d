package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marloe/showbill/internal/domain"
)

const janitorInterval = time.Minute

// MemoryStore keeps sessions in process memory. Sessions do not survive a
// restart and are not shared across processes.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	stop     chan struct{}
	once     sync.Once
}

// NewMemoryStore constructs an in-memory store. Sessions older than ttl are
// swept by a background janitor; ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	if ttl > 0 {
		go s.janitor()
	}
	return s
}

var _ Store = (*MemoryStore)(nil)

// Create mints a fresh UUID token bound to the user.
func (s *MemoryStore) Create(_ context.Context, user domain.User) (string, error) {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = Session{Token: token, User: user, CreatedAt: time.Now().UTC()}
	s.mu.Unlock()
	return token, nil
}

// Get returns the live session for token.
func (s *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok || s.expired(sess, time.Now().UTC()) {
		return nil, ErrInvalidToken
	}
	return &sess, nil
}

// Destroy removes token. Idempotent.
func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// Close stops the janitor.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *MemoryStore) expired(sess Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.CreatedAt) > s.ttl
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.sweep(now.UTC())
		}
	}
}

func (s *MemoryStore) sweep(now time.Time) {
	s.mu.Lock()
	for token, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, token)
		}
	}
	s.mu.Unlock()
}
