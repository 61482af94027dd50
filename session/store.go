package session

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNoSession is returned by Load when no complete Session is stored.
	ErrNoSession = errors.New("no session")
	// ErrStoreUnavailable wraps backend failures of persistent stores.
	ErrStoreUnavailable = errors.New("session store unavailable")
)

// Default key names, matching the browser client's local storage keys.
const (
	DefaultTokenKey = "access_token"
	DefaultUserKey  = "user"
)

// Store persists the single Session of one client.
//
// Implementations must be safe for concurrent use and must never expose a
// partial Session: Save writes both halves, Clear removes both, and Load
// purges any half-written pair it finds.
type Store interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the Session in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	sess *Session
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored Session or ErrNoSession.
func (m *MemoryStore) Load(context.Context) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil {
		return nil, ErrNoSession
	}
	return m.sess.Clone(), nil
}

// Save replaces the stored Session.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.sess = s.Clone()
	m.mu.Unlock()
	return nil
}

// Clear drops the stored Session. Clearing an empty store is a no-op.
func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	m.sess = nil
	m.mu.Unlock()
	return nil
}
