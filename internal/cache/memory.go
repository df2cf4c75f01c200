package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// Memory keeps sessions in process memory, for development and tests
type Memory struct {
	mu   sync.Mutex
	data map[string]memoryEntry
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

func (m *Memory) Close() error {
	return nil
}

func (m *Memory) Create(ctx context.Context, s Session, ttl time.Duration) (string, error) {
	token := newToken()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[tokenKey(token)] = memoryEntry{session: s, expiresAt: m.now().Add(ttl)}
	return token, nil
}

func (m *Memory) Lookup(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	key := tokenKey(token)

	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[key]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.data, key)
		return nil, ErrSessionNotFound
	}
	s := e.session
	return &s, nil
}

func (m *Memory) Revoke(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, tokenKey(token))
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.data)
	return nil
}
