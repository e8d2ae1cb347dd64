package store

import (
	"context"
	"sync"
	"time"

	"github.com/webchat/go-chat-widget/internal/domain"
)

// MemStore is a process-lifetime, in-memory Store. Sessions and message logs
// live in maps guarded by a single mutex; identities are assigned from
// monotonically increasing counters, so insertion order is conversation order.
//
// The zero value is not usable; construct with NewMemStore.
type MemStore struct {
	mu        sync.Mutex
	sessions  map[string]*domain.ChatSession
	messages  map[string][]domain.ChatMessage
	sessionID uint
	messageID uint

	// Now is the clock used for CreatedAt stamps. Overridable in tests.
	Now func() time.Time
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		sessions: make(map[string]*domain.ChatSession),
		messages: make(map[string][]domain.ChatMessage),
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetOrCreateSession implements Store. Creation under the store mutex makes
// the get-or-create atomic with respect to concurrent requests carrying the
// same token.
func (s *MemStore) GetOrCreateSession(_ context.Context, sessionID string) (*domain.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		cp := *sess
		return &cp, nil
	}

	s.sessionID++
	sess := &domain.ChatSession{
		ID:        s.sessionID,
		SessionID: sessionID,
		CreatedAt: s.Now(),
	}
	s.sessions[sessionID] = sess
	s.messages[sessionID] = nil

	cp := *sess
	return &cp, nil
}

// AppendMessage implements Store.
func (s *MemStore) AppendMessage(_ context.Context, sessionID, role, content string) (*domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messageID++
	m := domain.ChatMessage{
		ID:        s.messageID,
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: s.Now(),
	}
	s.messages[sessionID] = append(s.messages[sessionID], m)

	cp := m
	return &cp, nil
}

// RecentMessages implements Store.
func (s *MemStore) RecentMessages(_ context.Context, sessionID string, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.messages[sessionID]
	if len(log) > limit {
		log = log[len(log)-limit:]
	}
	out := make([]domain.ChatMessage, len(log))
	copy(out, log)
	return out, nil
}
