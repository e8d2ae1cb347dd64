package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/webchat/go-chat-widget/internal/domain"
	"github.com/webchat/go-chat-widget/internal/repo"
)

// GormStore adapts the repo package to the Store interface, giving the proxy
// a durable SQLite-backed session/message log without touching request
// handling. Selected with STORE_DRIVER=sqlite.
type GormStore struct {
	DB *gorm.DB
}

// NewGormStore wraps an opened GORM handle. The schema must already be
// migrated (see repo.AutoMigrate).
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// GetOrCreateSession implements Store. The unique index on the session token
// makes racing creates safe: the loser of the race re-reads the winner's row.
func (s *GormStore) GetOrCreateSession(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	sess, err := repo.GetSession(ctx, s.DB, sessionID)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	sess, err = repo.CreateSession(ctx, s.DB, sessionID)
	if err == nil {
		return sess, nil
	}
	// Lost a create race; the row exists now.
	if existing, gerr := repo.GetSession(ctx, s.DB, sessionID); gerr == nil {
		return existing, nil
	}
	return nil, err
}

// AppendMessage implements Store.
func (s *GormStore) AppendMessage(ctx context.Context, sessionID, role, content string) (*domain.ChatMessage, error) {
	return repo.CreateMessage(ctx, s.DB, sessionID, role, content)
}

// RecentMessages implements Store.
func (s *GormStore) RecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return repo.RecentMessages(ctx, s.DB, sessionID, limit)
}
