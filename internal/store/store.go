// Package store defines the persistence boundary for chat sessions and their
// message logs, plus the two bundled implementations: an in-memory map store
// (the default) and a GORM/SQLite store for durable deployments.
//
// The interface is intentionally narrow: get-or-create by opaque session
// token, append-only writes, and a bounded most-recent read. No update or
// delete operation is exposed; history is immutable once written.
package store

import (
	"context"

	"github.com/webchat/go-chat-widget/internal/domain"
)

// DefaultRecentLimit is the message window returned by RecentMessages when
// callers pass a non-positive limit.
const DefaultRecentLimit = 20

// Store is the persistence contract shared by all implementations.
//
// Implementations must be safe for concurrent use. Concurrent calls touching
// the same session token must not lose appends or corrupt insertion order;
// no cross-session guarantees are required.
type Store interface {
	// GetOrCreateSession returns the session for the given opaque token,
	// creating it when absent. The operation is idempotent: two successive
	// calls with the same token return the same record.
	GetOrCreateSession(ctx context.Context, sessionID string) (*domain.ChatSession, error)

	// AppendMessage appends one message to the session's log and returns the
	// stored row with its assigned identity.
	AppendMessage(ctx context.Context, sessionID, role, content string) (*domain.ChatMessage, error)

	// RecentMessages returns the most recent limit messages in insertion
	// order (oldest-first within the window). limit <= 0 means
	// DefaultRecentLimit.
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error)
}
