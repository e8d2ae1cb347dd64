// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// ChatSession and ChatMessage models.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a session is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/webchat/go-chat-widget/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the store layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateSession inserts a new ChatSession row keyed by the client token.
// CreatedAt is set to UTC.
func CreateSession(ctx context.Context, db *gorm.DB, sessionID string) (*domain.ChatSession, error) {
	s := &domain.ChatSession{
		SessionID: sessionID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetSession fetches a session by its opaque client token, or ErrNotFound.
func GetSession(ctx context.Context, db *gorm.DB, sessionID string) (*domain.ChatSession, error) {
	var s domain.ChatSession
	if err := db.WithContext(ctx).Where("session_id = ?", sessionID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateMessage appends a message row to a session's log.
func CreateMessage(ctx context.Context, db *gorm.DB, sessionID, role, content string) (*domain.ChatMessage, error) {
	m := &domain.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// RecentMessages returns the most recent limit messages of a session in
// insertion order (oldest-first within the window). A limit <= 0 returns
// the full log.
func RecentMessages(ctx context.Context, db *gorm.DB, sessionID string, limit int) ([]domain.ChatMessage, error) {
	q := db.WithContext(ctx).Where("session_id = ?", sessionID)

	if limit > 0 {
		// Fetch the newest rows first, then flip into insertion order.
		var tail []domain.ChatMessage
		if err := q.Order("id DESC").Limit(limit).Find(&tail).Error; err != nil {
			return nil, err
		}
		for i, j := 0, len(tail)-1; i < j; i, j = i+1, j-1 {
			tail[i], tail[j] = tail[j], tail[i]
		}
		return tail, nil
	}

	var out []domain.ChatMessage
	err := q.Order("id ASC").Find(&out).Error
	return out, err
}

// CountMessages uses a raw COUNT so a missing table surfaces as an error.
func CountMessages(ctx context.Context, db *gorm.DB, sessionID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw("SELECT COUNT(*) FROM chat_messages WHERE session_id = ?", sessionID).Scan(&total).Error
	return total, err
}
