// Package domain defines the persistence models for chat sessions and their
// messages. These types are mapped with GORM and form the core data layer of
// the widget backend.
package domain

import "time"

// Roles accepted on the wire and in storage.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ValidRole reports whether role is one of the two accepted values.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}

// ChatSession represents one widget instance's conversation identity. The
// client generates an opaque SessionID once per page load; the backend
// creates the row lazily on the first message carrying that token.
//
// Sessions are never updated or deleted after creation.
type ChatSession struct {
	ID        uint      `json:"id"         gorm:"primaryKey;autoIncrement"`
	SessionID string    `json:"session_id" gorm:"type:varchar(64);not null;uniqueIndex:ux_sessions_token"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for ChatSession.
func (ChatSession) TableName() string { return "chat_sessions" }

// ChatMessage is a single persisted utterance within a session. The log is
// strictly append-only: rows are never updated or deleted once written.
//
// Fields:
//   - ID: storage-assigned integer primary key.
//   - SessionID: the owning session's opaque client token (indexed).
//   - Role: "user" or "assistant" (enforced by DB constraint).
//   - Content: message text, clamped by the service layer before writes.
//   - CreatedAt: insertion timestamp; insertion order is conversation order.
type ChatMessage struct {
	ID        uint      `json:"id"         gorm:"primaryKey;autoIncrement"`
	SessionID string    `json:"session_id" gorm:"type:varchar(64);not null;index:idx_session_msgs,priority:1"`
	Role      string    `json:"role"       gorm:"type:varchar(16);not null;check:role IN ('user','assistant')"`
	Content   string    `json:"content"    gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_session_msgs,priority:2"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "chat_messages" }

// Turn is the wire-level shape of one conversation entry as submitted by the
// widget. It carries no identity; the proxy assigns persistence identity when
// a turn is written.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
