package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTableNames(t *testing.T) {
	if got := (ChatSession{}).TableName(); got != "chat_sessions" {
		t.Fatalf("ChatSession table: got %q", got)
	}
	if got := (ChatMessage{}).TableName(); got != "chat_messages" {
		t.Fatalf("ChatMessage table: got %q", got)
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleUser, RoleAssistant} {
		if !ValidRole(role) {
			t.Fatalf("ValidRole(%q) = false, want true", role)
		}
	}
	for _, role := range []string{"", "system", "USER", "bot"} {
		if ValidRole(role) {
			t.Fatalf("ValidRole(%q) = true, want false", role)
		}
	}
}

func TestChatMessageJSONShape(t *testing.T) {
	m := ChatMessage{
		ID:        7,
		SessionID: "s1",
		Role:      RoleAssistant,
		Content:   "Hello!",
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"id", "session_id", "role", "content", "created_at"} {
		if _, ok := out[k]; !ok {
			t.Fatalf("missing %q in %s", k, b)
		}
	}
}
