// Package widget implements the client-side core of the embeddable chatbot
// as a plain Go library: session identity, the append-only message store,
// the inline markdown renderer, and the open/idle/pending controller state
// machine. The browser embed script implements the same behavior in
// JavaScript; this package backs the terminal client and the tests that pin
// the widget's semantics.
package widget

import (
	"strings"

	"github.com/google/uuid"
)

// Greeting is the synthetic assistant message every conversation starts with.
const Greeting = "👋 Hi! I'm your AI assistant. How can I help you today?"

// greetingID marks the greeting so it is distinguishable from real turns.
const greetingID = "welcome"

// Message is one entry of the widget's local conversation. Immutable once
// created; insertion order is conversation order.
type Message struct {
	ID      string
	Role    string
	Content string
}

// NewSessionID generates the opaque per-page-load session token.
func NewSessionID() string {
	return "session_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// MessageStore is the ordered, append-only in-memory list of exchanged
// messages for one open widget instance. A new store always starts with
// exactly the greeting.
//
// The store is not safe for concurrent use; the widget's event loop owns it.
type MessageStore struct {
	msgs []Message
}

// NewMessageStore returns a store seeded with the greeting message.
func NewMessageStore() *MessageStore {
	return &MessageStore{
		msgs: []Message{{ID: greetingID, Role: "assistant", Content: Greeting}},
	}
}

// Append adds a message and returns it. Order is never revisited.
func (s *MessageStore) Append(role, content string) Message {
	m := Message{ID: uuid.NewString(), Role: role, Content: content}
	s.msgs = append(s.msgs, m)
	return m
}

// All returns the conversation in insertion order. The slice is a copy;
// callers cannot mutate history through it.
func (s *MessageStore) All() []Message {
	out := make([]Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// Last returns the most recent message. The ok result is false only for a
// zero-value store; stores built with NewMessageStore are never empty.
func (s *MessageStore) Last() (Message, bool) {
	if len(s.msgs) == 0 {
		return Message{}, false
	}
	return s.msgs[len(s.msgs)-1], true
}

// Len reports the number of messages including the greeting.
func (s *MessageStore) Len() int { return len(s.msgs) }
