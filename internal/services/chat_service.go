// Package services – ChatService
//
// This file implements ChatService, the application-level component behind
// POST /api/chat. It owns the get-or-create session step, the cost-control
// sanitization of the incoming history (bounded context window, clamped
// content), persistence of both sides of a turn, and the single upstream
// call per request.
//
// Write ordering is deliberate: the user's message is persisted before the
// upstream call so a record exists even when the provider fails afterwards.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// the session token and history size.
package services

import (
	"context"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/webchat/go-chat-widget/internal/domain"
	"github.com/webchat/go-chat-widget/internal/store"
)

const (
	// defaultMaxHistory bounds how many trailing turns are forwarded
	// upstream per request.
	defaultMaxHistory = 10

	// defaultMaxContentRunes clamps each forwarded/persisted turn's content.
	defaultMaxContentRunes = 1000
)

// Completer is the upstream provider contract consumed by ChatService.
// Exactly one attempt is made per Respond call; implementations must not
// retry internally.
type Completer interface {
	Complete(ctx context.Context, turns []domain.Turn) (string, error)
}

// ChatService coordinates session identity, history sanitization,
// persistence, and the upstream completion call.
type ChatService struct {
	// Store is the injected session/message store.
	Store store.Store
	// Upstream is the chat-completion provider client.
	Upstream Completer

	// MaxHistory caps the forwarded context window; <= 0 means 10.
	MaxHistory int
	// MaxContentRunes clamps each turn's content; <= 0 means 1000.
	MaxContentRunes int
}

// NewChatService constructs a ChatService with the default sanitization
// bounds.
func NewChatService(st store.Store, up Completer) *ChatService {
	return &ChatService{
		Store:           st,
		Upstream:        up,
		MaxHistory:      defaultMaxHistory,
		MaxContentRunes: defaultMaxContentRunes,
	}
}

// Respond handles one widget turn: it resolves the session, sanitizes the
// submitted history, persists the trailing user message, calls the provider
// once, persists the reply, and returns it.
//
// Side effects on the store: two writes on success (user then assistant),
// zero writes when sanitization or session resolution fails, one write when
// the upstream call fails after the user turn was recorded.
func (s *ChatService) Respond(ctx context.Context, sessionID string, turns []domain.Turn) (string, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "Respond",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.Int("history.len", len(turns)),
		),
	)
	defer span.End()

	if sessionID == "" {
		return "", ErrSessionRequired
	}
	for _, t := range turns {
		if !domain.ValidRole(t.Role) {
			return "", ErrInvalidRole
		}
	}

	// Idempotent get-or-create of the session row.
	if _, err := s.Store.GetOrCreateSession(ctx, sessionID); err != nil {
		return "", err
	}

	window := s.sanitize(turns)

	// Persist the trailing user message before calling upstream so the
	// record survives a provider failure.
	if n := len(window); n > 0 && window[n-1].Role == domain.RoleUser {
		if _, err := s.Store.AppendMessage(ctx, sessionID, domain.RoleUser, window[n-1].Content); err != nil {
			return "", err
		}
	}

	reply, err := s.Upstream.Complete(ctx, window)
	if err != nil {
		return "", err
	}

	if _, err := s.Store.AppendMessage(ctx, sessionID, domain.RoleAssistant, reply); err != nil {
		return "", err
	}
	return reply, nil
}

// History returns the most recent messages of a session, oldest-first.
// limit <= 0 falls back to the store default window.
func (s *ChatService) History(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "History",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	if sessionID == "" {
		return nil, ErrSessionRequired
	}
	return s.Store.RecentMessages(ctx, sessionID, limit)
}

// sanitize truncates the history to the trailing MaxHistory turns and clamps
// each content to MaxContentRunes. Both bounds are cost controls: they keep
// hostile or oversized payloads from inflating the upstream spend.
func (s *ChatService) sanitize(turns []domain.Turn) []domain.Turn {
	maxHist := s.MaxHistory
	if maxHist <= 0 {
		maxHist = defaultMaxHistory
	}
	maxRunes := s.MaxContentRunes
	if maxRunes <= 0 {
		maxRunes = defaultMaxContentRunes
	}

	if len(turns) > maxHist {
		turns = turns[len(turns)-maxHist:]
	}
	out := make([]domain.Turn, len(turns))
	for i, t := range turns {
		content := t.Content
		if utf8.RuneCountInString(content) > maxRunes {
			content = string([]rune(content)[:maxRunes])
		}
		out[i] = domain.Turn{Role: t.Role, Content: content}
	}
	return out
}
