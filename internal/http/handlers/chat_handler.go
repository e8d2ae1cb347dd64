// Chat HTTP handlers.
//
// This file exposes the proxy endpoints consumed by the embedded widget:
//   - POST /api/chat    (forward a conversation window, get the reply)
//   - GET  /api/health  (liveness)
//
// Handlers are transport-thin: they validate input, call the chat service,
// and translate results into HTTP responses. User-facing failure messages
// are fixed strings; underlying causes are logged server-side only.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/webchat/go-chat-widget/internal/domain"
	"github.com/webchat/go-chat-widget/internal/http/middleware"
	"github.com/webchat/go-chat-widget/internal/services"
	"github.com/webchat/go-chat-widget/internal/upstream"
)

// Fixed user-facing messages for the chat endpoint's failure modes.
const (
	msgInvalidRequest = "Invalid request format"
	msgNotConfigured  = "OpenAI API key not configured. Please contact support."
	msgUpstreamDown   = "AI service temporarily unavailable. Please try again."
	msgGenericFailure = "Service temporarily unavailable. Please try again later."
)

// ChatService defines the chat proxy operation consumed by HTTP handlers.
// Implementations must be safe for concurrent use and honor the provided
// context.
type ChatService interface {
	// Respond forwards one sanitized conversation window upstream and
	// returns the assistant's reply.
	Respond(ctx context.Context, sessionID string, turns []domain.Turn) (string, error)
}

// Handlers groups the HTTP endpoints of the widget backend.
type Handlers struct {
	chatSvc ChatService
}

// New constructs a Handlers instance bound to the given service.
func New(chatSvc ChatService) *Handlers {
	return &Handlers{chatSvc: chatSvc}
}

//
// DTOs
//

// TurnPayload is one conversation entry in the request body. Content is a
// pointer so an absent key is distinguishable from an explicit empty string;
// only the former is a shape error.
type TurnPayload struct {
	Role    string  `json:"role" binding:"required"`
	Content *string `json:"content"`
}

// ChatRequest is the JSON payload for POST /api/chat. Messages may carry the
// widget's full local history; the service truncates to the bounded context
// window before anything reaches the provider.
type ChatRequest struct {
	Messages  []TurnPayload `json:"messages" binding:"required"`
	SessionID string        `json:"sessionId" binding:"required"`
}

// ChatResponse is the success body of POST /api/chat.
type ChatResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

//
// Handlers
//

// Chat validates the widget payload, hands it to the chat service, and
// returns the assistant's reply.
func (h *Handlers) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidRequest)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidRequest)
		return
	}
	turns := make([]domain.Turn, 0, len(req.Messages))
	for _, m := range req.Messages {
		if !domain.ValidRole(m.Role) || m.Content == nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidRequest)
			return
		}
		turns = append(turns, domain.Turn{Role: m.Role, Content: *m.Content})
	}

	reply, err := h.chatSvc.Respond(c.Request.Context(), req.SessionID, turns)
	if err != nil {
		h.failChat(c, err)
		return
	}

	ok(c, http.StatusOK, ChatResponse{Message: reply, SessionID: req.SessionID})
}

// failChat maps service errors onto the endpoint's error taxonomy. The
// original cause is logged; the response body carries only the fixed
// user-facing message.
func (h *Handlers) failChat(c *gin.Context, err error) {
	lg := middleware.LoggerFrom(c)

	switch {
	case errors.Is(err, services.ErrSessionRequired), errors.Is(err, services.ErrInvalidRole):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidRequest)
	case errors.Is(err, upstream.ErrNotConfigured):
		fail(c, http.StatusInternalServerError, ErrCodeNotConfigured, msgNotConfigured)
	case errors.Is(err, upstream.ErrUnavailable):
		middleware.CountUpstreamFailure()
		lg.Error().Err(err).Msg("upstream completion failed")
		fail(c, http.StatusInternalServerError, ErrCodeUpstream, msgUpstreamDown)
	default:
		lg.Error().Err(err).Msg("chat turn failed")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, msgGenericFailure)
	}
}

// Health reports liveness with a timestamp, mirroring what uptime checks on
// the embed host expect.
func (h *Handlers) Health(c *gin.Context) {
	ok(c, http.StatusOK, HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
