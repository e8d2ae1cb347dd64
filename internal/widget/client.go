package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultClientTimeout = 30 * time.Second

type wireTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages  []wireTurn `json:"messages"`
	SessionID string     `json:"sessionId"`
}

type chatResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// HTTPSender posts conversation snapshots to a chat proxy endpoint. It is
// the Sender used outside the browser, for example by the terminal client.
type HTTPSender struct {
	// Endpoint is the absolute URL of the chat endpoint, for example
	// "http://localhost:8080/api/chat".
	Endpoint string
	// HTTP is the client used for requests. Defaults to a 30s-timeout
	// client when nil.
	HTTP *http.Client
}

// NewHTTPSender returns a sender for the given chat endpoint URL.
func NewHTTPSender(endpoint string) *HTTPSender {
	return &HTTPSender{
		Endpoint: endpoint,
		HTTP:     &http.Client{Timeout: defaultClientTimeout},
	}
}

// Send performs exactly one POST with the full history and returns the
// assistant's reply. Any non-200 status is an error; callers convert
// errors to the fallback reply.
func (s *HTTPSender) Send(ctx context.Context, sessionID string, history []Message) (string, error) {
	turns := make([]wireTurn, 0, len(history))
	for _, m := range history {
		turns = append(turns, wireTurn{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(chatRequest{Messages: turns, SessionID: sessionID})
	if err != nil {
		return "", fmt.Errorf("widget: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("widget: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.HTTP
	if client == nil {
		client = &http.Client{Timeout: defaultClientTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("widget: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("widget: chat endpoint returned %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("widget: decode response: %w", err)
	}
	return out.Message, nil
}
