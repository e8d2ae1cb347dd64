// Package upstream implements the client for the third-party chat-completion
// provider. The provider is treated as an opaque HTTP service: one request,
// one response, no retries. Latency and cost stay predictable because every
// widget turn maps to exactly one upstream attempt.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/webchat/go-chat-widget/internal/config"
	"github.com/webchat/go-chat-widget/internal/domain"
)

// systemPrompt is the fixed persona instruction prefixed to every request.
const systemPrompt = "You are a helpful customer service assistant for this website. " +
	"Be concise, friendly, and professional. " +
	"If asked about sensitive information, politely redirect to human support. " +
	"Keep responses under 200 words."

// Fixed generation parameters: bounded output length, moderate randomness.
const (
	maxTokens        = 200
	temperature      = 0.7
	presencePenalty  = 0.1
	frequencyPenalty = 0.1
)

var (
	// ErrNotConfigured is returned when no API key is configured. The chat
	// endpoint fails deterministically instead of attempting the call.
	ErrNotConfigured = errors.New("openai: api key not configured")

	// ErrUnavailable is returned for any non-success or malformed provider
	// response. The original cause is logged server-side only.
	ErrUnavailable = errors.New("openai: service unavailable")
)

// Client calls the OpenAI chat-completions API.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
}

// NewClient constructs a Client from configuration.
func NewClient(cfg config.OpenAIConfig) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: base,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a credential is present.
func (c *Client) Configured() bool { return strings.TrimSpace(c.APIKey) != "" }

type wireMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatReq struct {
	Model            string    `json:"model"`
	Messages         []wireMsg `json:"messages"`
	MaxTokens        int       `json:"max_tokens"`
	Temperature      float64   `json:"temperature"`
	PresencePenalty  float64   `json:"presence_penalty"`
	FrequencyPenalty float64   `json:"frequency_penalty"`
}

type chatResp struct {
	Choices []struct {
		Message wireMsg `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends the sanitized message window, prefixed by the fixed system
// instruction, and returns the assistant's reply text.
//
// Failure modes:
//   - ErrNotConfigured when no key is set (no network call is made).
//   - ErrUnavailable (wrapped with detail) for transport errors, non-2xx
//     statuses, or responses missing the assistant text.
func (c *Client) Complete(ctx context.Context, turns []domain.Turn) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	model := strings.TrimSpace(c.Model)
	if model == "" {
		model = "gpt-4o"
	}

	msgs := make([]wireMsg, 0, len(turns)+1)
	msgs = append(msgs, wireMsg{Role: "system", Content: systemPrompt})
	for _, t := range turns {
		msgs = append(msgs, wireMsg{Role: t.Role, Content: t.Content})
	}

	body, err := json.Marshal(chatReq{
		Model:            model,
		Messages:         msgs,
		MaxTokens:        maxTokens,
		Temperature:      temperature,
		PresencePenalty:  presencePenalty,
		FrequencyPenalty: frequencyPenalty,
	})
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	httpc := c.HTTP
	if httpc == nil {
		httpc = http.DefaultClient
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return "", fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out chatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrUnavailable)
	}
	return out.Choices[0].Message.Content, nil
}
