package widget

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPSenderSend(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(chatResponse{Message: "Hello!", SessionID: got.SessionID})
	}))
	defer srv.Close()

	s := NewHTTPSender(srv.URL + "/api/chat")
	reply, err := s.Send(context.Background(), "session_abc", []Message{
		{Role: "assistant", Content: Greeting},
		{Role: "user", Content: "Hi"},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply != "Hello!" {
		t.Fatalf("reply = %q", reply)
	}
	if got.SessionID != "session_abc" {
		t.Fatalf("request sessionId = %q", got.SessionID)
	}
	if len(got.Messages) != 2 || got.Messages[1].Role != "user" || got.Messages[1].Content != "Hi" {
		t.Fatalf("request messages = %+v", got.Messages)
	}
}

func TestHTTPSenderNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"too_many_requests"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewHTTPSender(srv.URL)
	if _, err := s.Send(context.Background(), "s", []Message{{Role: "user", Content: "x"}}); err == nil {
		t.Fatal("want error for 429 response")
	}
}
