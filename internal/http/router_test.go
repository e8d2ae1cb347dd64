package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/webchat/go-chat-widget/internal/config"
	"github.com/webchat/go-chat-widget/internal/domain"
)

func init() { gin.SetMode(gin.TestMode) }

type okChatSvc struct{}

func (okChatSvc) Respond(_ context.Context, sessionID string, _ []domain.Turn) (string, error) {
	return "Hello!", nil
}

func testConfig() config.Config {
	var cfg config.Config
	cfg.RateWindow = time.Minute
	cfg.RateMax = 20
	cfg.OTEL.ServiceName = "chat-widget-backend"
	return cfg
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	r := gin.New()
	RegisterRoutes(r, okChatSvc{}, testConfig())
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var rd *bytes.Buffer
	if body == "" {
		rd = bytes.NewBufferString("")
	} else {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouterChatEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/chat", `{"messages":[{"role":"user","content":"Hi"}],"sessionId":"s1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if id := w.Header().Get("X-Request-ID"); id == "" {
		t.Fatal("missing X-Request-ID header")
	}
}

func TestRouterHealth(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "OK" || body["timestamp"] == "" {
		t.Fatalf("body = %v", body)
	}
}

func TestRouterEmbedScripts(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/embed.js", "/embed-production.js"} {
		w := do(r, http.MethodGet, path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/javascript") {
			t.Fatalf("%s content type = %q", path, ct)
		}
		if w.Body.Len() == 0 {
			t.Fatalf("%s served empty body", path)
		}
	}
}

func TestRouterDemoPage(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/demo", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
}

func TestRouterNoRouteAndNoMethod(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown route status = %d", w.Code)
	}
	var e map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode 404 body: %v", err)
	}
	if e["code"] != "not_found" {
		t.Fatalf("404 envelope = %v", e)
	}

	w = do(r, http.MethodDelete, "/api/chat", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("wrong-method status = %d", w.Code)
	}
}

func TestRouterRateLimitsChatOnly(t *testing.T) {
	r := newTestRouter(t)
	payload := `{"messages":[{"role":"user","content":"Hi"}],"sessionId":"s1"}`

	for i := 0; i < 20; i++ {
		if w := do(r, http.MethodPost, "/api/chat", payload); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, w.Code)
		}
	}

	w := do(r, http.MethodPost, "/api/chat", payload)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("21st request status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}

	// Health is outside the quota and still answers.
	if w := do(r, http.MethodGet, "/api/health", ""); w.Code != http.StatusOK {
		t.Fatalf("health status after limiting = %d", w.Code)
	}
}
