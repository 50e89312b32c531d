package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/rcliao/study-assistant/internal/config"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNewOpenRouterRequiresKey(t *testing.T) {
	_, err := NewOpenRouter(config.LLM{BaseURL: "http://x", Model: "m"}, nil)
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestComplete(t *testing.T) {
	var gotBody, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"test/model",
			"choices":[{"index":0,"message":{"role":"assistant","content":"  Study in 25 minute blocks.  "},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":5,"completion_tokens":6,"total_tokens":11}}`)
	}))
	defer srv.Close()

	c, err := NewOpenRouter(config.LLM{APIKey: "sk-test", BaseURL: srv.URL, Model: "test/model", Temperature: 0.7}, quietLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	out, err := c.Complete(context.Background(), "How should I study?", 100)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "Study in 25 minute blocks." {
		t.Errorf("unexpected completion %q", out)
	}
	if !strings.Contains(gotBody, "How should I study?") || !strings.Contains(gotBody, "test/model") {
		t.Errorf("prompt or model missing from request: %s", gotBody)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("expected bearer token, got %q", gotAuth)
	}
}

func TestCompleteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
	}))
	defer srv.Close()

	c, err := NewOpenRouter(config.LLM{APIKey: "sk-test", BaseURL: srv.URL, Model: "m"}, quietLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := c.Complete(context.Background(), "hi", 10); err == nil {
		t.Error("expected error from failing server")
	}
}
