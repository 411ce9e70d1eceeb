package claude

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coozgan/meraki-webhook-alert-processor/internal/triage"
)

func messagesResponse(text string) map[string]any {
	return map[string]any{
		"id":    "msg_test",
		"type":  "message",
		"role":  "assistant",
		"model": "claude-sonnet-4-20250514",
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"stop_reason": "end_turn",
		"usage":       map[string]any{"input_tokens": 10, "output_tokens": 20},
	}
}

func TestInvoke_ReturnsTextContent(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q, want /v1/messages", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messagesResponse(`{"severity":"HIGH"}`))
	}))
	defer srv.Close()

	c := New("test-key", srv.URL)

	out, err := c.Invoke(context.Background(), "anthropic.claude-sonnet-4-20250514-v1:0", "analyze this")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if out != `{"severity":"HIGH"}` {
		t.Errorf("out = %q", out)
	}
	if gotBody["model"] != "anthropic.claude-sonnet-4-20250514-v1:0" {
		t.Errorf("request model = %v", gotBody["model"])
	}
}

func TestInvoke_ConcatenatesTextBlocks(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := messagesResponse("")
		resp["content"] = []map[string]any{
			{"type": "text", "text": "part one "},
			{"type": "text", "text": "part two"},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := New("test-key", srv.URL)

	out, err := c.Invoke(context.Background(), "model", "prompt")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if out != "part one part two" {
		t.Errorf("out = %q", out)
	}
}

func TestInvoke_APIErrorCarriesStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"throttled", http.StatusTooManyRequests, `{"type":"error","error":{"type":"rate_limit_error","message":"rate limited"}}`},
		{"not found", http.StatusNotFound, `{"type":"error","error":{"type":"not_found_error","message":"model not found"}}`},
		{"forbidden", http.StatusForbidden, `{"type":"error","error":{"type":"permission_error","message":"no access"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New("test-key", srv.URL)

			_, err := c.Invoke(context.Background(), "some-model", "prompt")
			if err == nil {
				t.Fatal("Invoke returned nil error")
			}

			var se triage.HTTPStatusError
			if !errors.As(err, &se) {
				t.Fatalf("error %T does not expose an HTTP status", err)
			}
			if se.HTTPStatus() != tt.status {
				t.Errorf("status = %d, want %d", se.HTTPStatus(), tt.status)
			}
		})
	}
}

func TestInvoke_EmptyContent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := messagesResponse("")
		resp["content"] = []map[string]any{}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := New("test-key", srv.URL)

	_, err := c.Invoke(context.Background(), "model", "prompt")
	if err == nil {
		t.Fatal("Invoke returned nil error for empty content")
	}

	var ie *InvokeError
	if !errors.As(err, &ie) {
		t.Fatalf("error %T, want *InvokeError", err)
	}
	if ie.Status != 0 {
		t.Errorf("status = %d, want 0 (no HTTP failure)", ie.Status)
	}
}

func TestInvoke_ContextCancellationPassesThrough(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := New("test-key", srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Invoke(ctx, "model", "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled in chain", err)
	}
}
