package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func completionBody(content string) string {
	return `{"choices":[{"message":{"content":"` + content + `"}}]}`
}

func newGatewayFor(serverURL string) *Gateway {
	return NewGateway(ChatConfig{
		BaseURL: serverURL,
		APIKey:  "test-key",
		Model:   "test-model",
	})
}

func TestGateway_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %s", got)
		}
		w.Write([]byte(completionBody("The policy looks sound.")))
	}))
	defer server.Close()

	result := newGatewayFor(server.URL).Generate(context.Background(), "prompt")
	if result.Outcome != OutcomeOK {
		t.Fatalf("expected OutcomeOK, got %s (%v)", result.Outcome, result.Err)
	}
	if result.Reply() != "The policy looks sound." {
		t.Errorf("unexpected reply: %q", result.Reply())
	}
}

func TestGateway_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	result := newGatewayFor(server.URL).Generate(context.Background(), "prompt")
	if result.Outcome != OutcomeUnreachable {
		t.Fatalf("expected OutcomeUnreachable, got %s", result.Outcome)
	}
	if result.Reply() != FallbackReply {
		t.Errorf("failed generation should fall back to the apology, got %q", result.Reply())
	}
}

func TestGateway_Unreachable(t *testing.T) {
	// Closed server: transport-level failure.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	result := newGatewayFor(server.URL).Generate(context.Background(), "prompt")
	if result.Outcome != OutcomeUnreachable {
		t.Fatalf("expected OutcomeUnreachable, got %s", result.Outcome)
	}
}

func TestGateway_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	result := newGatewayFor(server.URL).Generate(context.Background(), "prompt")
	if result.Outcome != OutcomeMalformed {
		t.Fatalf("expected OutcomeMalformed, got %s", result.Outcome)
	}
	if result.Reply() != FallbackReply {
		t.Errorf("malformed response should fall back, got %q", result.Reply())
	}
}

func TestGateway_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	result := newGatewayFor(server.URL).Generate(context.Background(), "prompt")
	if result.Outcome != OutcomeMalformed {
		t.Fatalf("expected OutcomeMalformed, got %s", result.Outcome)
	}
}

func TestGateway_EmptyText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("   ")))
	}))
	defer server.Close()

	result := newGatewayFor(server.URL).Generate(context.Background(), "prompt")
	if result.Outcome != OutcomeMalformed {
		t.Fatalf("whitespace-only completion should be malformed, got %s", result.Outcome)
	}
}
