package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIGenerate(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"generated text"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAI("test", srv.URL, "secret-key", srv.Client())
	text, err := p.Generate(context.Background(), "llama-3.3-70b", NewConversation("be brief", "hello"), DefaultOptions())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if text != "generated text" {
		t.Errorf("text = %q", text)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotReq.Model != "llama-3.3-70b" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
}

func TestOpenAIGenerateErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		errContains string
	}{
		{"http error", http.StatusTooManyRequests, `rate limited`, "status 429"},
		{"api error payload", http.StatusOK, `{"error":{"message":"model overloaded"}}`, "model overloaded"},
		{"empty choices", http.StatusOK, `{"choices":[]}`, "no choices"},
		{"garbage body", http.StatusOK, `not json`, "decoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewOpenAI("test", srv.URL, "", srv.Client())
			_, err := p.Generate(context.Background(), "m", NewConversation("", "x"), DefaultOptions())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestProviderFactory(t *testing.T) {
	p, err := New("cerebras", Config{Type: "openai", BaseURL: "https://api.cerebras.ai/v1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Name() != "cerebras" {
		t.Errorf("name = %q", p.Name())
	}

	if _, err := New("x", Config{Type: "carrier-pigeon"}); err == nil {
		t.Error("expected error for unknown provider type")
	}
}
